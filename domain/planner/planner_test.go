package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/models"
	"nextup-api/domain/mutation"
)

var (
	testUser   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testFolder = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	now        = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
)

func newTask(title string, order int) *models.Task {
	return &models.Task{ID: uuid.New(), UserID: testUser, FolderID: testFolder, Title: title, Order: order}
}

func tasks(n int) []*models.Task {
	out := make([]*models.Task, n)
	for i := range out {
		out[i] = newTask(string(rune('A'+i)), i)
	}
	return out
}

func findUpdate(plan *mutation.Plan, id uuid.UUID) (mutation.Patch, bool) {
	for _, m := range plan.Mutations {
		if m.Op == mutation.OpUpdate && m.Ref.TaskID == id {
			return m.Patch, true
		}
	}
	return mutation.Patch{}, false
}

func TestToggleCompletion(t *testing.T) {
	t.Run("complete sets completedAt and freezes order", func(t *testing.T) {
		seq := tasks(3)
		plan := ToggleCompletion(seq[1], now, seq)

		if plan.Len() != 1 {
			t.Fatalf("plan len = %d, want 1", plan.Len())
		}
		p := plan.Mutations[0].Patch
		if p.Completed == nil || !*p.Completed {
			t.Error("completed not set")
		}
		if p.CompletedAt == nil || !p.CompletedAt.Equal(now) {
			t.Errorf("completedAt = %v, want %v", p.CompletedAt, now)
		}
		if p.Order != nil {
			t.Errorf("order rewritten on completion: %d", *p.Order)
		}
	})

	t.Run("reopen clears completedAt and appends", func(t *testing.T) {
		seq := tasks(3)
		done := newTask("done", 1)
		done.Completed = true
		at := now.Add(-time.Hour)
		done.CompletedAt = &at

		plan := ToggleCompletion(done, now, seq)
		if plan.Len() != 1 {
			t.Fatalf("plan len = %d, want 1", plan.Len())
		}
		p := plan.Mutations[0].Patch
		if p.Completed == nil || *p.Completed {
			t.Error("completed not cleared")
		}
		if !p.ClearCompletedAt {
			t.Error("completedAt not cleared")
		}
		if p.Order == nil || *p.Order != 3 {
			t.Errorf("order = %v, want 3", p.Order)
		}
	})
}

func TestCreateBelow(t *testing.T) {
	t.Run("insert after middle task", func(t *testing.T) {
		seq := tasks(3)
		plan, created, err := CreateBelow(seq[1], seq[1].Title, seq, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if created.Order != 2 || created.Title != "" || created.Completed {
			t.Errorf("created = %+v", created)
		}
		if created.FolderID != testFolder || created.UserID != testUser || !created.CreatedAt.Equal(now) {
			t.Error("created task lost ownership or timestamp")
		}
		if plan.Count(mutation.OpCreate) != 1 || plan.Count(mutation.OpUpdate) != 1 {
			t.Fatalf("plan = %d creates / %d updates", plan.Count(mutation.OpCreate), plan.Count(mutation.OpUpdate))
		}
		p, ok := findUpdate(plan, seq[2].ID)
		if !ok || p.Order == nil || *p.Order != 3 {
			t.Errorf("last task shift = %+v", p)
		}
		for _, untouched := range seq[:2] {
			if _, ok := findUpdate(plan, untouched.ID); ok {
				t.Errorf("task %s should not be updated", untouched.Title)
			}
		}
	})

	t.Run("empty edited title becomes placeholder", func(t *testing.T) {
		seq := tasks(2)
		plan, _, err := CreateBelow(seq[1], "  ", seq, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p, ok := findUpdate(plan, seq[1].ID)
		if !ok || p.Title == nil || *p.Title != models.UntitledTask {
			t.Errorf("title patch = %+v", p)
		}
	})

	t.Run("missing current task aborts", func(t *testing.T) {
		seq := tasks(2)
		plan, created, err := CreateBelow(newTask("stray", 9), "stray", seq, now)
		if !errors.Is(err, ErrTaskNotInSequence) {
			t.Fatalf("err = %v, want ErrTaskNotInSequence", err)
		}
		if plan != nil || created != nil {
			t.Error("plan returned on failure")
		}
	})
}

func TestDragReorder(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		writes   int
	}{
		{"same position", 2, 2, 0},
		{"no destination", 1, -1, 0},
		{"past end", 1, 9, 0},
		{"down two", 1, 3, 3},
		{"up to top", 4, 0, 5},
		{"adjacent swap", 0, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := DragReorder(tasks(5), tt.from, tt.to)
			if plan.Len() != tt.writes {
				t.Errorf("writes = %d, want %d", plan.Len(), tt.writes)
			}
			for _, m := range plan.Mutations {
				if m.Op != mutation.OpUpdate || m.Patch.Order == nil || m.Patch.Title != nil {
					t.Errorf("unexpected mutation %+v", m)
				}
			}
		})
	}
}

func TestReorderWithLabels(t *testing.T) {
	seq := tasks(3)
	high := models.PriorityHigh
	seq[0].Priority = &high

	// C, A, B
	prioritized := []*models.Task{seq[2], seq[0], seq[1]}

	plain := Reorder(prioritized, nil)
	if plain.Len() != 3 {
		t.Fatalf("writes = %d, want 3", plain.Len())
	}
	for _, m := range plain.Mutations {
		if m.Patch.Priority != nil {
			t.Error("priority written without labels")
		}
	}

	labels := map[uuid.UUID]models.Priority{
		seq[0].ID: models.PriorityHigh,
		seq[1].ID: models.PriorityLow,
		seq[2].ID: models.PriorityHigh,
	}
	labelled := Reorder(prioritized, labels)
	p, _ := findUpdate(labelled, seq[0].ID)
	if p.Priority != nil {
		t.Error("unchanged label rewritten")
	}
	p, _ = findUpdate(labelled, seq[1].ID)
	if p.Priority == nil || *p.Priority != models.PriorityLow {
		t.Errorf("label for B = %v", p.Priority)
	}
}

func TestSweepBoundary(t *testing.T) {
	retention := 120 * time.Hour
	cutoff := now.Add(-retention)

	completedAt := func(at time.Time) *models.Task {
		task := newTask("done", 0)
		task.Completed = true
		task.CompletedAt = &at
		return task
	}

	tests := []struct {
		name    string
		task    *models.Task
		deleted bool
	}{
		{"exactly at cutoff", completedAt(cutoff), false},
		{"one second past cutoff", completedAt(cutoff.Add(-time.Second)), true},
		{"recent", completedAt(now.Add(-time.Hour)), false},
		{"completed without timestamp", func() *models.Task { t := newTask("x", 0); t.Completed = true; return t }(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Sweep([]*models.Task{tt.task}, now, retention)
			if got := plan.Count(mutation.OpDelete) == 1; got != tt.deleted {
				t.Errorf("deleted = %v, want %v", got, tt.deleted)
			}
		})
	}
}

func TestSortByDeadlineStable(t *testing.T) {
	d := func(days int) *time.Time {
		v := now.AddDate(0, 0, days)
		return &v
	}
	a, b, c, tie := newTask("a", 0), newTask("b", 1), newTask("c", 2), newTask("tie", 3)
	a.Deadline, b.Deadline, c.Deadline, tie.Deadline = d(3), d(1), d(2), d(1)

	got := SortByDeadline([]*models.Task{a, b, c, tie})
	want := []*models.Task{b, tie, c, a}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %s, want %s", i, got[i].Title, want[i].Title)
		}
	}
}

func TestApplyEdit(t *testing.T) {
	target := uuid.New()
	deadline := now.Add(48 * time.Hour)

	t.Run("move appends to target folder", func(t *testing.T) {
		task := newTask("move me", 0)
		plan := ApplyEdit(task, Edit{FolderID: &target}, tasks(4))
		p, ok := findUpdate(plan, task.ID)
		if !ok || p.FolderID == nil || *p.FolderID != target {
			t.Fatalf("folder patch = %+v", p)
		}
		if p.Order == nil || *p.Order != 4 {
			t.Errorf("order = %v, want 4", p.Order)
		}
		scopes := plan.Scopes()
		if len(scopes) != 2 {
			t.Errorf("scopes = %v, want source and target", scopes)
		}
	})

	t.Run("no-op edit is empty", func(t *testing.T) {
		task := newTask("same", 0)
		task.Deadline = &deadline
		title := "same"
		plan := ApplyEdit(task, Edit{Title: &title, Deadline: &deadline}, nil)
		if !plan.IsEmpty() {
			t.Errorf("plan = %+v, want empty", plan.Mutations)
		}
	})

	t.Run("clear deadline", func(t *testing.T) {
		task := newTask("due", 0)
		task.Deadline = &deadline
		plan := ApplyEdit(task, Edit{ClearDeadline: true}, nil)
		p, ok := findUpdate(plan, task.ID)
		if !ok || !p.ClearDeadline {
			t.Error("deadline not cleared")
		}
	})
}

func TestCreateManyAppends(t *testing.T) {
	existing := tasks(3)
	imported := []*models.Task{newTask("x", 0), newTask("y", 0)}

	plan := CreateMany(imported, existing)
	if plan.Count(mutation.OpCreate) != 2 {
		t.Fatalf("creates = %d", plan.Count(mutation.OpCreate))
	}
	if imported[0].Order != 3 || imported[1].Order != 4 {
		t.Errorf("orders = %d, %d", imported[0].Order, imported[1].Order)
	}
}
