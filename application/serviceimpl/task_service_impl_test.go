package serviceimpl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/dto"
	"nextup-api/domain/models"
	"nextup-api/domain/services"
)

func newTaskService(f *fixture, sweeper services.SweepService) *TaskServiceImpl {
	svc := NewTaskService(f.store.Tasks(), f.store.Folders(), f.executor, sweeper, f.lock, nil, 0)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreateBelowInsertsAfterCurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tasks := f.seed("A", "B", "C")
	svc := newTaskService(f, nil)

	created, err := svc.CreateBelow(ctx, f.user, tasks[1].ID, &dto.CreateBelowRequest{Title: "B edited"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Order != 2 || created.Title != "" {
		t.Errorf("created = order %d title %q", created.Order, created.Title)
	}

	got := f.incompleteTitles(t)
	want := []string{"A", "B edited", "", "C"}
	if !equalStrings(got, want) {
		t.Errorf("sequence = %q, want %q", got, want)
	}
	if o := f.orders(t); o["A"] != 0 || o["B edited"] != 1 || o["C"] != 3 {
		t.Errorf("orders = %v", o)
	}
	if f.store.BatchCount() != 1 {
		t.Errorf("batches = %d, want 1", f.store.BatchCount())
	}
}

func TestCreateBelowCompletedTaskFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed("A")
	at := fixedNow
	done := &models.Task{ID: uuid.New(), UserID: f.user, FolderID: f.folder.ID, Title: "done", Completed: true, CompletedAt: &at}
	f.store.Seed(done)
	svc := newTaskService(f, nil)

	_, err := svc.CreateBelow(ctx, f.user, done.ID, &dto.CreateBelowRequest{Title: "changed"})
	if !errors.Is(err, services.ErrTaskNotInSequence) {
		t.Fatalf("err = %v, want ErrTaskNotInSequence", err)
	}
	if f.store.BatchCount() != 0 {
		t.Error("something was written")
	}
}

func TestCommitFailureLeavesTitleUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tasks := f.seed("A", "B")
	svc := newTaskService(f, nil)

	f.store.FailNextBatch(errors.New("offline"))
	_, err := svc.CreateBelow(ctx, f.user, tasks[0].ID, &dto.CreateBelowRequest{Title: "A edited"})

	var commitErr *services.CommitError
	if !errors.As(err, &commitErr) {
		t.Fatalf("err = %v, want CommitError", err)
	}
	if got := f.incompleteTitles(t); !equalStrings(got, []string{"A", "B"}) {
		t.Errorf("sequence after failure = %q", got)
	}
}

func TestToggleRoundTripKeepsOrdersUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tasks := f.seed("A", "B", "C")
	svc := newTaskService(f, nil)

	done, err := svc.ToggleCompletion(ctx, f.user, tasks[0].ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil || !done.CompletedAt.Equal(fixedNow) {
		t.Errorf("completed task = %+v", done)
	}

	// order 0 ว่างแล้ว ใส่ task ใหม่ทับ
	f.store.Seed(&models.Task{ID: uuid.New(), UserID: f.user, FolderID: f.folder.ID, Title: "D", Order: 0})

	reopened, err := svc.ToggleCompletion(ctx, f.user, tasks[0].ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Completed || reopened.CompletedAt != nil {
		t.Errorf("reopened task = %+v", reopened)
	}

	got := f.incompleteTitles(t)
	if !equalStrings(got, []string{"D", "B", "C", "A"}) {
		t.Errorf("sequence = %q", got)
	}
	seen := map[int]bool{}
	for title, order := range f.orders(t) {
		if seen[order] {
			t.Errorf("duplicate order %d (%s)", order, title)
		}
		seen[order] = true
	}
}

func TestReorderTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("drag down", func(t *testing.T) {
		f := newFixture(t)
		tasks := f.seed("A", "B", "C", "D")
		svc := newTaskService(f, nil)

		updated, err := svc.ReorderTasks(ctx, f.user, f.folder.ID, &dto.ReorderTasksRequest{TaskID: tasks[0].ID, OverTaskID: &tasks[2].ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated != 3 {
			t.Errorf("updated = %d, want 3", updated)
		}
		if got := f.incompleteTitles(t); !equalStrings(got, []string{"B", "C", "A", "D"}) {
			t.Errorf("sequence = %q", got)
		}
	})

	t.Run("drop on itself writes nothing", func(t *testing.T) {
		f := newFixture(t)
		tasks := f.seed("A", "B")
		svc := newTaskService(f, nil)

		updated, err := svc.ReorderTasks(ctx, f.user, f.folder.ID, &dto.ReorderTasksRequest{TaskID: tasks[1].ID, OverTaskID: &tasks[1].ID})
		if err != nil || updated != 0 || f.store.BatchCount() != 0 {
			t.Errorf("updated = %d, err = %v, batches = %d", updated, err, f.store.BatchCount())
		}
	})

	t.Run("no destination writes nothing", func(t *testing.T) {
		f := newFixture(t)
		tasks := f.seed("A", "B")
		svc := newTaskService(f, nil)

		updated, err := svc.ReorderTasks(ctx, f.user, f.folder.ID, &dto.ReorderTasksRequest{TaskID: tasks[0].ID})
		if err != nil || updated != 0 || f.store.BatchCount() != 0 {
			t.Errorf("updated = %d, err = %v, batches = %d", updated, err, f.store.BatchCount())
		}
	})

	t.Run("busy folder", func(t *testing.T) {
		f := newFixture(t)
		tasks := f.seed("A", "B")
		svc := newTaskService(f, nil)
		_, _, _ = f.lock.TryLock(ctx, scopeOf(f), time.Minute)

		_, err := svc.ReorderTasks(ctx, f.user, f.folder.ID, &dto.ReorderTasksRequest{TaskID: tasks[0].ID, OverTaskID: &tasks[1].ID})
		if !errors.Is(err, services.ErrFolderBusy) {
			t.Errorf("err = %v, want ErrFolderBusy", err)
		}
	})
}

func TestMoveTaskToAnotherFolder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tasks := f.seed("A", "B")
	other := f.addFolder(t, "Work")
	f.store.Seed(&models.Task{ID: uuid.New(), UserID: f.user, FolderID: other.ID, Title: "W", Order: 4})
	svc := newTaskService(f, nil)

	moved, err := svc.UpdateTask(ctx, f.user, tasks[0].ID, &dto.UpdateTaskRequest{FolderID: &other.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.FolderID != other.ID || moved.Order != 5 {
		t.Errorf("moved = folder %s order %d", moved.FolderID, moved.Order)
	}

	missing := uuid.New()
	if _, err := svc.UpdateTask(ctx, f.user, tasks[1].ID, &dto.UpdateTaskRequest{FolderID: &missing}); !errors.Is(err, services.ErrFolderNotFound) {
		t.Errorf("err = %v, want ErrFolderNotFound", err)
	}
}

func TestCreateAndImportAppend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed("A")
	svc := newTaskService(f, nil)

	task, err := svc.CreateTask(ctx, f.user, f.folder.ID, &dto.CreateTaskRequest{Title: ""})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Title != models.UntitledTask || task.Order != 1 {
		t.Errorf("created = %q order %d", task.Title, task.Order)
	}

	imported, err := svc.ImportTasks(ctx, f.user, f.folder.ID, &dto.ImportTasksRequest{Tasks: []dto.ImportTaskItem{{Title: "x"}, {Title: "y"}}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imported) != 2 || imported[0].Order != 2 || imported[1].Order != 3 {
		t.Errorf("imported orders wrong: %+v", imported)
	}
	if f.store.BatchCount() != 2 {
		t.Errorf("batches = %d, want 2", f.store.BatchCount())
	}
}

func TestListFolderTasksTriggersSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed("A")
	old := fixedNow.Add(-6 * 24 * time.Hour)
	recent := fixedNow.Add(-time.Hour)
	f.store.Seed(
		&models.Task{ID: uuid.New(), UserID: f.user, FolderID: f.folder.ID, Title: "old", Completed: true, CompletedAt: &old},
		&models.Task{ID: uuid.New(), UserID: f.user, FolderID: f.folder.ID, Title: "recent", Completed: true, CompletedAt: &recent},
	)

	sweeper := NewStalenessSweepService(SweepConfig{Retention: 120 * time.Hour}, f.store.Tasks(), f.executor)
	sweeper.now = func() time.Time { return fixedNow }
	svc := newTaskService(f, sweeper)

	loaded, err := svc.ListFolderTasks(ctx, f.user, f.folder.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Incomplete) != 1 || len(loaded.Completed) != 1 {
		t.Fatalf("loaded = %d/%d, want 1/1", len(loaded.Incomplete), len(loaded.Completed))
	}
	// task ที่กำลังถูก sweep ไม่ถูกส่งกลับ
	if loaded.Completed[0].Title != "recent" {
		t.Errorf("completed = %q, want recent", loaded.Completed[0].Title)
	}

	sweeper.Wait()
	if _, ok := f.orders(t)["old"]; ok {
		t.Error("stale task not swept")
	}
	if _, ok := f.orders(t)["recent"]; !ok {
		t.Error("recent task swept")
	}
}

func TestDeleteTaskKeepsGaps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tasks := f.seed("A", "B", "C")
	svc := newTaskService(f, nil)

	if err := svc.DeleteTask(ctx, f.user, tasks[1].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o := f.orders(t); o["A"] != 0 || o["C"] != 2 {
		t.Errorf("orders = %v, want gaps kept", o)
	}
	if err := svc.DeleteTask(ctx, f.user, tasks[1].ID); !errors.Is(err, services.ErrTaskNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
