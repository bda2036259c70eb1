// Package planner turns one user gesture into a mutation plan. Every
// function works on the snapshot it is given and never touches storage.
package planner

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/models"
	"nextup-api/domain/mutation"
	"nextup-api/domain/ordering"
)

// ErrTaskNotInSequence current task หาไม่เจอใน incomplete sequence ของ folder ตัวเอง
var ErrTaskNotInSequence = errors.New("task not found in its folder sequence")

// NormalizeTitle แปลง title ว่างเป็น placeholder
func NormalizeTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return models.UntitledTask
	}
	return title
}

// ToggleCompletion flips completed. Completing freezes the order; reopening
// appends the task after the current incomplete tasks so that no two
// incomplete tasks share an order.
func ToggleCompletion(task *models.Task, now time.Time, incomplete []*models.Task) *mutation.Plan {
	plan := mutation.NewPlan()
	completed := !task.Completed

	patch := mutation.Patch{Completed: &completed}
	if completed {
		at := now
		patch.CompletedAt = &at
	} else {
		patch.ClearCompletedAt = true
		next := ordering.NextOrder(without(incomplete, task.ID))
		if next != task.Order {
			patch.Order = &next
		}
	}
	plan.Update(task, patch)
	return plan
}

// CreateBelow saves an edited title on current and inserts an empty task
// right after it. incomplete must be the latest snapshot sorted by order.
func CreateBelow(current *models.Task, editedTitle string, incomplete []*models.Task, now time.Time) (*mutation.Plan, *models.Task, error) {
	plan := mutation.NewPlan()

	title := NormalizeTitle(editedTitle)
	if title != current.Title {
		plan.Update(current, mutation.Patch{Title: &title})
	}

	idx := ordering.IndexOf(incomplete, current.ID)
	if idx < 0 {
		return nil, nil, ErrTaskNotInSequence
	}

	newOrder, shifts, err := ordering.InsertAfter(incomplete, idx)
	if err != nil {
		return nil, nil, err
	}

	task := &models.Task{
		ID:        uuid.New(),
		UserID:    current.UserID,
		FolderID:  current.FolderID,
		Title:     "",
		Completed: false,
		Order:     newOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	plan.Create(task)

	for _, a := range shifts {
		order := a.Order
		plan.Update(a.Task, mutation.Patch{Order: &order})
	}
	return plan, task, nil
}

// DragReorder moves incomplete[from] to position to. Same position or an
// index outside the sequence (no destination) yields an empty plan.
func DragReorder(incomplete []*models.Task, from, to int) *mutation.Plan {
	plan := mutation.NewPlan()
	if from == to {
		return plan
	}
	moved, err := ordering.Move(incomplete, from, to)
	if err != nil {
		return plan
	}
	writeOrders(plan, ordering.AssignSequential(moved), nil)
	return plan
}

func Delete(task *models.Task) *mutation.Plan {
	plan := mutation.NewPlan()
	plan.Delete(task)
	return plan
}

// Reorder assigns sequential orders to a prioritized sequence. When labels
// is non-nil the priority label is written as well.
func Reorder(sequence []*models.Task, labels map[uuid.UUID]models.Priority) *mutation.Plan {
	plan := mutation.NewPlan()
	writeOrders(plan, ordering.AssignSequential(sequence), labels)
	return plan
}

// SortByDeadline stable sort ตาม deadline; task ที่ไม่มี deadline ไปท้าย
func SortByDeadline(tasks []*models.Task) []*models.Task {
	out := make([]*models.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.HasDeadline() || !b.HasDeadline() {
			return a.HasDeadline() && !b.HasDeadline()
		}
		return a.Deadline.Before(*b.Deadline)
	})
	return out
}

// IsStale true เมื่อ completedAt เก่ากว่า now-retention (ที่ cutoff พอดียังไม่ stale)
func IsStale(task *models.Task, now time.Time, retention time.Duration) bool {
	if !task.Completed || task.CompletedAt == nil {
		return false
	}
	return task.CompletedAt.Before(now.Add(-retention))
}

// Sweep deletes every completed task past the retention window.
func Sweep(completed []*models.Task, now time.Time, retention time.Duration) *mutation.Plan {
	plan := mutation.NewPlan()
	for _, t := range completed {
		if IsStale(t, now, retention) {
			plan.Delete(t)
		}
	}
	return plan
}

// Create appends a new task at the end of the incomplete sequence.
func Create(task *models.Task, incomplete []*models.Task) *mutation.Plan {
	plan := mutation.NewPlan()
	task.Order = ordering.NextOrder(incomplete)
	plan.Create(task)
	return plan
}

// CreateMany appends tasks in the given sequence after the existing ones.
func CreateMany(tasks []*models.Task, incomplete []*models.Task) *mutation.Plan {
	plan := mutation.NewPlan()
	next := ordering.NextOrder(incomplete)
	for i, t := range tasks {
		t.Order = next + i
		plan.Create(t)
	}
	return plan
}

// Edit fields ที่แก้ได้จาก task form
type Edit struct {
	Title         *string
	Deadline      *time.Time
	ClearDeadline bool
	FolderID      *uuid.UUID
}

// ApplyEdit plans a form edit. A folder move appends the task to the end
// of targetIncomplete; targetIncomplete is ignored otherwise.
func ApplyEdit(task *models.Task, edit Edit, targetIncomplete []*models.Task) *mutation.Plan {
	plan := mutation.NewPlan()
	var patch mutation.Patch

	if edit.Title != nil {
		title := NormalizeTitle(*edit.Title)
		if title != task.Title {
			patch.Title = &title
		}
	}
	if edit.ClearDeadline {
		if task.Deadline != nil {
			patch.ClearDeadline = true
		}
	} else if edit.Deadline != nil {
		if task.Deadline == nil || !task.Deadline.Equal(*edit.Deadline) {
			d := *edit.Deadline
			patch.Deadline = &d
		}
	}
	if edit.FolderID != nil && *edit.FolderID != task.FolderID {
		target := *edit.FolderID
		patch.FolderID = &target
		if !task.Completed {
			next := ordering.NextOrder(targetIncomplete)
			patch.Order = &next
		}
	}

	plan.Update(task, patch)
	return plan
}

func writeOrders(plan *mutation.Plan, assignments []ordering.Assignment, labels map[uuid.UUID]models.Priority) {
	for _, a := range assignments {
		var patch mutation.Patch
		if a.Changed() {
			order := a.Order
			patch.Order = &order
		}
		if label, ok := labels[a.Task.ID]; ok {
			if a.Task.Priority == nil || *a.Task.Priority != label {
				l := label
				patch.Priority = &l
			}
		}
		plan.Update(a.Task, patch)
	}
}

func without(tasks []*models.Task, id uuid.UUID) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
