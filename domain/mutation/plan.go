// Package mutation describes document writes against the task collection.
// A Plan is produced by the planner and consumed by a BatchWriter as one
// atomic batch.
package mutation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/models"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Ref ระบุ document: users/{userId}/tasks/{taskId}
type Ref struct {
	UserID uuid.UUID
	TaskID uuid.UUID
}

func (r Ref) Path() string {
	return fmt.Sprintf("users/%s/tasks/%s", r.UserID, r.TaskID)
}

// Scope คือ partition ของ tasks ของ folder หนึ่ง
type Scope struct {
	UserID   uuid.UUID
	FolderID uuid.UUID
}

func (s Scope) String() string {
	return fmt.Sprintf("%s:%s", s.UserID, s.FolderID)
}

// Patch fields ที่จะ update (nil = ไม่แตะ)
type Patch struct {
	Title            *string
	Completed        *bool
	CompletedAt      *time.Time
	ClearCompletedAt bool
	Deadline         *time.Time
	ClearDeadline    bool
	FolderID         *uuid.UUID
	Order            *int
	Priority         *models.Priority
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil && p.CompletedAt == nil && !p.ClearCompletedAt &&
		p.Deadline == nil && !p.ClearDeadline && p.FolderID == nil && p.Order == nil && p.Priority == nil
}

// Columns แปลง patch เป็น column map สำหรับ gorm Updates
func (p Patch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Completed != nil {
		cols["completed"] = *p.Completed
	}
	if p.ClearCompletedAt {
		cols["completed_at"] = nil
	} else if p.CompletedAt != nil {
		cols["completed_at"] = *p.CompletedAt
	}
	if p.ClearDeadline {
		cols["deadline"] = nil
	} else if p.Deadline != nil {
		cols["deadline"] = *p.Deadline
	}
	if p.FolderID != nil {
		cols["folder_id"] = *p.FolderID
	}
	if p.Order != nil {
		cols["sort_order"] = *p.Order
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	return cols
}

// ApplyTo เขียน patch ลงบน task (in place)
func (p Patch) ApplyTo(t *models.Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.ClearCompletedAt {
		t.CompletedAt = nil
	} else if p.CompletedAt != nil {
		v := *p.CompletedAt
		t.CompletedAt = &v
	}
	if p.ClearDeadline {
		t.Deadline = nil
	} else if p.Deadline != nil {
		v := *p.Deadline
		t.Deadline = &v
	}
	if p.FolderID != nil {
		t.FolderID = *p.FolderID
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	if p.Priority != nil {
		v := *p.Priority
		t.Priority = &v
	}
}

type Mutation struct {
	Op  Op
	Ref Ref
	// FolderID is the folder the document lived in when the plan was built.
	FolderID uuid.UUID
	Task     *models.Task // OpCreate only
	Patch    Patch        // OpUpdate only
}

// Plan ordered list of mutations, applied all-or-nothing
type Plan struct {
	Mutations []Mutation
}

func NewPlan() *Plan {
	return &Plan{}
}

func (p *Plan) Create(task *models.Task) {
	p.Mutations = append(p.Mutations, Mutation{
		Op:       OpCreate,
		Ref:      Ref{UserID: task.UserID, TaskID: task.ID},
		FolderID: task.FolderID,
		Task:     task,
	})
}

// Update appends an update; empty patches are dropped.
func (p *Plan) Update(task *models.Task, patch Patch) {
	if patch.IsEmpty() {
		return
	}
	p.Mutations = append(p.Mutations, Mutation{
		Op:       OpUpdate,
		Ref:      Ref{UserID: task.UserID, TaskID: task.ID},
		FolderID: task.FolderID,
		Patch:    patch,
	})
}

func (p *Plan) Delete(task *models.Task) {
	p.Mutations = append(p.Mutations, Mutation{
		Op:       OpDelete,
		Ref:      Ref{UserID: task.UserID, TaskID: task.ID},
		FolderID: task.FolderID,
	})
}

func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Mutations)
}

func (p *Plan) IsEmpty() bool {
	return p.Len() == 0
}

// Count จำนวน mutation ตาม op
func (p *Plan) Count(op Op) int {
	n := 0
	if p == nil {
		return n
	}
	for _, m := range p.Mutations {
		if m.Op == op {
			n++
		}
	}
	return n
}

// Scopes returns every folder partition the plan touches, in first-seen order.
// A folder move touches both source and target.
func (p *Plan) Scopes() []Scope {
	if p == nil {
		return nil
	}
	seen := make(map[Scope]bool)
	var scopes []Scope
	add := func(s Scope) {
		if !seen[s] {
			seen[s] = true
			scopes = append(scopes, s)
		}
	}
	for _, m := range p.Mutations {
		add(Scope{UserID: m.Ref.UserID, FolderID: m.FolderID})
		if m.Op == OpUpdate && m.Patch.FolderID != nil {
			add(Scope{UserID: m.Ref.UserID, FolderID: *m.Patch.FolderID})
		}
	}
	return scopes
}
