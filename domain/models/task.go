package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority label ที่ ranking collaborator กำหนดให้ task
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// IsValid ตรวจสอบว่าเป็น label ที่รองรับ
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// UntitledTask placeholder สำหรับ title ว่าง
const UntitledTask = "Untitled Task"

// Task คือ to-do หนึ่งรายการ
// order unique ภายใน (folder_id, completed) และมีความหมายเฉพาะตอน completed = false
type Task struct {
	ID          uuid.UUID  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_tasks_user_folder_order,priority:1"`
	FolderID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_tasks_user_folder_order,priority:2"`
	Title       string     `gorm:"size:500"`
	Completed   bool       `gorm:"not null;default:false;index:idx_tasks_user_folder_order,priority:3"`
	CompletedAt *time.Time `gorm:"index"`
	Deadline    *time.Time
	Priority    *Priority `gorm:"size:10"`
	Order       int       `gorm:"column:sort_order;not null;default:0;index:idx_tasks_user_folder_order,priority:4"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time
}

func (Task) TableName() string {
	return "tasks"
}

// HasDeadline ตรวจสอบว่ามี deadline หรือไม่
func (t *Task) HasDeadline() bool {
	return t.Deadline != nil && !t.Deadline.IsZero()
}

// Clone copy task รวม pointer fields
func (t *Task) Clone() *Task {
	c := *t
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	if t.Deadline != nil {
		v := *t.Deadline
		c.Deadline = &v
	}
	if t.Priority != nil {
		v := *t.Priority
		c.Priority = &v
	}
	return &c
}
