package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title    string     `json:"title" validate:"max=500"`
	Deadline *time.Time `json:"deadline" validate:"omitempty"`
}

// UpdateTaskRequest nil = ไม่แก้ field นั้น
type UpdateTaskRequest struct {
	Title         *string    `json:"title" validate:"omitempty,max=500"`
	Deadline      *time.Time `json:"deadline" validate:"omitempty"`
	ClearDeadline bool       `json:"clearDeadline"`
	FolderID      *uuid.UUID `json:"folderId" validate:"omitempty"`
}

// CreateBelowRequest title ล่าสุดของ task ที่กำลังแก้อยู่
type CreateBelowRequest struct {
	Title string `json:"title" validate:"max=500"`
}

// ReorderTasksRequest drag task ไปวางที่ตำแหน่งของ overTaskId
// overTaskId ว่าง = drop นอก list (no-op)
type ReorderTasksRequest struct {
	TaskID     uuid.UUID  `json:"taskId" validate:"required"`
	OverTaskID *uuid.UUID `json:"overTaskId" validate:"omitempty"`
}

type ImportTaskItem struct {
	Title    string     `json:"title" validate:"required,max=500"`
	Deadline *time.Time `json:"deadline" validate:"omitempty"`
}

// ImportTasksRequest ผลจาก extractor ภายนอก (รูป/เสียง)
type ImportTasksRequest struct {
	Tasks []ImportTaskItem `json:"tasks" validate:"required,min=1,max=100,dive"`
}

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	FolderID    uuid.UUID  `json:"folderId"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Deadline    *time.Time `json:"deadline"`
	Priority    *string    `json:"priority"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type FolderTasksResponse struct {
	Incomplete []TaskResponse `json:"incomplete"`
	Completed  []TaskResponse `json:"completed"`
}

type ReorderTasksResponse struct {
	Updated int `json:"updated"`
}
