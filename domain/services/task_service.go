package services

import (
	"context"

	"github.com/google/uuid"

	"nextup-api/domain/dto"
	"nextup-api/domain/models"
)

// FolderTasks snapshot ของ folder: incomplete เรียงตาม order, completed แยกอีกชุด
type FolderTasks struct {
	Incomplete []*models.Task
	Completed  []*models.Task
}

type TaskService interface {
	// ListFolderTasks โหลด tasks และ trigger staleness sweep เบื้องหลัง
	ListFolderTasks(ctx context.Context, userID, folderID uuid.UUID) (*FolderTasks, error)
	CreateTask(ctx context.Context, userID, folderID uuid.UUID, req *dto.CreateTaskRequest) (*models.Task, error)
	ImportTasks(ctx context.Context, userID, folderID uuid.UUID, req *dto.ImportTasksRequest) ([]*models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error)
	ToggleCompletion(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error)
	CreateBelow(ctx context.Context, userID, taskID uuid.UUID, req *dto.CreateBelowRequest) (*models.Task, error)
	// ReorderTasks คืนจำนวน task ที่ order เปลี่ยน
	ReorderTasks(ctx context.Context, userID, folderID uuid.UUID, req *dto.ReorderTasksRequest) (int, error)
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}
