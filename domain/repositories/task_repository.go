package repositories

import (
	"context"

	"github.com/google/uuid"

	"nextup-api/domain/models"
)

// TaskRepository read side ของ task collection
// การเขียนทั้งหมดผ่าน ports.BatchWriterPort
type TaskRepository interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
	// ListByFolder sorted by completed asc, order asc
	ListByFolder(ctx context.Context, userID, folderID uuid.UUID) ([]*models.Task, error)
	// ListIncomplete sorted by order asc
	ListIncomplete(ctx context.Context, userID, folderID uuid.UUID) ([]*models.Task, error)
	ListCompleted(ctx context.Context, userID, folderID uuid.UUID) ([]*models.Task, error)
}
