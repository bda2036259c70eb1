package repositories

import (
	"context"

	"github.com/google/uuid"

	"nextup-api/domain/models"
)

type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Folder, error)
	GetBySlug(ctx context.Context, userID uuid.UUID, slug string) (*models.Folder, error)
	// ListByUser เรียงตาม created_at
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Folder, error)
	Update(ctx context.Context, folder *models.Folder) error
	// DeleteWithTasks ลบ folder และ tasks ทั้งหมดใน transaction เดียว
	DeleteWithTasks(ctx context.Context, userID, id uuid.UUID) error
}
