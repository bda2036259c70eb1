package services

import (
	"context"

	"github.com/google/uuid"

	"nextup-api/domain/dto"
	"nextup-api/domain/models"
)

type FolderService interface {
	CreateFolder(ctx context.Context, userID uuid.UUID, req *dto.CreateFolderRequest) (*models.Folder, error)
	GetFolder(ctx context.Context, userID, folderID uuid.UUID) (*models.Folder, error)
	ListFolders(ctx context.Context, userID uuid.UUID) ([]*models.Folder, error)
	UpdateFolder(ctx context.Context, userID, folderID uuid.UUID, req *dto.UpdateFolderRequest) (*models.Folder, error)
	// DeleteFolder ลบ folder พร้อม tasks ทั้งหมด
	DeleteFolder(ctx context.Context, userID, folderID uuid.UUID) error
}
