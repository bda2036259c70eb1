package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"nextup-api/domain/dto"
	"nextup-api/domain/models"
	"nextup-api/domain/repositories"
	"nextup-api/domain/services"
	"nextup-api/pkg/logger"
)

const maxSlugAttempts = 50

type FolderServiceImpl struct {
	folderRepo repositories.FolderRepository
}

func NewFolderService(folderRepo repositories.FolderRepository) services.FolderService {
	return &FolderServiceImpl{
		folderRepo: folderRepo,
	}
}

func (s *FolderServiceImpl) CreateFolder(ctx context.Context, userID uuid.UUID, req *dto.CreateFolderRequest) (*models.Folder, error) {
	folderSlug, err := s.uniqueSlug(ctx, userID, req.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	folder := &models.Folder{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		Slug:      folderSlug,
		Icon:      req.Icon,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		logger.ErrorContext(ctx, "Failed to create folder", "user_id", userID, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Folder created", "folder_id", folder.ID, "slug", folder.Slug)
	return folder, nil
}

func (s *FolderServiceImpl) GetFolder(ctx context.Context, userID, folderID uuid.UUID) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, userID, folderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrFolderNotFound
		}
		return nil, err
	}
	return folder, nil
}

func (s *FolderServiceImpl) ListFolders(ctx context.Context, userID uuid.UUID) ([]*models.Folder, error) {
	return s.folderRepo.ListByUser(ctx, userID)
}

func (s *FolderServiceImpl) UpdateFolder(ctx context.Context, userID, folderID uuid.UUID, req *dto.UpdateFolderRequest) (*models.Folder, error) {
	folder, err := s.GetFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != folder.Name {
		folderSlug, err := s.uniqueSlug(ctx, userID, *req.Name, folder.ID)
		if err != nil {
			return nil, err
		}
		folder.Name = *req.Name
		folder.Slug = folderSlug
	}
	if req.Icon != nil {
		folder.Icon = *req.Icon
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		logger.ErrorContext(ctx, "Failed to update folder", "folder_id", folderID, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Folder updated", "folder_id", folderID)
	return folder, nil
}

func (s *FolderServiceImpl) DeleteFolder(ctx context.Context, userID, folderID uuid.UUID) error {
	if err := s.folderRepo.DeleteWithTasks(ctx, userID, folderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrFolderNotFound
		}
		logger.ErrorContext(ctx, "Failed to delete folder", "folder_id", folderID, "error", err)
		return err
	}

	logger.InfoContext(ctx, "Folder deleted", "folder_id", folderID)
	return nil
}

// uniqueSlug สร้าง slug จากชื่อ ถ้าซ้ำต่อท้ายด้วย -2, -3, ...
func (s *FolderServiceImpl) uniqueSlug(ctx context.Context, userID uuid.UUID, name string, self uuid.UUID) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "folder"
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		existing, err := s.folderRepo.GetBySlug(ctx, userID, candidate)
		if errors.Is(err, repositories.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		if existing.ID == self {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("could not find a free slug for %q", name)
}
