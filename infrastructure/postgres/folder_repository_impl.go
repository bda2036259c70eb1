package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nextup-api/domain/models"
	"nextup-api/domain/repositories"
)

type FolderRepositoryImpl struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) repositories.FolderRepository {
	return &FolderRepositoryImpl{db: db}
}

func (r *FolderRepositoryImpl) Create(ctx context.Context, folder *models.Folder) error {
	return r.db.WithContext(ctx).Create(folder).Error
}

func (r *FolderRepositoryImpl) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&folder).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &folder, nil
}

func (r *FolderRepositoryImpl) GetBySlug(ctx context.Context, userID uuid.UUID, slug string) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.WithContext(ctx).Where("user_id = ? AND slug = ?", userID, slug).First(&folder).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &folder, nil
}

func (r *FolderRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Folder, error) {
	var folders []*models.Folder
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&folders).Error
	return folders, err
}

func (r *FolderRepositoryImpl) Update(ctx context.Context, folder *models.Folder) error {
	return r.db.WithContext(ctx).
		Model(&models.Folder{}).
		Where("id = ? AND user_id = ?", folder.ID, folder.UserID).
		Updates(map[string]any{"name": folder.Name, "slug": folder.Slug, "icon": folder.Icon}).Error
}

func (r *FolderRepositoryImpl) DeleteWithTasks(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND folder_id = ?", userID, id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Folder{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return nil
	})
}
