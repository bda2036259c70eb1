package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nextup-api/domain/models"
	"nextup-api/domain/mutation"
	"nextup-api/domain/ports"
	"nextup-api/domain/repositories"
)

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepositoryImpl {
	return &TaskRepositoryImpl{db: db}
}

var (
	_ repositories.TaskRepository = (*TaskRepositoryImpl)(nil)
	_ ports.BatchWriterPort       = (*TaskRepositoryImpl)(nil)
)

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&task).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) ListByFolder(ctx context.Context, userID, folderID uuid.UUID) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND folder_id = ?", userID, folderID).
		Order("completed ASC, sort_order ASC, created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepositoryImpl) ListIncomplete(ctx context.Context, userID, folderID uuid.UUID) ([]*models.Task, error) {
	return r.listByCompletion(ctx, userID, folderID, false)
}

func (r *TaskRepositoryImpl) ListCompleted(ctx context.Context, userID, folderID uuid.UUID) ([]*models.Task, error) {
	return r.listByCompletion(ctx, userID, folderID, true)
}

func (r *TaskRepositoryImpl) listByCompletion(ctx context.Context, userID, folderID uuid.UUID, completed bool) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND folder_id = ? AND completed = ?", userID, folderID, completed).
		Order("sort_order ASC, created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// ApplyBatch เขียนทั้ง plan ใน transaction เดียว
// update document ที่ไม่มีอยู่ทำให้ทั้ง batch rollback, delete ที่ไม่มีอยู่ถือว่าสำเร็จ
func (r *TaskRepositoryImpl) ApplyBatch(ctx context.Context, plan *mutation.Plan) error {
	if plan.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, m := range plan.Mutations {
			if err := applyMutation(tx, m); err != nil {
				return fmt.Errorf("mutation %d (%s %s): %w", i, m.Op, m.Ref.Path(), err)
			}
		}
		return nil
	})
}

func applyMutation(tx *gorm.DB, m mutation.Mutation) error {
	switch m.Op {
	case mutation.OpCreate:
		return tx.Create(m.Task).Error

	case mutation.OpUpdate:
		res := tx.Model(&models.Task{}).
			Where("id = ? AND user_id = ?", m.Ref.TaskID, m.Ref.UserID).
			Updates(m.Patch.Columns())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return nil

	case mutation.OpDelete:
		return tx.Where("id = ? AND user_id = ?", m.Ref.TaskID, m.Ref.UserID).Delete(&models.Task{}).Error
	}
	return fmt.Errorf("unknown op %q", m.Op)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}
