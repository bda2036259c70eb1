package serviceimpl

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/models"
	"nextup-api/domain/mutation"
	"nextup-api/domain/planner"
	"nextup-api/domain/repositories"
	"nextup-api/domain/services"
	"nextup-api/pkg/logger"
)

// SweepConfig การตั้งค่า staleness sweep
type SweepConfig struct {
	Retention time.Duration // default: 120h
	Timeout   time.Duration // เวลาสูงสุดของ sweep เบื้องหลังหนึ่งครั้ง (default: 30s)
}

// StalenessSweepService ลบ completed tasks ที่เก่ากว่า retention
// ทำงานตอนโหลด folder เท่านั้น ไม่มี timer
type StalenessSweepService struct {
	config   SweepConfig
	taskRepo repositories.TaskRepository
	executor *CommitExecutor
	now      func() time.Time
	wg       sync.WaitGroup
}

var _ services.SweepService = (*StalenessSweepService)(nil)

func NewStalenessSweepService(config SweepConfig, taskRepo repositories.TaskRepository, executor *CommitExecutor) *StalenessSweepService {
	if config.Retention <= 0 {
		config.Retention = 120 * time.Hour
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &StalenessSweepService{
		config:   config,
		taskRepo: taskRepo,
		executor: executor,
		now:      time.Now,
	}
}

func (s *StalenessSweepService) SweepFolder(ctx context.Context, userID, folderID uuid.UUID) (int, error) {
	completed, err := s.taskRepo.ListCompleted(ctx, userID, folderID)
	if err != nil {
		return 0, err
	}
	return s.sweep(ctx, userID, folderID, completed)
}

// SweepLoaded รันเบื้องหลังบน context ที่แยกจาก request
// คืน completed tasks ที่ยังไม่ stale ให้ caller แสดงผลได้ทันที
func (s *StalenessSweepService) SweepLoaded(ctx context.Context, userID, folderID uuid.UUID, completed []*models.Task) []*models.Task {
	now := s.now()
	plan := planner.Sweep(completed, now, s.config.Retention)
	if plan.IsEmpty() {
		return completed
	}

	kept := make([]*models.Task, 0, len(completed)-plan.Len())
	for _, t := range completed {
		if !planner.IsStale(t, now, s.config.Retention) {
			kept = append(kept, t)
		}
	}

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Timeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		if _, err := s.commit(bg, userID, folderID, plan); err != nil {
			logger.WarnContext(bg, "Staleness sweep failed",
				"user_id", userID,
				"folder_id", folderID,
				"error", err,
			)
		}
	}()
	return kept
}

// Wait รอ sweep เบื้องหลังที่ค้างอยู่ (ใช้ตอน shutdown และใน test)
func (s *StalenessSweepService) Wait() {
	s.wg.Wait()
}

func (s *StalenessSweepService) sweep(ctx context.Context, userID, folderID uuid.UUID, completed []*models.Task) (int, error) {
	plan := planner.Sweep(completed, s.now(), s.config.Retention)
	return s.commit(ctx, userID, folderID, plan)
}

func (s *StalenessSweepService) commit(ctx context.Context, userID, folderID uuid.UUID, plan *mutation.Plan) (int, error) {
	if plan.IsEmpty() {
		return 0, nil
	}
	if err := s.executor.Commit(ctx, plan, WithOp("sweep")); err != nil {
		return 0, err
	}
	logger.InfoContext(ctx, "Swept stale completed tasks",
		"user_id", userID,
		"folder_id", folderID,
		"deleted", plan.Len(),
		"retention", s.config.Retention,
	)
	return plan.Len(), nil
}
