package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/models"
	"nextup-api/domain/mutation"
	"nextup-api/domain/planner"
	"nextup-api/domain/ports"
	"nextup-api/domain/repositories"
	"nextup-api/domain/services"
	"nextup-api/pkg/logger"
)

// PrioritizationConfig การตั้งค่าของ AI prioritization
type PrioritizationConfig struct {
	RankTimeout     time.Duration // default: 60s
	LockTTL         time.Duration // default: 5m
	PersistPriority bool          // เขียน priority label ลง storage ด้วย
}

type PrioritizationServiceImpl struct {
	config     PrioritizationConfig
	taskRepo   repositories.TaskRepository
	folderRepo repositories.FolderRepository
	executor   *CommitExecutor
	ranker     ports.RankingPort
	lock       ports.FolderLockPort
	tracker    *PrioritizationTracker
	indicator  ports.SavingIndicatorPort
}

func NewPrioritizationService(
	config PrioritizationConfig,
	taskRepo repositories.TaskRepository,
	folderRepo repositories.FolderRepository,
	executor *CommitExecutor,
	ranker ports.RankingPort,
	lock ports.FolderLockPort,
	tracker *PrioritizationTracker,
	indicator ports.SavingIndicatorPort,
) services.PrioritizationService {
	if config.RankTimeout <= 0 {
		config.RankTimeout = 60 * time.Second
	}
	if config.LockTTL <= 0 {
		config.LockTTL = 5 * time.Minute
	}
	return &PrioritizationServiceImpl{
		config:     config,
		taskRepo:   taskRepo,
		folderRepo: folderRepo,
		executor:   executor,
		ranker:     ranker,
		lock:       lock,
		tracker:    tracker,
		indicator:  indicator,
	}
}

// Prioritize re-sequences the incomplete tasks of a folder. Once started
// the run is not cancelled by the caller going away.
func (s *PrioritizationServiceImpl) Prioritize(ctx context.Context, userID, folderID uuid.UUID) (*services.PrioritizationResult, error) {
	ctx = context.WithoutCancel(ctx)

	if _, err := s.folderRepo.GetByID(ctx, userID, folderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrFolderNotFound
		}
		return nil, err
	}

	scope := mutation.Scope{UserID: userID, FolderID: folderID}
	token, ok, err := s.lock.TryLock(ctx, scope, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire folder lock: %w", err)
	}
	if !ok {
		logger.WarnContext(ctx, "Prioritize rejected, folder busy", "folder_id", folderID)
		return nil, services.ErrFolderBusy
	}
	defer func() {
		if err := s.lock.Unlock(ctx, scope, token); err != nil {
			logger.WarnContext(ctx, "Failed to release folder lock", "folder_id", folderID, "error", err)
		}
	}()

	runID := s.tracker.Begin(ctx, scope, token)
	result, err := s.run(ctx, scope, runID)
	if err != nil {
		s.tracker.Fail(ctx, scope, runID, err)
		logger.WarnContext(ctx, "Prioritization failed", "user_id", userID, "folder_id", folderID, "run_id", runID, "error", err)
		return nil, err
	}
	s.tracker.Finish(ctx, scope, runID)

	logger.InfoContext(ctx, "Folder prioritized",
		"user_id", userID,
		"folder_id", folderID,
		"status", result.Status,
		"mode", result.Mode,
		"updated", result.Updated,
	)
	return result, nil
}

func (s *PrioritizationServiceImpl) GetRunState(ctx context.Context, userID, folderID uuid.UUID) (*ports.RunState, error) {
	return s.tracker.Get(ctx, mutation.Scope{UserID: userID, FolderID: folderID})
}

func (s *PrioritizationServiceImpl) run(ctx context.Context, scope mutation.Scope, runID string) (*services.PrioritizationResult, error) {
	incomplete, err := s.taskRepo.ListIncomplete(ctx, scope.UserID, scope.FolderID)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if len(incomplete) == 0 {
		return &services.PrioritizationResult{Status: services.StatusNothingToPrioritize}, nil
	}

	var (
		mode      ports.RunPhase
		sequence  []*models.Task
		annotated map[uuid.UUID]ports.RankedTask
	)

	if allHaveDeadlines(incomplete) {
		mode = ports.RunLocalSort
		if !s.tracker.Advance(ctx, scope, runID, mode) {
			return nil, services.ErrRunSuperseded
		}
		sequence = planner.SortByDeadline(incomplete)
	} else {
		mode = ports.RunRemoteRank
		if !s.tracker.Advance(ctx, scope, runID, mode) {
			return nil, services.ErrRunSuperseded
		}
		sequence, annotated, err = s.rank(ctx, incomplete)
		if err != nil {
			return nil, err
		}
	}

	var labels map[uuid.UUID]models.Priority
	if s.config.PersistPriority && len(annotated) > 0 {
		labels = make(map[uuid.UUID]models.Priority, len(annotated))
		for id, r := range annotated {
			labels[id] = r.Priority
		}
	}

	// ranking อาจกินเวลานานจน detector ปลด run นี้ไปแล้ว
	if !s.tracker.Advance(ctx, scope, runID, ports.RunCommitting) {
		return nil, services.ErrRunSuperseded
	}
	plan := planner.Reorder(sequence, labels)
	if err := s.executor.Commit(ctx, plan, WithOp("prioritize"), WithIndicator(s.indicator, scope)); err != nil {
		return nil, err
	}

	result := &services.PrioritizationResult{
		Status:  services.StatusPrioritized,
		Mode:    mode,
		Updated: plan.Len(),
		Tasks:   make([]services.PrioritizedTask, len(sequence)),
	}
	for i, t := range sequence {
		task := t.Clone()
		task.Order = i
		pt := services.PrioritizedTask{Task: task}
		if r, ok := annotated[t.ID]; ok {
			pt.Priority = r.Priority
			minutes := r.EstimatedMinutes
			pt.EstimatedMinutes = &minutes
			if labels != nil {
				label := r.Priority
				task.Priority = &label
			}
		}
		result.Tasks[i] = pt
	}
	return result, nil
}

// rank calls the ranking collaborator and turns its answer into a full
// sequence. Tasks the answer leaves out keep their prior relative order
// after the ranked ones.
func (s *PrioritizationServiceImpl) rank(ctx context.Context, incomplete []*models.Task) ([]*models.Task, map[uuid.UUID]ports.RankedTask, error) {
	if s.ranker == nil {
		return nil, nil, services.ErrRankingUnavailable
	}

	req := &ports.RankingRequest{Tasks: make([]ports.RankingTask, len(incomplete))}
	for i, t := range incomplete {
		req.Tasks[i] = ports.RankingTask{ID: t.ID, Title: t.Title, Deadline: t.Deadline, Priority: t.Priority}
	}

	rankCtx, cancel := context.WithTimeout(ctx, s.config.RankTimeout)
	defer cancel()

	res, err := s.ranker.Rank(rankCtx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("rank tasks: %w", err)
	}
	if res == nil || len(res.Tasks) == 0 {
		return nil, nil, fmt.Errorf("%w: empty ranking", services.ErrMalformedRanking)
	}

	byID := make(map[uuid.UUID]*models.Task, len(incomplete))
	for _, t := range incomplete {
		byID[t.ID] = t
	}

	annotated := make(map[uuid.UUID]ports.RankedTask, len(res.Tasks))
	sequence := make([]*models.Task, 0, len(incomplete))
	for i, r := range res.Tasks {
		t, ok := byID[r.ID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: item %d has unknown id %s", services.ErrMalformedRanking, i, r.ID)
		}
		if _, dup := annotated[r.ID]; dup {
			return nil, nil, fmt.Errorf("%w: item %d repeats id %s", services.ErrMalformedRanking, i, r.ID)
		}
		if !r.Priority.IsValid() {
			return nil, nil, fmt.Errorf("%w: item %d has priority %q", services.ErrMalformedRanking, i, r.Priority)
		}
		annotated[r.ID] = r
		sequence = append(sequence, t)
	}
	for _, t := range incomplete {
		if _, ok := annotated[t.ID]; !ok {
			sequence = append(sequence, t)
		}
	}
	return sequence, annotated, nil
}

func allHaveDeadlines(tasks []*models.Task) bool {
	for _, t := range tasks {
		if !t.HasDeadline() {
			return false
		}
	}
	return true
}
