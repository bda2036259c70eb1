package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/dto"
	"nextup-api/domain/models"
	"nextup-api/domain/mutation"
	"nextup-api/domain/ordering"
	"nextup-api/domain/planner"
	"nextup-api/domain/ports"
	"nextup-api/domain/repositories"
	"nextup-api/domain/services"
	"nextup-api/pkg/logger"
)

const reorderLockTTL = 30 * time.Second

type TaskServiceImpl struct {
	taskRepo     repositories.TaskRepository
	folderRepo   repositories.FolderRepository
	executor     *CommitExecutor
	sweeper      services.SweepService
	lock         ports.FolderLockPort
	indicator    ports.SavingIndicatorPort
	latencyFloor time.Duration
	now          func() time.Time
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	folderRepo repositories.FolderRepository,
	executor *CommitExecutor,
	sweeper services.SweepService,
	lock ports.FolderLockPort,
	indicator ports.SavingIndicatorPort,
	latencyFloor time.Duration,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		taskRepo:     taskRepo,
		folderRepo:   folderRepo,
		executor:     executor,
		sweeper:      sweeper,
		lock:         lock,
		indicator:    indicator,
		latencyFloor: latencyFloor,
		now:          time.Now,
	}
}

var _ services.TaskService = (*TaskServiceImpl)(nil)

func (s *TaskServiceImpl) ListFolderTasks(ctx context.Context, userID, folderID uuid.UUID) (*services.FolderTasks, error) {
	if err := s.ensureFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByFolder(ctx, userID, folderID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list tasks", "folder_id", folderID, "error", err)
		return nil, err
	}
	incomplete, completed := ordering.Partition(tasks)

	if s.sweeper != nil && len(completed) > 0 {
		// stale tasks ถูกลบเบื้องหลังและไม่ถูกส่งกลับไปแสดง
		completed = s.sweeper.SweepLoaded(ctx, userID, folderID, completed)
	}

	return &services.FolderTasks{Incomplete: incomplete, Completed: completed}, nil
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, userID, folderID uuid.UUID, req *dto.CreateTaskRequest) (*models.Task, error) {
	if err := s.ensureFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}
	incomplete, err := s.taskRepo.ListIncomplete(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	task := s.newTask(userID, folderID, planner.NormalizeTitle(req.Title), req.Deadline)
	plan := planner.Create(task, incomplete)
	if err := s.commit(ctx, plan, "create", userID, folderID, 0); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task created", "task_id", task.ID, "folder_id", folderID, "order", task.Order)
	return task, nil
}

func (s *TaskServiceImpl) ImportTasks(ctx context.Context, userID, folderID uuid.UUID, req *dto.ImportTasksRequest) ([]*models.Task, error) {
	if err := s.ensureFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}
	incomplete, err := s.taskRepo.ListIncomplete(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, len(req.Tasks))
	for i, item := range req.Tasks {
		tasks[i] = s.newTask(userID, folderID, planner.NormalizeTitle(item.Title), item.Deadline)
	}
	plan := planner.CreateMany(tasks, incomplete)
	if err := s.commit(ctx, plan, "import", userID, folderID, 0); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Tasks imported", "folder_id", folderID, "count", len(tasks))
	return tasks, nil
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.getTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	edit := planner.Edit{
		Title:         req.Title,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
		FolderID:      req.FolderID,
	}

	var targetIncomplete []*models.Task
	if req.FolderID != nil && *req.FolderID != task.FolderID {
		if err := s.ensureFolder(ctx, userID, *req.FolderID); err != nil {
			return nil, err
		}
		targetIncomplete, err = s.taskRepo.ListIncomplete(ctx, userID, *req.FolderID)
		if err != nil {
			return nil, err
		}
	}

	plan := planner.ApplyEdit(task, edit, targetIncomplete)
	if err := s.commit(ctx, plan, "edit", userID, task.FolderID, s.latencyFloor); err != nil {
		return nil, err
	}
	return applied(task, plan), nil
}

func (s *TaskServiceImpl) ToggleCompletion(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.getTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	var incomplete []*models.Task
	if task.Completed {
		incomplete, err = s.taskRepo.ListIncomplete(ctx, userID, task.FolderID)
		if err != nil {
			return nil, err
		}
	}

	plan := planner.ToggleCompletion(task, s.now(), incomplete)
	if err := s.commit(ctx, plan, "toggle", userID, task.FolderID, s.latencyFloor); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task completion toggled", "task_id", taskID, "completed", !task.Completed)
	return applied(task, plan), nil
}

// CreateBelow บันทึก title ที่แก้อยู่แล้วแทรก task ว่างใต้ task นั้น
func (s *TaskServiceImpl) CreateBelow(ctx context.Context, userID, taskID uuid.UUID, req *dto.CreateBelowRequest) (*models.Task, error) {
	current, err := s.getTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	incomplete, err := s.taskRepo.ListIncomplete(ctx, userID, current.FolderID)
	if err != nil {
		return nil, err
	}

	plan, created, err := planner.CreateBelow(current, req.Title, incomplete, s.now())
	if err != nil {
		logger.ErrorContext(ctx, "Create below aborted", "task_id", taskID, "folder_id", current.FolderID, "error", err)
		return nil, err
	}
	if err := s.commit(ctx, plan, "create_below", userID, current.FolderID, s.latencyFloor); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task created below", "task_id", created.ID, "after", taskID, "order", created.Order)
	return created, nil
}

func (s *TaskServiceImpl) ReorderTasks(ctx context.Context, userID, folderID uuid.UUID, req *dto.ReorderTasksRequest) (int, error) {
	if err := s.ensureFolder(ctx, userID, folderID); err != nil {
		return 0, err
	}

	scope := mutation.Scope{UserID: userID, FolderID: folderID}
	token, ok, err := s.lock.TryLock(ctx, scope, reorderLockTTL)
	if err != nil {
		return 0, fmt.Errorf("acquire folder lock: %w", err)
	}
	if !ok {
		return 0, services.ErrFolderBusy
	}
	defer func() {
		if err := s.lock.Unlock(context.WithoutCancel(ctx), scope, token); err != nil {
			logger.WarnContext(ctx, "Failed to release folder lock", "folder_id", folderID, "error", err)
		}
	}()

	incomplete, err := s.taskRepo.ListIncomplete(ctx, userID, folderID)
	if err != nil {
		return 0, err
	}

	from := ordering.IndexOf(incomplete, req.TaskID)
	if from < 0 {
		return 0, services.ErrTaskNotFound
	}
	to := -1
	if req.OverTaskID != nil {
		to = ordering.IndexOf(incomplete, *req.OverTaskID)
	}

	plan := planner.DragReorder(incomplete, from, to)
	if err := s.commit(ctx, plan, "reorder", userID, folderID, 0); err != nil {
		return 0, err
	}

	if plan.Len() > 0 {
		logger.InfoContext(ctx, "Tasks reordered", "folder_id", folderID, "from", from, "to", to, "updated", plan.Len())
	}
	return plan.Len(), nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.getTask(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if err := s.commit(ctx, planner.Delete(task), "delete", userID, task.FolderID, 0); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Task deleted", "task_id", taskID)
	return nil
}

func (s *TaskServiceImpl) commit(ctx context.Context, plan *mutation.Plan, op string, userID, folderID uuid.UUID, floor time.Duration) error {
	scope := mutation.Scope{UserID: userID, FolderID: folderID}
	return s.executor.Commit(ctx, plan, WithOp(op), WithLatencyFloor(floor), WithIndicator(s.indicator, scope))
}

func (s *TaskServiceImpl) newTask(userID, folderID uuid.UUID, title string, deadline *time.Time) *models.Task {
	now := s.now()
	return &models.Task{
		ID:        uuid.New(),
		UserID:    userID,
		FolderID:  folderID,
		Title:     title,
		Deadline:  deadline,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *TaskServiceImpl) getTask(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) ensureFolder(ctx context.Context, userID, folderID uuid.UUID) error {
	if _, err := s.folderRepo.GetByID(ctx, userID, folderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrFolderNotFound
		}
		return err
	}
	return nil
}

// applied คืนสำเนา task หลัง apply patch ของตัวเองใน plan (ไม่อ่านกลับจาก storage)
func applied(task *models.Task, plan *mutation.Plan) *models.Task {
	out := task.Clone()
	for _, m := range plan.Mutations {
		if m.Op == mutation.OpUpdate && m.Ref.TaskID == task.ID {
			m.Patch.ApplyTo(out)
		}
	}
	return out
}
