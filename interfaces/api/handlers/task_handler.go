package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nextup-api/domain/dto"
	"nextup-api/domain/services"
	"nextup-api/pkg/logger"
	"nextup-api/pkg/utils"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListFolderTasks snapshot ของ folder (trigger staleness sweep เบื้องหลัง)
func (h *TaskHandler) ListFolderTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	folderID, err := parseUUIDParam(c, "folderId")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid folder ID")
	}

	tasks, err := h.taskService.ListFolderTasks(ctx, user.ID, folderID)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, dto.FolderTasksResponse{
		Incomplete: dto.TasksToTaskResponses(tasks.Incomplete),
		Completed:  dto.TasksToTaskResponses(tasks.Completed),
	})
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	folderID, err := parseUUIDParam(c, "folderId")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid folder ID")
	}

	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	task, err := h.taskService.CreateTask(ctx, user.ID, folderID, &req)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	logger.InfoContext(ctx, "Task created", "task_id", task.ID, "folder_id", folderID)

	return utils.CreatedResponse(c, dto.TaskToTaskResponse(task))
}

// ImportTasks รับรายการ task ที่ extract มาแล้ว ต่อท้าย list ใน batch เดียว
func (h *TaskHandler) ImportTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	folderID, err := parseUUIDParam(c, "folderId")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid folder ID")
	}

	var req dto.ImportTasksRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	tasks, err := h.taskService.ImportTasks(ctx, user.ID, folderID, &req)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	logger.InfoContext(ctx, "Tasks imported", "folder_id", folderID, "count", len(tasks))

	return utils.CreatedResponse(c, dto.TasksToTaskResponses(tasks))
}

// ReorderTasks drag-and-drop ภายใน incomplete list
func (h *TaskHandler) ReorderTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	folderID, err := parseUUIDParam(c, "folderId")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid folder ID")
	}

	var req dto.ReorderTasksRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	updated, err := h.taskService.ReorderTasks(ctx, user.ID, folderID, &req)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, dto.ReorderTasksResponse{Updated: updated})
}

func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	task, err := h.taskService.UpdateTask(ctx, user.ID, taskID, &req)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

// ToggleCompletion ตอบกลับหลัง commit เสร็จ (อย่างน้อย latency floor)
func (h *TaskHandler) ToggleCompletion(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	task, err := h.taskService.ToggleCompletion(ctx, user.ID, taskID)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	logger.InfoContext(ctx, "Task toggled", "task_id", task.ID, "completed", task.Completed)

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

// CreateBelow กด Enter ขณะแก้ task: บันทึก title แล้วแทรก task ว่างใต้มัน
func (h *TaskHandler) CreateBelow(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	var req dto.CreateBelowRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	task, err := h.taskService.CreateBelow(ctx, user.ID, taskID, &req)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return utils.CreatedResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	if err := h.taskService.DeleteTask(ctx, user.ID, taskID); err != nil {
		return serviceErrorResponse(c, err)
	}

	logger.InfoContext(ctx, "Task deleted", "task_id", taskID)

	return utils.NoContentResponse(c)
}
