package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nextup-api/domain/dto"
	"nextup-api/domain/services"
	"nextup-api/pkg/logger"
	"nextup-api/pkg/utils"
)

type PrioritizationHandler struct {
	prioritizationService services.PrioritizationService
}

func NewPrioritizationHandler(prioritizationService services.PrioritizationService) *PrioritizationHandler {
	return &PrioritizationHandler{
		prioritizationService: prioritizationService,
	}
}

// Prioritize จัดลำดับ incomplete tasks ของ folder ใหม่
// ผลลัพธ์ล้มเหลว = ไม่มีอะไรถูกเขียน
func (h *PrioritizationHandler) Prioritize(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	folderID, err := parseUUIDParam(c, "folderId")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid folder ID")
	}

	result, err := h.prioritizationService.Prioritize(ctx, user.ID, folderID)
	if err != nil {
		logger.WarnContext(ctx, "Prioritization failed", "folder_id", folderID, "error", err)
		return serviceErrorResponse(c, err)
	}

	logger.InfoContext(ctx, "Folder prioritized",
		"folder_id", folderID,
		"status", result.Status,
		"mode", result.Mode,
		"updated", result.Updated,
	)

	return utils.SuccessResponse(c, toPrioritizeResponse(result))
}

// GetRunState สถานะ run ล่าสุดของ folder
func (h *PrioritizationHandler) GetRunState(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	folderID, err := parseUUIDParam(c, "folderId")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid folder ID")
	}

	state, err := h.prioritizationService.GetRunState(ctx, user.ID, folderID)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, dto.RunStateToResponse(state))
}

func toPrioritizeResponse(result *services.PrioritizationResult) dto.PrioritizeResponse {
	resp := dto.PrioritizeResponse{
		Status:  string(result.Status),
		Mode:    string(result.Mode),
		Updated: result.Updated,
		Tasks:   make([]dto.PrioritizedTaskResponse, 0, len(result.Tasks)),
	}
	for _, pt := range result.Tasks {
		resp.Tasks = append(resp.Tasks, dto.PrioritizedTaskResponse{
			TaskResponse:      dto.TaskToTaskResponse(pt.Task),
			SuggestedPriority: string(pt.Priority),
			EstimatedMinutes:  pt.EstimatedMinutes,
		})
	}
	return resp
}
