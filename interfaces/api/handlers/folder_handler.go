package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nextup-api/domain/dto"
	"nextup-api/domain/services"
	"nextup-api/pkg/logger"
	"nextup-api/pkg/utils"
)

type FolderHandler struct {
	folderService services.FolderService
}

func NewFolderHandler(folderService services.FolderService) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
	}
}

func (h *FolderHandler) ListFolders(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	folders, err := h.folderService.ListFolders(ctx, user.ID)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, dto.FoldersToFolderResponses(folders))
}

func (h *FolderHandler) CreateFolder(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	var req dto.CreateFolderRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	folder, err := h.folderService.CreateFolder(ctx, user.ID, &req)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	logger.InfoContext(ctx, "Folder created", "folder_id", folder.ID, "slug", folder.Slug)

	return utils.CreatedResponse(c, dto.FolderToFolderResponse(folder))
}

func (h *FolderHandler) UpdateFolder(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	folderID, err := parseUUIDParam(c, "folderId")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid folder ID")
	}

	var req dto.UpdateFolderRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	folder, err := h.folderService.UpdateFolder(ctx, user.ID, folderID, &req)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, dto.FolderToFolderResponse(folder))
}

// DeleteFolder ลบ folder พร้อม tasks ข้างใน
func (h *FolderHandler) DeleteFolder(c *fiber.Ctx) error {
	ctx := c.UserContext()

	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	folderID, err := parseUUIDParam(c, "folderId")
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid folder ID")
	}

	if err := h.folderService.DeleteFolder(ctx, user.ID, folderID); err != nil {
		return serviceErrorResponse(c, err)
	}

	logger.InfoContext(ctx, "Folder deleted", "folder_id", folderID)

	return utils.NoContentResponse(c)
}
