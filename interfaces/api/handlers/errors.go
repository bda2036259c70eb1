package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"nextup-api/domain/services"
	"nextup-api/pkg/logger"
	"nextup-api/pkg/utils"
)

// serviceErrorResponse แปลง error จาก service เป็น HTTP response
func serviceErrorResponse(c *fiber.Ctx, err error) error {
	ctx := c.UserContext()

	var commitErr *services.CommitError
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		return utils.NotFoundResponse(c, "Task not found")
	case errors.Is(err, services.ErrFolderNotFound):
		return utils.NotFoundResponse(c, "Folder not found")
	case errors.Is(err, services.ErrUserNotFound):
		return utils.NotFoundResponse(c, "User not found")
	case errors.Is(err, services.ErrFolderBusy):
		return utils.FolderBusyResponse(c, err.Error())
	case errors.Is(err, services.ErrTaskNotInSequence):
		return utils.ConflictResponse(c, "Task is not part of this list")
	case errors.As(err, &commitErr):
		logger.ErrorContext(ctx, "Commit failed", "op", commitErr.Op, "error", commitErr.Err)
		return utils.SaveFailedResponse(c, commitErr.Message())
	case errors.Is(err, services.ErrRankingUnavailable):
		return utils.RankingFailedResponse(c, fiber.StatusServiceUnavailable,
			"Prioritization is unavailable right now. Nothing was changed.")
	case errors.Is(err, services.ErrRunSuperseded):
		return utils.RankingFailedResponse(c, fiber.StatusGatewayTimeout,
			"Prioritization took too long. Nothing was changed.")
	case errors.Is(err, services.ErrMalformedRanking):
		return utils.RankingFailedResponse(c, fiber.StatusBadGateway,
			"Prioritization returned an unusable result. Nothing was changed.")
	case errors.Is(err, services.ErrInvalidIDToken):
		return utils.UnauthorizedResponse(c, "Invalid identity token")
	case errors.Is(err, services.ErrAccountDisabled):
		return utils.ForbiddenResponse(c, "Account is disabled")
	}

	logger.ErrorContext(ctx, "Unhandled service error", "error", err)
	return utils.InternalServerErrorResponse(c)
}

// parseUUIDParam อ่าน path param เป็น uuid
func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.WarnContext(c.UserContext(), "Invalid id param", "param", name, "value", raw)
		return uuid.Nil, err
	}
	return id, nil
}
