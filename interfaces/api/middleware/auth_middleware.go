package middleware

import (
	"github.com/gofiber/fiber/v2"

	"nextup-api/pkg/logger"
	"nextup-api/pkg/utils"
)

// Protected middleware validates JWT tokens and sets user context
// รับ token จาก Authorization header หรือ query ?token= (browser WebSocket ใส่ header ไม่ได้)
func Protected(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		token := utils.ExtractTokenFromHeader(c.Get("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization token")
		}

		userCtx, err := utils.ValidateTokenStringToUUID(token, jwtSecret)
		if err != nil {
			logger.WarnContext(ctx, "Token validation failed", "error", err, "path", c.Path())
			switch err {
			case utils.ErrExpiredToken:
				return utils.UnauthorizedResponse(c, "Token has expired")
			case utils.ErrInvalidToken:
				return utils.UnauthorizedResponse(c, "Invalid token")
			default:
				return utils.UnauthorizedResponse(c, "Token validation failed")
			}
		}

		c.Locals("user", userCtx)
		c.SetUserContext(logger.ContextWithUserID(ctx, userCtx.ID.String()))

		return c.Next()
	}
}
