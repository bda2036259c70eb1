package routes

import (
	"github.com/gofiber/fiber/v2"

	"nextup-api/interfaces/api/handlers"
)

func SetupAuthRoutes(api fiber.Router, h *handlers.Handlers, protected fiber.Handler) {
	auth := api.Group("/auth")

	// Google OAuth (web redirect flow)
	auth.Get("/google", h.AuthHandler.GoogleLogin)
	auth.Get("/google/callback", h.AuthHandler.GoogleCallback)

	// ID token exchange (desktop deep link / web one-tap)
	auth.Post("/google/token", h.AuthHandler.GoogleTokenLogin)

	auth.Get("/me", protected, h.UserHandler.GetProfile)
}
