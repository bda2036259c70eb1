package routes

import (
	"github.com/gofiber/fiber/v2"

	"nextup-api/interfaces/api/handlers"
	"nextup-api/interfaces/api/middleware"
)

// Options ค่าที่ route ต้องใช้นอกจาก handlers
type Options struct {
	JWTSecret string
	Health    HealthChecker
}

func SetupRoutes(app *fiber.App, h *handlers.Handlers, opts Options) {
	SetupHealthRoutes(app, opts.Health)

	api := app.Group("/api/v1")
	protected := middleware.Protected(opts.JWTSecret)

	SetupAuthRoutes(api, h, protected)
	SetupFolderRoutes(api, h, protected)
	SetupTaskRoutes(api, h, protected)

	// WebSocket อยู่นอก /api/v1
	SetupWebSocketRoutes(app, protected)
}
