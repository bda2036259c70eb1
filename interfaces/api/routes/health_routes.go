package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthChecker ตรวจ dependency ภายนอก คืน map ชื่อ → error (nil = ok)
type HealthChecker func(ctx context.Context) map[string]error

func SetupHealthRoutes(app *fiber.App, check HealthChecker) {
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		deps := fiber.Map{}

		if check != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			for name, err := range check(ctx) {
				if err != nil {
					status = "degraded"
					deps[name] = err.Error()
					continue
				}
				deps[name] = "ok"
			}
		}

		return c.JSON(fiber.Map{
			"status":       status,
			"service":      "NextUp API",
			"dependencies": deps,
		})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to NextUp API",
			"version": "1.0.0",
			"docs":    "/api/v1",
			"health":  "/health",
		})
	})
}
