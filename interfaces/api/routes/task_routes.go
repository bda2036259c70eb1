package routes

import (
	"github.com/gofiber/fiber/v2"

	"nextup-api/interfaces/api/handlers"
)

func SetupTaskRoutes(api fiber.Router, h *handlers.Handlers, protected fiber.Handler) {
	tasks := api.Group("/tasks", protected)
	tasks.Put("/:id", h.TaskHandler.UpdateTask)
	tasks.Post("/:id/toggle", h.TaskHandler.ToggleCompletion)
	tasks.Post("/:id/below", h.TaskHandler.CreateBelow)
	tasks.Delete("/:id", h.TaskHandler.DeleteTask)
}
