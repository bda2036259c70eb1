package routes

import (
	"github.com/gofiber/fiber/v2"

	"nextup-api/interfaces/api/handlers"
)

func SetupFolderRoutes(api fiber.Router, h *handlers.Handlers, protected fiber.Handler) {
	folders := api.Group("/folders", protected)
	folders.Get("/", h.FolderHandler.ListFolders)
	folders.Post("/", h.FolderHandler.CreateFolder)
	folders.Put("/:folderId", h.FolderHandler.UpdateFolder)
	folders.Delete("/:folderId", h.FolderHandler.DeleteFolder)

	// tasks ภายใน folder
	folders.Get("/:folderId/tasks", h.TaskHandler.ListFolderTasks)
	folders.Post("/:folderId/tasks", h.TaskHandler.CreateTask)
	folders.Post("/:folderId/tasks/import", h.TaskHandler.ImportTasks)
	folders.Post("/:folderId/tasks/reorder", h.TaskHandler.ReorderTasks)

	// AI prioritization
	folders.Post("/:folderId/prioritize", h.PrioritizationHandler.Prioritize)
	folders.Get("/:folderId/prioritize", h.PrioritizationHandler.GetRunState)
}
