package handlers

import (
	"nextup-api/domain/services"
	"nextup-api/pkg/config"
)

// Services contains all the services needed for handlers
type Services struct {
	UserService           services.UserService
	FolderService         services.FolderService
	TaskService           services.TaskService
	PrioritizationService services.PrioritizationService
	GoogleConfig          config.GoogleOAuthConfig
	SecureCookies         bool // production: oauth_state cookie เป็น Secure
}

// Handlers contains all HTTP handlers
type Handlers struct {
	UserHandler           *UserHandler
	AuthHandler           *AuthHandler
	FolderHandler         *FolderHandler
	TaskHandler           *TaskHandler
	PrioritizationHandler *PrioritizationHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(services *Services) *Handlers {
	return &Handlers{
		UserHandler:           NewUserHandler(services.UserService),
		AuthHandler:           NewAuthHandler(services.UserService, services.GoogleConfig, services.SecureCookies),
		FolderHandler:         NewFolderHandler(services.FolderService),
		TaskHandler:           NewTaskHandler(services.TaskService),
		PrioritizationHandler: NewPrioritizationHandler(services.PrioritizationService),
	}
}
