package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateFolderRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Icon string `json:"icon" validate:"omitempty,max=50"`
}

type UpdateFolderRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
	Icon *string `json:"icon" validate:"omitempty,max=50"`
}

type FolderResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
