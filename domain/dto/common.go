package dto

import "github.com/google/uuid"

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type IDRequest struct {
	ID uuid.UUID `json:"id" validate:"required" param:"id"`
}
