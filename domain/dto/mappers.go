package dto

import (
	"nextup-api/domain/models"
	"nextup-api/domain/ports"
)

func UserToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		Role:        user.Role,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func TaskToTaskResponse(task *models.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		FolderID:    task.FolderID,
		Title:       task.Title,
		Completed:   task.Completed,
		CompletedAt: task.CompletedAt,
		Deadline:    task.Deadline,
		Order:       task.Order,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.Priority != nil {
		p := string(*task.Priority)
		resp.Priority = &p
	}
	return resp
}

func TasksToTaskResponses(tasks []*models.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskToTaskResponse(t))
	}
	return out
}

func FolderToFolderResponse(folder *models.Folder) FolderResponse {
	return FolderResponse{
		ID:        folder.ID,
		Name:      folder.Name,
		Slug:      folder.Slug,
		Icon:      folder.Icon,
		CreatedAt: folder.CreatedAt,
		UpdatedAt: folder.UpdatedAt,
	}
}

func FoldersToFolderResponses(folders []*models.Folder) []FolderResponse {
	out := make([]FolderResponse, 0, len(folders))
	for _, f := range folders {
		out = append(out, FolderToFolderResponse(f))
	}
	return out
}

func RunStateToResponse(state *ports.RunState) RunStateResponse {
	resp := RunStateResponse{
		RunID: state.RunID,
		Phase: string(state.Phase),
		Error: state.Error,
	}
	if !state.StartedAt.IsZero() {
		started := state.StartedAt
		resp.StartedAt = &started
	}
	if !state.UpdatedAt.IsZero() {
		updated := state.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
