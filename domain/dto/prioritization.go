package dto

import "time"

type PrioritizedTaskResponse struct {
	TaskResponse
	SuggestedPriority string   `json:"suggestedPriority,omitempty"`
	EstimatedMinutes  *float64 `json:"estimatedMinutes,omitempty"`
}

// PrioritizeResponse status: prioritized | nothing_to_prioritize
// mode: local_sort | remote_rank
type PrioritizeResponse struct {
	Status  string                    `json:"status"`
	Mode    string                    `json:"mode,omitempty"`
	Updated int                       `json:"updated"`
	Tasks   []PrioritizedTaskResponse `json:"tasks"`
}

type RunStateResponse struct {
	RunID     string     `json:"runId,omitempty"`
	Phase     string     `json:"phase"`
	Error     string     `json:"error,omitempty"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}
