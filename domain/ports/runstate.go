package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunPhase สถานะของ prioritization run ต่อ folder
type RunPhase string

const (
	RunIdle       RunPhase = "idle"
	RunFetching   RunPhase = "fetching"
	RunLocalSort  RunPhase = "local_sort"
	RunRemoteRank RunPhase = "remote_rank"
	RunCommitting RunPhase = "committing"
	RunError      RunPhase = "error"
)

// Active true ระหว่าง fetching ถึง committing
func (p RunPhase) Active() bool {
	switch p {
	case RunFetching, RunLocalSort, RunRemoteRank, RunCommitting:
		return true
	}
	return false
}

type RunState struct {
	RunID     string    `json:"runId,omitempty"`
	UserID    uuid.UUID `json:"userId"`
	FolderID  uuid.UUID `json:"folderId"`
	Phase     RunPhase  `json:"phase"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RunStateStorePort เก็บ run state ให้ instance อื่นอ่านได้
type RunStateStorePort interface {
	SaveRunState(ctx context.Context, state *RunState, ttl time.Duration) error
	// GetRunState คืน nil, nil ถ้าไม่มี
	GetRunState(ctx context.Context, userID, folderID uuid.UUID) (*RunState, error)
}
