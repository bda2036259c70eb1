package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/mutation"
	"nextup-api/domain/ports"
)

type runEntry struct {
	state   ports.RunState
	expires time.Time
}

// RunStateStore เก็บ run state ใน memory (ไม่มี Redis)
type RunStateStore struct {
	mu   sync.RWMutex
	runs map[mutation.Scope]runEntry
	now  func() time.Time
}

var _ ports.RunStateStorePort = (*RunStateStore)(nil)

func NewRunStateStore() *RunStateStore {
	return &RunStateStore{runs: make(map[mutation.Scope]runEntry), now: time.Now}
}

func (s *RunStateStore) SaveRunState(ctx context.Context, state *ports.RunState, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := mutation.Scope{UserID: state.UserID, FolderID: state.FolderID}
	s.runs[key] = runEntry{state: *state, expires: s.now().Add(ttl)}
	return nil
}

func (s *RunStateStore) GetRunState(ctx context.Context, userID, folderID uuid.UUID) (*ports.RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.runs[mutation.Scope{UserID: userID, FolderID: folderID}]
	if !ok || !s.now().Before(e.expires) {
		return nil, nil
	}
	st := e.state
	return &st, nil
}
