package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"nextup-api/domain/ports"
)

// RunStateStore เก็บ prioritization run state เป็น JSON key ต่อ folder
type RunStateStore struct {
	client *Client
}

var _ ports.RunStateStorePort = (*RunStateStore)(nil)

func NewRunStateStore(client *Client) *RunStateStore {
	return &RunStateStore{client: client}
}

func runStateKey(userID, folderID uuid.UUID) string {
	return fmt.Sprintf("prioritize:state:%s:%s", userID, folderID)
}

func (s *RunStateStore) SaveRunState(ctx context.Context, state *ports.RunState, ttl time.Duration) error {
	return s.client.SetJSON(ctx, runStateKey(state.UserID, state.FolderID), state, ttl)
}

func (s *RunStateStore) GetRunState(ctx context.Context, userID, folderID uuid.UUID) (*ports.RunState, error) {
	var state ports.RunState
	if err := s.client.GetJSON(ctx, runStateKey(userID, folderID), &state); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}
