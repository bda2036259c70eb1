package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"nextup-api/domain/ports"
)

// RunStateKV เก็บ run state ใน JetStream KV
// TTL เป็นของทั้ง bucket (ตั้งตอน NewClient) จึงไม่สนค่า ttl ต่อ key
type RunStateKV struct {
	kv jetstream.KeyValue
}

var _ ports.RunStateStorePort = (*RunStateKV)(nil)

func NewRunStateKV(kv jetstream.KeyValue) *RunStateKV {
	return &RunStateKV{kv: kv}
}

func runStateKey(userID, folderID uuid.UUID) string {
	return userID.String() + "." + folderID.String()
}

func (s *RunStateKV) SaveRunState(ctx context.Context, state *ports.RunState, _ time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}
	if _, err := s.kv.Put(ctx, runStateKey(state.UserID, state.FolderID), data); err != nil {
		return fmt.Errorf("failed to put run state: %w", err)
	}
	return nil
}

func (s *RunStateKV) GetRunState(ctx context.Context, userID, folderID uuid.UUID) (*ports.RunState, error) {
	entry, err := s.kv.Get(ctx, runStateKey(userID, folderID))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run state: %w", err)
	}

	var state ports.RunState
	if err := json.Unmarshal(entry.Value(), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run state: %w", err)
	}
	return &state, nil
}
