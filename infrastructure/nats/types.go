package nats

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/ports"
)

const (
	// SubjectTaskEvents prefix ของ live feed: tasks.events.{user_id}.{folder_id}
	SubjectTaskEvents = "tasks.events"

	// RunStateBucket JetStream KV สำหรับ prioritization run state
	RunStateBucket = "NEXTUP_RUN_STATE"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TaskEventMessage - API instance → API instances (via Pub/Sub)
// ═══════════════════════════════════════════════════════════════════════════════
type TaskEventMessage struct {
	Type     string           `json:"type"` // folder_changed, saving, prioritize_state
	UserID   string           `json:"user_id"`
	FolderID string           `json:"folder_id"`
	Saving   bool             `json:"saving,omitempty"`
	Run      *RunStateMessage `json:"run,omitempty"`
	At       int64            `json:"at"` // unix millis
}

type RunStateMessage struct {
	Phase     string `json:"phase"`
	Error     string `json:"error,omitempty"`
	StartedAt int64  `json:"started_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// NewTaskEventMessage แปลง domain event เป็น wire format
func NewTaskEventMessage(event *ports.TaskEvent) *TaskEventMessage {
	msg := &TaskEventMessage{
		Type:     string(event.Type),
		UserID:   event.UserID.String(),
		FolderID: event.FolderID.String(),
		Saving:   event.Saving,
		At:       millis(event.At),
	}
	if event.Run != nil {
		msg.Run = &RunStateMessage{
			Phase:     string(event.Run.Phase),
			Error:     event.Run.Error,
			StartedAt: millis(event.Run.StartedAt),
			UpdatedAt: millis(event.Run.UpdatedAt),
		}
	}
	return msg
}

// ToTaskEvent แปลงกลับเป็น domain event
func (m *TaskEventMessage) ToTaskEvent() (*ports.TaskEvent, error) {
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id %q: %w", m.UserID, err)
	}
	folderID, err := uuid.Parse(m.FolderID)
	if err != nil {
		return nil, fmt.Errorf("invalid folder_id %q: %w", m.FolderID, err)
	}

	event := &ports.TaskEvent{
		Type:     ports.TaskEventType(m.Type),
		UserID:   userID,
		FolderID: folderID,
		Saving:   m.Saving,
		At:       fromMillis(m.At),
	}
	if m.Run != nil {
		event.Run = &ports.RunState{
			UserID:    userID,
			FolderID:  folderID,
			Phase:     ports.RunPhase(m.Run.Phase),
			Error:     m.Run.Error,
			StartedAt: fromMillis(m.Run.StartedAt),
			UpdatedAt: fromMillis(m.Run.UpdatedAt),
		}
	}
	return event, nil
}
