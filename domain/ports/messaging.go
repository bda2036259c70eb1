package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════════
// Task Events - live feed จาก storage กลับไปหา UI
// ═══════════════════════════════════════════════════════════════════════════════

type TaskEventType string

const (
	TaskEventFolderChanged   TaskEventType = "folder_changed"
	TaskEventSaving          TaskEventType = "saving"
	TaskEventPrioritizeState TaskEventType = "prioritize_state"
)

// TaskEvent - Plain struct (ไม่มี NATS dependency)
type TaskEvent struct {
	Type     TaskEventType
	UserID   uuid.UUID
	FolderID uuid.UUID
	Saving   bool      // TaskEventSaving
	Run      *RunState // TaskEventPrioritizeState
	At       time.Time
}

// TaskEventPublisherPort - Interface สำหรับส่ง task events
type TaskEventPublisherPort interface {
	PublishTaskEvent(ctx context.Context, event *TaskEvent) error
}

type TaskEventHandler func(event *TaskEvent)

// TaskEventSubscriberPort - Interface สำหรับ subscribe task events
// รับ ctx เพื่อให้ cancel subscription ผ่าน context ได้
type TaskEventSubscriberPort interface {
	Subscribe(ctx context.Context, handler TaskEventHandler) error
	Unsubscribe() error
}
