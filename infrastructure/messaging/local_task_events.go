package messaging

import (
	"context"
	"sync"

	"nextup-api/domain/ports"
	"nextup-api/pkg/logger"
)

// LocalTaskEventBus fan-out ภายใน process ใช้เมื่อไม่ได้ต่อ NATS (single instance)
type LocalTaskEventBus struct {
	mu       sync.RWMutex
	handlers []ports.TaskEventHandler
}

var (
	_ ports.TaskEventPublisherPort  = (*LocalTaskEventBus)(nil)
	_ ports.TaskEventSubscriberPort = (*LocalTaskEventBus)(nil)
)

func NewLocalTaskEventBus() *LocalTaskEventBus {
	return &LocalTaskEventBus{}
}

// PublishTaskEvent เรียก handlers แบบ sync ตามลำดับ
func (b *LocalTaskEventBus) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "Task event handler panicked", "type", event.Type, "error", r)
				}
			}()
			copied := *event
			h(&copied)
		}()
	}
	return nil
}

func (b *LocalTaskEventBus) Subscribe(ctx context.Context, handler ports.TaskEventHandler) error {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
	return nil
}

func (b *LocalTaskEventBus) Unsubscribe() error {
	b.mu.Lock()
	b.handlers = nil
	b.mu.Unlock()
	return nil
}
