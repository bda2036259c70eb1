package messaging

import (
	"context"
	"fmt"

	"nextup-api/domain/ports"
	natspkg "nextup-api/infrastructure/nats"
	"nextup-api/pkg/logger"
)

// NATSTaskEventPublisher implements TaskEventPublisherPort using NATS Pub/Sub
type NATSTaskEventPublisher struct {
	publisher *natspkg.Publisher
}

// NewNATSTaskEventPublisher สร้าง TaskEventPublisherPort adapter สำหรับ NATS
func NewNATSTaskEventPublisher(publisher *natspkg.Publisher) ports.TaskEventPublisherPort {
	return &NATSTaskEventPublisher{publisher: publisher}
}

func (p *NATSTaskEventPublisher) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	return p.publisher.PublishTaskEvent(natspkg.NewTaskEventMessage(event))
}

// NATSTaskEventSubscriber implements TaskEventSubscriberPort using NATS Pub/Sub
type NATSTaskEventSubscriber struct {
	subscriber *natspkg.Subscriber
	cancel     context.CancelFunc
}

// NewNATSTaskEventSubscriber สร้าง TaskEventSubscriberPort adapter สำหรับ NATS
func NewNATSTaskEventSubscriber(subscriber *natspkg.Subscriber) ports.TaskEventSubscriberPort {
	return &NATSTaskEventSubscriber{subscriber: subscriber}
}

func (s *NATSTaskEventSubscriber) Subscribe(ctx context.Context, handler ports.TaskEventHandler) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.subscriber.OnTaskEvent(func(msg *natspkg.TaskEventMessage) {
		if ctx.Err() != nil {
			return
		}
		event, err := msg.ToTaskEvent()
		if err != nil {
			logger.Warn("Dropping invalid task event", "type", msg.Type, "error", err)
			return
		}
		handler(event)
	})

	if !s.subscriber.IsRunning() {
		return s.subscriber.Start()
	}
	return nil
}

func (s *NATSTaskEventSubscriber) Unsubscribe() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.subscriber.Stop()
}
