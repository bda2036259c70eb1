package messaging

import (
	"context"
	"time"

	"nextup-api/domain/mutation"
	"nextup-api/domain/ports"
	"nextup-api/pkg/logger"
)

// EventSavingIndicator ส่งสถานะ saving ของ folder ออกไปเป็น task event
type EventSavingIndicator struct {
	publisher ports.TaskEventPublisherPort
}

var _ ports.SavingIndicatorPort = (*EventSavingIndicator)(nil)

func NewEventSavingIndicator(publisher ports.TaskEventPublisherPort) *EventSavingIndicator {
	return &EventSavingIndicator{publisher: publisher}
}

func (i *EventSavingIndicator) SetSaving(ctx context.Context, scope mutation.Scope, saving bool) {
	event := &ports.TaskEvent{
		Type:     ports.TaskEventSaving,
		UserID:   scope.UserID,
		FolderID: scope.FolderID,
		Saving:   saving,
		At:       time.Now(),
	}
	if err := i.publisher.PublishTaskEvent(ctx, event); err != nil {
		logger.DebugContext(ctx, "Failed to publish saving state", "folder_id", scope.FolderID, "error", err)
	}
}
