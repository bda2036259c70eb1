package messaging

import (
	"context"
	"time"

	"nextup-api/domain/mutation"
	"nextup-api/domain/ports"
	"nextup-api/pkg/logger"
)

// PublishingBatchWriter ห่อ BatchWriterPort แล้วประกาศ folder_changed
// ทุก folder ที่ plan แตะ หลัง commit สำเร็จเท่านั้น
type PublishingBatchWriter struct {
	next      ports.BatchWriterPort
	publisher ports.TaskEventPublisherPort
	now       func() time.Time
}

var _ ports.BatchWriterPort = (*PublishingBatchWriter)(nil)

func NewPublishingBatchWriter(next ports.BatchWriterPort, publisher ports.TaskEventPublisherPort) *PublishingBatchWriter {
	return &PublishingBatchWriter{next: next, publisher: publisher, now: time.Now}
}

func (w *PublishingBatchWriter) ApplyBatch(ctx context.Context, plan *mutation.Plan) error {
	if err := w.next.ApplyBatch(ctx, plan); err != nil {
		return err
	}

	// publish ล้มเหลวไม่ทำให้ commit ล้ม
	at := w.now()
	for _, scope := range plan.Scopes() {
		event := &ports.TaskEvent{
			Type:     ports.TaskEventFolderChanged,
			UserID:   scope.UserID,
			FolderID: scope.FolderID,
			At:       at,
		}
		if err := w.publisher.PublishTaskEvent(ctx, event); err != nil {
			logger.WarnContext(ctx, "Failed to publish folder change", "folder_id", scope.FolderID, "error", err)
		}
	}
	return nil
}
