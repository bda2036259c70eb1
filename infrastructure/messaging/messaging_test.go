package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"nextup-api/domain/models"
	"nextup-api/domain/mutation"
	"nextup-api/domain/ports"
)

type stubWriter struct{ err error }

func (w *stubWriter) ApplyBatch(ctx context.Context, plan *mutation.Plan) error { return w.err }

func collect(bus *LocalTaskEventBus) *[]*ports.TaskEvent {
	var events []*ports.TaskEvent
	bus.Subscribe(context.Background(), func(e *ports.TaskEvent) {
		events = append(events, e)
	})
	return &events
}

func TestPublishingBatchWriter(t *testing.T) {
	user := uuid.New()
	from, to := uuid.New(), uuid.New()
	task := &models.Task{ID: uuid.New(), UserID: user, FolderID: from}

	moved := mutation.NewPlan()
	moved.Update(task, mutation.Patch{FolderID: &to})

	t.Run("publishes every touched folder", func(t *testing.T) {
		bus := NewLocalTaskEventBus()
		events := collect(bus)
		w := NewPublishingBatchWriter(&stubWriter{}, bus)

		if err := w.ApplyBatch(context.Background(), moved); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(*events) != 2 {
			t.Fatalf("events = %d, want 2", len(*events))
		}
		for _, e := range *events {
			if e.Type != ports.TaskEventFolderChanged || e.UserID != user {
				t.Errorf("event = %+v", e)
			}
		}
	})

	t.Run("silent on failure", func(t *testing.T) {
		bus := NewLocalTaskEventBus()
		events := collect(bus)
		cause := errors.New("unavailable")
		w := NewPublishingBatchWriter(&stubWriter{err: cause}, bus)

		if err := w.ApplyBatch(context.Background(), moved); !errors.Is(err, cause) {
			t.Fatalf("err = %v", err)
		}
		if len(*events) != 0 {
			t.Errorf("published %d events for a failed batch", len(*events))
		}
	})
}

func TestLocalBusSurvivesPanickingHandler(t *testing.T) {
	bus := NewLocalTaskEventBus()
	bus.Subscribe(context.Background(), func(*ports.TaskEvent) { panic("boom") })
	events := collect(bus)

	ind := NewEventSavingIndicator(bus)
	ind.SetSaving(context.Background(), mutation.Scope{UserID: uuid.New(), FolderID: uuid.New()}, true)

	if len(*events) != 1 || !(*events)[0].Saving {
		t.Errorf("events = %+v", *events)
	}
}
