package websocket

import (
	"context"
	"sync"

	"nextup-api/domain/dto"
	"nextup-api/domain/ordering"
	"nextup-api/domain/ports"
	"nextup-api/domain/repositories"
	"nextup-api/pkg/logger"
)

// RoomBroadcaster ส่ง message ไปยังทุก connection ใน room
type RoomBroadcaster interface {
	BroadcastToRoom(roomID string, messageType string, data interface{})
	GetRoomClients(roomID string) int
}

// TaskBroadcaster รับ task events แล้วส่งต่อให้ folder rooms
// folder_changed → โหลด snapshot ใหม่ทั้ง folder แล้วส่ง tasks_snapshot
type TaskBroadcaster struct {
	subscriber ports.TaskEventSubscriberPort
	rooms      RoomBroadcaster
	taskRepo   repositories.TaskRepository
	running    bool
	runningMu  sync.Mutex
	cancelCtx  context.CancelFunc
}

func NewTaskBroadcaster(subscriber ports.TaskEventSubscriberPort, rooms RoomBroadcaster, taskRepo repositories.TaskRepository) *TaskBroadcaster {
	return &TaskBroadcaster{
		subscriber: subscriber,
		rooms:      rooms,
		taskRepo:   taskRepo,
	}
}

// Start เริ่ม broadcaster
func (b *TaskBroadcaster) Start() error {
	b.runningMu.Lock()
	defer b.runningMu.Unlock()
	if b.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := b.subscriber.Subscribe(ctx, func(event *ports.TaskEvent) {
		b.handleEvent(ctx, event)
	}); err != nil {
		cancel()
		return err
	}
	b.cancelCtx = cancel
	b.running = true

	logger.Info("Task broadcaster started")
	return nil
}

// Stop หยุด broadcaster
func (b *TaskBroadcaster) Stop() error {
	b.runningMu.Lock()
	defer b.runningMu.Unlock()
	if !b.running {
		return nil
	}
	b.running = false
	if b.cancelCtx != nil {
		b.cancelCtx()
	}

	logger.Info("Task broadcaster stopped")
	return b.subscriber.Unsubscribe()
}

func (b *TaskBroadcaster) handleEvent(ctx context.Context, event *ports.TaskEvent) {
	room := FolderRoom(event.UserID, event.FolderID)
	// ไม่มีคนดู folder นี้ใน instance นี้
	if b.rooms.GetRoomClients(room) == 0 {
		return
	}

	switch event.Type {
	case ports.TaskEventFolderChanged:
		snapshot, err := b.snapshot(ctx, event)
		if err != nil {
			logger.WarnContext(ctx, "Failed to load folder snapshot", "folder_id", event.FolderID, "error", err)
			return
		}
		b.rooms.BroadcastToRoom(room, "tasks_snapshot", snapshot)

	case ports.TaskEventSaving:
		b.rooms.BroadcastToRoom(room, "saving", map[string]bool{"saving": event.Saving})

	case ports.TaskEventPrioritizeState:
		if event.Run == nil {
			return
		}
		b.rooms.BroadcastToRoom(room, "prioritize_state", dto.RunStateToResponse(event.Run))

	default:
		logger.DebugContext(ctx, "Ignoring task event", "type", event.Type)
	}
}

func (b *TaskBroadcaster) snapshot(ctx context.Context, event *ports.TaskEvent) (*dto.FolderTasksResponse, error) {
	tasks, err := b.taskRepo.ListByFolder(ctx, event.UserID, event.FolderID)
	if err != nil {
		return nil, err
	}
	incomplete, completed := ordering.Partition(tasks)
	return &dto.FolderTasksResponse{
		Incomplete: dto.TasksToTaskResponses(incomplete),
		Completed:  dto.TasksToTaskResponses(completed),
	}, nil
}
