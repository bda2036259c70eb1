package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/dto"
	"nextup-api/domain/models"
	"nextup-api/domain/ports"
	"nextup-api/infrastructure/memstore"
	"nextup-api/infrastructure/messaging"
)

type sent struct {
	room string
	kind string
	data interface{}
}

type fakeRooms struct {
	mu      sync.Mutex
	watched map[string]bool
	sent    []sent
}

func (r *fakeRooms) BroadcastToRoom(roomID, messageType string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{roomID, messageType, data})
}

func (r *fakeRooms) GetRoomClients(roomID string) int {
	if r.watched[roomID] {
		return 1
	}
	return 0
}

func TestTaskBroadcaster(t *testing.T) {
	ctx := context.Background()
	user, folder := uuid.New(), uuid.New()
	room := FolderRoom(user, folder)

	store := memstore.New()
	done := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	store.Seed(
		&models.Task{ID: uuid.New(), UserID: user, FolderID: folder, Title: "open", Order: 0},
		&models.Task{ID: uuid.New(), UserID: user, FolderID: folder, Title: "done", Completed: true, CompletedAt: &done},
	)

	bus := messaging.NewLocalTaskEventBus()
	rooms := &fakeRooms{watched: map[string]bool{room: true}}
	b := NewTaskBroadcaster(bus, rooms, store.Tasks())
	if err := b.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer b.Stop()

	bus.PublishTaskEvent(ctx, &ports.TaskEvent{Type: ports.TaskEventFolderChanged, UserID: user, FolderID: folder})
	bus.PublishTaskEvent(ctx, &ports.TaskEvent{Type: ports.TaskEventSaving, UserID: user, FolderID: folder, Saving: true})
	bus.PublishTaskEvent(ctx, &ports.TaskEvent{
		Type: ports.TaskEventPrioritizeState, UserID: user, FolderID: folder,
		Run: &ports.RunState{Phase: ports.RunRemoteRank},
	})
	// folder ที่ไม่มีคนดู
	bus.PublishTaskEvent(ctx, &ports.TaskEvent{Type: ports.TaskEventFolderChanged, UserID: user, FolderID: uuid.New()})

	if len(rooms.sent) != 3 {
		t.Fatalf("sent = %d messages, want 3", len(rooms.sent))
	}

	snapshot, ok := rooms.sent[0].data.(*dto.FolderTasksResponse)
	if !ok || rooms.sent[0].kind != "tasks_snapshot" {
		t.Fatalf("first message = %+v", rooms.sent[0])
	}
	if len(snapshot.Incomplete) != 1 || len(snapshot.Completed) != 1 || snapshot.Incomplete[0].Title != "open" {
		t.Errorf("snapshot = %+v", snapshot)
	}

	if rooms.sent[1].kind != "saving" || rooms.sent[2].kind != "prioritize_state" {
		t.Errorf("kinds = %s, %s", rooms.sent[1].kind, rooms.sent[2].kind)
	}
	if state := rooms.sent[2].data.(dto.RunStateResponse); state.Phase != "remote_rank" {
		t.Errorf("phase = %s", state.Phase)
	}
}

type fakeConn struct {
	mu     sync.Mutex
	writes []Message
	closed bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, v.(Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func TestManagerRoomsAreScopedToUser(t *testing.T) {
	m := NewWebSocketManager()
	folder := uuid.New()
	alice, bob := &fakeConn{}, &fakeConn{}
	aliceID, bobID := uuid.New(), uuid.New()

	m.RegisterClient(alice, aliceID, "")
	m.RegisterClient(bob, bobID, "")

	// bob ใช้ folder id เดียวกันก็ไม่ได้เข้า room ของ alice
	aliceRoom, _ := m.JoinFolder(alice, folder)
	bobRoom, _ := m.JoinFolder(bob, folder)
	if aliceRoom == bobRoom {
		t.Fatal("users share a room")
	}

	m.BroadcastToRoom(aliceRoom, "saving", true)
	deadline := time.Now().Add(time.Second)
	for alice.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if alice.count() != 1 || bob.count() != 0 {
		t.Errorf("alice = %d, bob = %d", alice.count(), bob.count())
	}
}
