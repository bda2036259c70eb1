package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"nextup-api/pkg/logger"
)

// FolderRoom room ของ folder หนึ่ง: user:{uid}:folder:{fid}
func FolderRoom(userID, folderID uuid.UUID) string {
	return fmt.Sprintf("user:%s:folder:%s", userID, folderID)
}

// Conn ส่วนของ *websocket.Conn ที่ manager ใช้
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type WebSocketManager struct {
	clients    map[Conn]Client
	rooms      map[string]map[Conn]bool
	unregister chan Conn
	broadcast  chan BroadcastMessage
	mutex      sync.RWMutex
}

// Client หนึ่ง connection ดูได้ทีละ folder
// (desktop กับ web ของ user เดียวกันต่อพร้อมกันได้)
type Client struct {
	Conn   Conn
	UserID uuid.UUID
	RoomID string
}

type Message struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
	RoomID string      `json:"roomId,omitempty"`
}

type BroadcastMessage struct {
	Message Message
	RoomID  string
}

var Manager = NewWebSocketManager()

func NewWebSocketManager() *WebSocketManager {
	m := &WebSocketManager{
		clients:    make(map[Conn]Client),
		rooms:      make(map[string]map[Conn]bool),
		unregister: make(chan Conn),
		broadcast:  make(chan BroadcastMessage, 64),
	}
	go m.run()
	return m
}

func (m *WebSocketManager) run() {
	for {
		select {
		case conn := <-m.unregister:
			m.remove(conn)

		case message := <-m.broadcast:
			m.mutex.RLock()
			var failed []Conn
			for conn := range m.rooms[message.RoomID] {
				if err := conn.WriteJSON(message.Message); err != nil {
					logger.Warn("WebSocket send failed", "room", message.RoomID, "error", err)
					failed = append(failed, conn)
				}
			}
			m.mutex.RUnlock()
			for _, conn := range failed {
				m.remove(conn)
			}
		}
	}
}

func (m *WebSocketManager) remove(conn Conn) {
	m.mutex.Lock()
	client, ok := m.clients[conn]
	if ok {
		delete(m.clients, conn)
		m.leaveLocked(conn, client.RoomID)
	}
	m.mutex.Unlock()

	if ok {
		conn.Close()
		logger.Debug("WebSocket client disconnected", "user_id", client.UserID, "room", client.RoomID)
	}
}

func (m *WebSocketManager) joinLocked(conn Conn, roomID string) {
	if m.rooms[roomID] == nil {
		m.rooms[roomID] = make(map[Conn]bool)
	}
	m.rooms[roomID][conn] = true
}

func (m *WebSocketManager) leaveLocked(conn Conn, roomID string) {
	if roomID == "" || m.rooms[roomID] == nil {
		return
	}
	delete(m.rooms[roomID], conn)
	if len(m.rooms[roomID]) == 0 {
		delete(m.rooms, roomID)
	}
}

// RegisterClient ลงทะเบียนทันที (ไม่ผ่าน channel) เพื่อให้ join_folder ที่ตามมาเห็น client
func (m *WebSocketManager) RegisterClient(conn Conn, userID uuid.UUID, roomID string) {
	m.mutex.Lock()
	m.clients[conn] = Client{Conn: conn, UserID: userID, RoomID: roomID}
	if roomID != "" {
		m.joinLocked(conn, roomID)
	}
	m.mutex.Unlock()
	logger.Debug("WebSocket client connected", "user_id", userID, "room", roomID)
}

func (m *WebSocketManager) UnregisterClient(conn Conn) {
	m.unregister <- conn
}

// JoinFolder ย้าย connection ไปดู folder ใหม่ คืน room id
func (m *WebSocketManager) JoinFolder(conn Conn, folderID uuid.UUID) (string, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	client, ok := m.clients[conn]
	if !ok {
		return "", false
	}
	roomID := FolderRoom(client.UserID, folderID)
	m.leaveLocked(conn, client.RoomID)
	m.joinLocked(conn, roomID)
	client.RoomID = roomID
	m.clients[conn] = client
	return roomID, true
}

func (m *WebSocketManager) LeaveFolder(conn Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if client, ok := m.clients[conn]; ok {
		m.leaveLocked(conn, client.RoomID)
		client.RoomID = ""
		m.clients[conn] = client
	}
}

func (m *WebSocketManager) BroadcastToRoom(roomID string, messageType string, data interface{}) {
	m.broadcast <- BroadcastMessage{
		Message: Message{Type: messageType, Data: data, RoomID: roomID},
		RoomID:  roomID,
	}
}

func (m *WebSocketManager) GetRoomClients(roomID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms[roomID])
}

func (m *WebSocketManager) GetTotalClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// reply เขียนภายใต้ write lock; broadcast loop เขียนภายใต้ read lock
// จึงไม่มีการเขียน connection เดียวกันพร้อมกัน
func (m *WebSocketManager) reply(conn Conn, msg Message) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		logger.Debug("WebSocket reply failed", "error", err)
	}
}

type joinFolderData struct {
	FolderID string `json:"folderId"`
}

// HandleWebSocketMessage จัดการ message ที่ client ส่งมา
// client join ได้เฉพาะ folder ของตัวเอง เพราะ room ผูกกับ user id ของ connection
func (m *WebSocketManager) HandleWebSocketMessage(conn *websocket.Conn, data []byte) {
	var message struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &message); err != nil {
		logger.Debug("WebSocket message is not JSON", "error", err)
		return
	}

	switch message.Type {
	case "ping":
		m.reply(conn, Message{Type: "pong", Data: "pong"})

	case "join_folder":
		var payload joinFolderData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			m.reply(conn, Message{Type: "error", Data: "invalid join_folder payload"})
			return
		}
		folderID, err := uuid.Parse(payload.FolderID)
		if err != nil {
			m.reply(conn, Message{Type: "error", Data: "invalid folderId"})
			return
		}
		if roomID, ok := m.JoinFolder(conn, folderID); ok {
			m.reply(conn, Message{Type: "folder_joined", Data: map[string]string{"folderId": folderID.String()}, RoomID: roomID})
		}

	case "leave_folder":
		m.LeaveFolder(conn)
		m.reply(conn, Message{Type: "folder_left", Data: "ok"})

	default:
		logger.Debug("Unknown WebSocket message type", "type", message.Type)
	}
}
