package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	websocketManager "nextup-api/infrastructure/websocket"
	"nextup-api/pkg/logger"
	"nextup-api/pkg/utils"
)

type WebSocketHandler struct{}

func NewWebSocketHandler() *WebSocketHandler {
	return &WebSocketHandler{}
}

func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket ?folder= join room ของ folder ทันที
// เปลี่ยน folder ภายหลังด้วย message join_folder
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	user, ok := c.Locals("user").(*utils.UserContext)
	if !ok {
		_ = c.Close()
		return
	}

	roomID := ""
	if raw := c.Query("folder", ""); raw != "" {
		if folderID, err := uuid.Parse(raw); err == nil {
			roomID = websocketManager.FolderRoom(user.ID, folderID)
		}
	}

	websocketManager.Manager.RegisterClient(c, user.ID, roomID)
	defer websocketManager.Manager.UnregisterClient(c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.Debug("WebSocket closed", "user_id", user.ID, "error", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		websocketManager.Manager.HandleWebSocketMessage(c, message)
	}
}
