package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	websocketHandler "nextup-api/interfaces/api/websocket"
)

func SetupWebSocketRoutes(app *fiber.App, protected fiber.Handler) {
	wsHandler := websocketHandler.NewWebSocketHandler()

	// live feed ต้อง login (token ผ่าน header หรือ ?token=)
	app.Use("/ws", protected, wsHandler.WebSocketUpgrade)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))
}
