package server

import (
	"encoding/json"

	"musefeed/internal/models"
	"musefeed/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RequireUpgrade rejects plain HTTP requests on WebSocket routes.
func RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			models.NewValidationError("WebSocket upgrade required"))
	}
	return c.Next()
}

// WebsocketHandler streams realtime events to an authenticated client. The
// connection is receive-only; inbound frames only keep it alive.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			observability.Logger.Warn("websocket registration rejected", "user_id", uid, "error", err)
			if msg, merr := json.Marshal(models.ErrorResponse{Message: err.Error()}); merr == nil {
				_ = conn.WriteMessage(websocket.TextMessage, msg)
			}
			_ = conn.Close()
			return
		}

		go client.WritePump()
		// ReadPump unregisters the client once the peer goes away.
		client.ReadPump()
	})
}
