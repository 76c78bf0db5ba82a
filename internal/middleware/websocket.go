package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Locals keys that survive the websocket upgrade.
const (
	LocalWSGameID   = "wsGameID"
	LocalWSClientID = "wsClientID"
)

// WebSocketUpgrade ensures that requests to WebSocket endpoints are valid WebSocket connection attempts.
// It runs after EnsureClientID.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		gameID := c.Params("gameId")
		if gameID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "game ID is required",
			})
		}

		// The connection context is different from the upgrade context, so the
		// ids are copied into locals here.
		c.Locals(LocalWSGameID, gameID)
		c.Locals(LocalWSClientID, ClientID(c))
		return c.Next()
	}
}
