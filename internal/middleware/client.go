package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	localClientID  = "clientID"
	ClientIDHeader = "X-Client-ID"
)

// EnsureClientID identifies the caller by the X-Client-ID header or the
// clientId query parameter, assigning a fresh id when neither is present. The
// id is echoed in the response header.
func EnsureClientID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(localClientID) != nil {
			return c.Next()
		}

		clientID := c.Get(ClientIDHeader)
		if clientID == "" {
			clientID = c.Query("clientId")
		}
		if clientID == "" {
			clientID = uuid.New().String()
		}

		c.Locals(localClientID, clientID)
		c.Set(ClientIDHeader, clientID)
		return c.Next()
	}
}

// ClientID returns the id set by EnsureClientID, or "" outside it.
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(localClientID).(string)
	return id
}
