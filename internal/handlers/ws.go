package handlers

import (
	"context"
	"log"

	"chat-server/internal/models"
	"chat-server/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// HandleConnect greets a new connection with its id. The client needs it
// before it can place calls.
func (h *Hub) HandleConnect(s *Session) {
	s.Send(models.EventMe, s.ID)
}

// WebSocketHandler runs the long-lived event channel for one client. The
// username is bound by the auth middleware before the upgrade; the session
// only becomes reachable once the client sends join_app.
func WebSocketHandler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		username := c.Locals("username").(string)

		s := NewSession(uuid.New().String(), username, c)

		defer func() {
			hub.HandleDisconnect(s)
			s.Close()
		}()

		hub.HandleConnect(s)

		for {
			msgType, msg, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("error: %v", err)
				}
				break
			}
			if msgType != websocket.TextMessage {
				continue
			}

			hub.Dispatch(context.Background(), s, msg)
		}
	})
}

// WSUpgradeMiddleware upgrades the connection to WebSocket
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// AuthMiddleware verifies the JWT token before upgrading
func AuthMiddleware(c *fiber.Ctx) error {
	// Get token from query param `access_token` or Authorization header
	token := c.Query("access_token")
	if token == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}

	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	claims, err := services.ValidateToken(token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	c.Locals("username", username)

	return c.Next()
}
