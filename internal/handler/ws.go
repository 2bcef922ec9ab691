package handler

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/service"
)

type WSHandler struct {
	hub      *service.WSHub
	feed     *service.Feed
	authSvc  *service.AuthService
	resolver *service.Resolver
}

func NewWSHandler(hub *service.WSHub, feed *service.Feed, authSvc *service.AuthService, resolver *service.Resolver) *WSHandler {
	return &WSHandler{hub: hub, feed: feed, authSvc: authSvc, resolver: resolver}
}

// Upgrade authenticates the caller and checks that they may enter the chat
// view before accepting the websocket connection.
// GET /ws?token=<access token>
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		return c.Status(401).JSON(fiber.Map{"error": "token required"})
	}

	userID, email, err := h.authSvc.ValidateAccessToken(token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
	}

	ok, err := h.resolver.CanChat(c.Context(), userID)
	if err != nil {
		log.Printf("WS: chat check for %s failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "membership check failed"})
	}
	if !ok {
		return c.Status(403).JSON(fiber.Map{"error": "membership required"})
	}

	c.Locals("user_id", userID)
	c.Locals("email", email)
	return websocket.New(h.handleConnection)(c)
}

func (h *WSHandler) handleConnection(c *websocket.Conn) {
	userID, _ := c.Locals("user_id").(string)
	email, _ := c.Locals("email").(string)

	client := &service.WSClient{
		Conn:     c,
		UserID:   userID,
		Username: email,
		Send:     make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	// Writer goroutine
	go func() {
		defer c.Close()
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
	}()

	// Seed the new subscriber with the current feed snapshot.
	if data, err := json.Marshal(h.feed.Snapshot()); err == nil {
		if history, err := json.Marshal(model.WSEvent{Type: model.EventHistory, Data: data}); err == nil {
			select {
			case client.Send <- history:
			default:
			}
		}
	}

	// Reader loop
	c.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			break
		}

		// Reset deadline on any message
		c.SetReadDeadline(time.Now().Add(60 * time.Second))

		var event model.WSEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}

		switch event.Type {
		case "ping":
			pong, _ := json.Marshal(model.WSEvent{Type: "pong"})
			select {
			case client.Send <- pong:
			default:
			}
		default:
			log.Printf("WS: unknown event type %s from %s", event.Type, email)
		}
	}
}
