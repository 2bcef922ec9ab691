package handler

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/service"
)

type MessageHandler struct {
	feed     *service.Feed
	resolver *service.Resolver
}

func NewMessageHandler(feed *service.Feed, resolver *service.Resolver) *MessageHandler {
	return &MessageHandler{feed: feed, resolver: resolver}
}

// List returns the full feed snapshot, oldest first, every message joined
// with its sender profile.
// GET /api/v1/messages
func (h *MessageHandler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	ok, err := h.resolver.CanChat(c.Context(), userID)
	if err != nil {
		log.Printf("[Message] chat check for %s failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "membership check failed"})
	}
	if !ok {
		return c.Status(403).JSON(fiber.Map{"error": "membership required"})
	}

	msgs := h.feed.Snapshot()
	if msgs == nil {
		msgs = []model.FeedMessage{}
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// Send stores a new message. Text content must be non-empty after
// trimming; image and audio content is the retrieval URL from an upload.
// The sender sees the message via the broadcast, not a local echo.
// POST /api/v1/messages
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	ok, err := h.resolver.CanChat(c.Context(), userID)
	if err != nil {
		log.Printf("[Message] chat check for %s failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "membership check failed"})
	}
	if !ok {
		return c.Status(403).JSON(fiber.Map{"error": "membership required"})
	}

	var req model.SendMessagePayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Kind == "" {
		req.Kind = model.KindText
	}

	switch req.Kind {
	case model.KindText:
		req.Content = strings.TrimSpace(req.Content)
		if req.Content == "" {
			return c.Status(400).JSON(fiber.Map{"error": "content is required"})
		}
	case model.KindImage, model.KindAudio:
		if req.Content == "" {
			return c.Status(400).JSON(fiber.Map{"error": "content URL is required"})
		}
	default:
		return c.Status(400).JSON(fiber.Map{"error": "type must be text, image or audio"})
	}

	msg, err := h.feed.Send(c.Context(), userID, req.Kind, req.Content)
	if err != nil {
		log.Printf("[Message] send from %s failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to store message"})
	}

	return c.Status(201).JSON(msg)
}
