package handler

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/repository"
)

type RequestHandler struct {
	requestRepo *repository.RequestRepository
}

func NewRequestHandler(requestRepo *repository.RequestRepository) *RequestHandler {
	return &RequestHandler{requestRepo: requestRepo}
}

// Submit files the caller's access request. One per user: a second
// submission is rejected so the resolver can assume at most one.
// POST /api/v1/requests
func (h *RequestHandler) Submit(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req model.SubmitRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	created, err := h.requestRepo.Create(c.Context(), userID, req.Name, req.Reason)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			return c.Status(409).JSON(fiber.Map{"error": "access request already submitted"})
		}
		log.Printf("[Request] submit for %s failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to submit request"})
	}

	return c.Status(201).JSON(created)
}

// Me returns the caller's own access request, if any.
// GET /api/v1/requests/me
func (h *RequestHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	req, err := h.requestRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "no access request"})
		}
		log.Printf("[Request] get own %s failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get request"})
	}

	return c.JSON(req)
}
