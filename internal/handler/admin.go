package handler

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/repository"
	"github.com/newinfo363-byte/groupchat/internal/service"
)

type AdminHandler struct {
	requestRepo *repository.RequestRepository
	roleRepo    *repository.RoleRepository
	userRepo    *repository.UserRepository
	decisionSvc *service.DecisionService
	wsHub       *service.WSHub
	setupToken  string
}

func NewAdminHandler(requestRepo *repository.RequestRepository, roleRepo *repository.RoleRepository, userRepo *repository.UserRepository, decisionSvc *service.DecisionService, wsHub *service.WSHub, setupToken string) *AdminHandler {
	return &AdminHandler{
		requestRepo: requestRepo,
		roleRepo:    roleRepo,
		userRepo:    userRepo,
		decisionSvc: decisionSvc,
		wsHub:       wsHub,
		setupToken:  setupToken,
	}
}

// PendingRequests returns the review queue.
// GET /api/v1/admin/requests?status=pending
func (h *AdminHandler) PendingRequests(c *fiber.Ctx) error {
	status := model.RequestStatus(c.Query("status", string(model.StatusPending)))
	switch status {
	case model.StatusPending, model.StatusApproved, model.StatusRejected:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "invalid status filter"})
	}

	reqs, err := h.requestRepo.ListByStatus(c.Context(), status)
	if err != nil {
		log.Printf("[Admin] list requests failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list requests"})
	}
	if reqs == nil {
		reqs = []model.AccessRequest{}
	}
	return c.JSON(fiber.Map{"requests": reqs})
}

// Roster returns every access request joined with the user's current role.
// The admin UI re-fetches this after each decision so it always shows
// store-confirmed state.
// GET /api/v1/admin/users
func (h *AdminHandler) Roster(c *fiber.Ctx) error {
	users, err := h.requestRepo.ListWithRoles(c.Context())
	if err != nil {
		log.Printf("[Admin] roster failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list users"})
	}
	if users == nil {
		users = []model.RequestWithRole{}
	}
	return c.JSON(fiber.Map{"users": users})
}

// Decide approves or rejects an access request.
// POST /api/v1/admin/requests/:id/decision
func (h *AdminHandler) Decide(c *fiber.Ctx) error {
	requestID := c.Params("id")

	var req model.DecisionPayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	err := h.decisionSvc.Decide(c.Context(), requestID, req.UserID, model.RequestStatus(req.Decision))
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"ok": true})
	case errors.Is(err, service.ErrInvalidDecision):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUserMismatch):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "request not found"})
	case errors.Is(err, service.ErrPartiallyApplied):
		log.Printf("[Admin] decision on %s partially applied: %v", requestID, err)
		return c.Status(500).JSON(fiber.Map{"error": "decision partially applied"})
	default:
		log.Printf("[Admin] decision on %s failed: %v", requestID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to apply decision"})
	}
}

// Bootstrap grants the caller the admin role. Only valid while no admin
// exists and only with the one-time setup token from the environment.
// POST /api/v1/admin/bootstrap
func (h *AdminHandler) Bootstrap(c *fiber.Ctx) error {
	if h.setupToken == "" {
		return c.Status(404).JSON(fiber.Map{"error": "bootstrap disabled"})
	}

	var req struct {
		SetupToken string `json:"setup_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.SetupToken != h.setupToken {
		return c.Status(403).JSON(fiber.Map{"error": "invalid setup token"})
	}

	exists, err := h.roleRepo.AdminExists(c.Context())
	if err != nil {
		log.Printf("[Admin] bootstrap check failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "bootstrap failed"})
	}
	if exists {
		return c.Status(409).JSON(fiber.Map{"error": "an admin already exists"})
	}

	userID, _ := c.Locals("user_id").(string)
	if err := h.roleRepo.Upsert(c.Context(), userID, model.RoleAdmin); err != nil {
		log.Printf("[Admin] bootstrap grant failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "bootstrap failed"})
	}

	log.Printf("[Admin] bootstrap: %s is now admin", userID)
	return c.JSON(fiber.Map{"ok": true, "role": model.RoleAdmin})
}

// Stats reports totals for the admin home screen.
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	totalUsers, _ := h.userRepo.CountTotal(c.Context())
	pending, _ := h.requestRepo.ListByStatus(c.Context(), model.StatusPending)
	online := h.wsHub.OnlineCount()

	return c.JSON(fiber.Map{
		"users_total":      totalUsers,
		"users_online":     online,
		"requests_pending": len(pending),
	})
}

// Announce broadcasts a server notice to every connected client.
// POST /api/v1/admin/announce
func (h *AdminHandler) Announce(c *fiber.Ctx) error {
	var req model.WSAnnounce
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	data, _ := json.Marshal(req)
	h.wsHub.Broadcast(&model.WSEvent{
		Type: model.EventAnnounce,
		Data: data,
	})

	return c.JSON(fiber.Map{"ok": true, "online": h.wsHub.OnlineCount()})
}
