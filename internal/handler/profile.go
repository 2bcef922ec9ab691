package handler

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/repository"
)

type ProfileHandler struct {
	profileRepo *repository.ProfileRepository
}

func NewProfileHandler(profileRepo *repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo}
}

type profilePayload struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
	DpURL    string `json:"dp_url"`
}

// Create stores the caller's profile. Each user owns at most one.
// POST /api/v1/profile
func (h *ProfileHandler) Create(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req profilePayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username is required"})
	}

	profile, err := h.profileRepo.Create(c.Context(), userID, req.Username, req.Bio, req.DpURL)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			return c.Status(409).JSON(fiber.Map{"error": "profile already exists"})
		}
		log.Printf("[Profile] create for %s failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create profile"})
	}

	return c.Status(201).JSON(profile)
}

// Update modifies the caller's own profile.
// PUT /api/v1/profile
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req profilePayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username is required"})
	}

	profile, err := h.profileRepo.Update(c.Context(), userID, req.Username, req.Bio, req.DpURL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
		}
		log.Printf("[Profile] update for %s failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update profile"})
	}

	return c.JSON(profile)
}

// Get returns a profile by user id; profiles are readable by anyone
// authenticated. A missing profile resolves to the placeholder identity.
// GET /api/v1/profiles/:id
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID := c.Params("id")

	profile, err := h.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(model.PlaceholderProfile(userID))
		}
		log.Printf("[Profile] get %s failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get profile"})
	}

	return c.JSON(profile)
}

// Me returns the caller's own profile.
// GET /api/v1/profile
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	profile, err := h.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
		}
		log.Printf("[Profile] get own %s failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get profile"})
	}

	return c.JSON(profile)
}
