package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/service"
)

type ViewHandler struct {
	resolver *service.Resolver
}

func NewViewHandler(resolver *service.Resolver) *ViewHandler {
	return &ViewHandler{resolver: resolver}
}

// Resolve returns the view the caller should see. The client passes its
// current view so an admin already in chat stays there.
// GET /api/v1/view?current=chat
func (h *ViewHandler) Resolve(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	current := model.View(c.Query("current"))

	view, profile, err := h.resolver.Resolve(c.Context(), userID, current)
	if err != nil {
		// Fail-safe: the resolver already downgraded to needs-auth.
		log.Printf("[View] resolve for %s failed: %v", userID, err)
	}

	resp := fiber.Map{"view": view}
	if profile != nil {
		resp["profile"] = profile
	}
	return c.JSON(resp)
}
