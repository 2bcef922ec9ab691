package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/repository"
	"github.com/newinfo363-byte/groupchat/internal/service"
)

type stubRoles struct{ byUser map[string]*model.RoleAssignment }

func (s *stubRoles) GetByUserID(_ context.Context, userID string) (*model.RoleAssignment, error) {
	if ra, ok := s.byUser[userID]; ok {
		return ra, nil
	}
	return nil, repository.ErrNotFound
}

type stubRequests struct {
	byUser map[string]*model.AccessRequest
	err    error
}

func (s *stubRequests) GetByUserID(_ context.Context, userID string) (*model.AccessRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	if req, ok := s.byUser[userID]; ok {
		return req, nil
	}
	return nil, repository.ErrNotFound
}

type stubProfiles struct{ byUser map[string]*model.Profile }

func (s *stubProfiles) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	if p, ok := s.byUser[userID]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func newViewApp(roles *stubRoles, requests *stubRequests, profiles *stubProfiles) *fiber.App {
	resolver := service.NewResolver(roles, requests, profiles)
	h := NewViewHandler(resolver)

	app := fiber.New()
	app.Get("/view", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u1")
		return h.Resolve(c)
	})
	return app
}

func decodeView(t *testing.T, app *fiber.App, target string) (string, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	view, _ := body["view"].(string)
	return view, body
}

func TestViewResolveChat(t *testing.T) {
	app := newViewApp(
		&stubRoles{byUser: map[string]*model.RoleAssignment{}},
		&stubRequests{byUser: map[string]*model.AccessRequest{
			"u1": {UserID: "u1", Status: model.StatusApproved},
		}},
		&stubProfiles{byUser: map[string]*model.Profile{
			"u1": {UserID: "u1", Username: "alex"},
		}},
	)

	view, body := decodeView(t, app, "/view")
	if view != string(model.ViewChat) {
		t.Errorf("view: got %q, want %q", view, model.ViewChat)
	}
	profile, _ := body["profile"].(map[string]any)
	if profile == nil || profile["username"] != "alex" {
		t.Errorf("profile: got %+v", body["profile"])
	}
}

func TestViewResolveStickyQuery(t *testing.T) {
	app := newViewApp(
		&stubRoles{byUser: map[string]*model.RoleAssignment{
			"u1": {UserID: "u1", Role: model.RoleAdmin},
		}},
		&stubRequests{byUser: map[string]*model.AccessRequest{}},
		&stubProfiles{byUser: map[string]*model.Profile{}},
	)

	if view, _ := decodeView(t, app, "/view"); view != string(model.ViewAdminHome) {
		t.Errorf("view: got %q, want %q", view, model.ViewAdminHome)
	}
	if view, _ := decodeView(t, app, "/view?current=chat"); view != string(model.ViewChat) {
		t.Errorf("sticky view: got %q, want %q", view, model.ViewChat)
	}
}

func TestViewResolveFailSafe(t *testing.T) {
	// A store failure still answers 200 with the unauthenticated view.
	app := newViewApp(
		&stubRoles{byUser: map[string]*model.RoleAssignment{}},
		&stubRequests{err: errors.New("connection refused")},
		&stubProfiles{byUser: map[string]*model.Profile{}},
	)

	if view, _ := decodeView(t, app, "/view"); view != string(model.ViewNeedsAuth) {
		t.Errorf("view: got %q, want %q", view, model.ViewNeedsAuth)
	}
}
