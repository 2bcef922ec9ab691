package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/service"
)

type stubMessages struct {
	inserted []model.Message
}

func (s *stubMessages) Insert(_ context.Context, senderID string, kind model.MessageKind, content string) (*model.Message, error) {
	m := model.Message{ID: "m1", SenderID: senderID, Kind: kind, Content: content, CreatedAt: time.Now()}
	s.inserted = append(s.inserted, m)
	return &m, nil
}

func (s *stubMessages) ListJoined(_ context.Context) ([]model.FeedMessage, error) {
	return nil, nil
}

type stubHub struct{ events []*model.WSEvent }

func (s *stubHub) Broadcast(event *model.WSEvent) { s.events = append(s.events, event) }

func newMessageApp(userID string, canChat bool) (*fiber.App, *stubMessages, *stubHub) {
	roles := &stubRoles{byUser: map[string]*model.RoleAssignment{}}
	requests := &stubRequests{byUser: map[string]*model.AccessRequest{}}
	profiles := &stubProfiles{byUser: map[string]*model.Profile{}}
	if canChat {
		requests.byUser[userID] = &model.AccessRequest{UserID: userID, Status: model.StatusApproved}
		profiles.byUser[userID] = &model.Profile{UserID: userID, Username: "alex"}
	}

	messages := &stubMessages{}
	hub := &stubHub{}
	feed := service.NewFeed(messages, profiles, hub)
	resolver := service.NewResolver(roles, requests, profiles)
	h := NewMessageHandler(feed, resolver)

	app := fiber.New()
	withUser := func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
	app.Get("/messages", withUser, h.List)
	app.Post("/messages", withUser, h.Send)
	return app, messages, hub
}

func postJSON(t *testing.T, app *fiber.App, target, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestSendTextMessage(t *testing.T) {
	app, messages, hub := newMessageApp("u1", true)

	if status := postJSON(t, app, "/messages", `{"type":"text","content":"hello"}`); status != 201 {
		t.Fatalf("status: got %d, want 201", status)
	}
	if len(messages.inserted) != 1 || messages.inserted[0].Content != "hello" {
		t.Fatalf("inserted: got %+v", messages.inserted)
	}
	if len(hub.events) != 1 || hub.events[0].Type != model.EventMessage {
		t.Fatalf("expected one broadcast, got %+v", hub.events)
	}

	var joined model.FeedMessage
	if err := json.Unmarshal(hub.events[0].Data, &joined); err != nil {
		t.Fatalf("decode broadcast: %v", err)
	}
	if joined.Sender.Username != "alex" {
		t.Errorf("broadcast sender: got %q, want %q", joined.Sender.Username, "alex")
	}
}

func TestSendValidation(t *testing.T) {
	app, messages, _ := newMessageApp("u1", true)

	tests := []struct {
		name string
		body string
	}{
		{"empty content", `{"type":"text","content":""}`},
		{"whitespace content", `{"type":"text","content":"   "}`},
		{"unknown kind", `{"type":"video","content":"x"}`},
		{"image without url", `{"type":"image","content":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := postJSON(t, app, "/messages", tt.body); status != 400 {
				t.Errorf("status: got %d, want 400", status)
			}
		})
	}
	if len(messages.inserted) != 0 {
		t.Errorf("nothing should be stored, got %+v", messages.inserted)
	}
}

func TestSendRequiresMembership(t *testing.T) {
	app, messages, _ := newMessageApp("u1", false)

	if status := postJSON(t, app, "/messages", `{"type":"text","content":"hello"}`); status != 403 {
		t.Errorf("status: got %d, want 403", status)
	}
	if len(messages.inserted) != 0 {
		t.Errorf("nothing should be stored, got %+v", messages.inserted)
	}
}
