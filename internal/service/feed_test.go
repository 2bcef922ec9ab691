package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/newinfo363-byte/groupchat/internal/model"
)

type fakeMessageStore struct {
	inserted []model.Message
	history  []model.FeedMessage
	now      time.Time
}

func (f *fakeMessageStore) Insert(_ context.Context, senderID string, kind model.MessageKind, content string) (*model.Message, error) {
	f.now = f.now.Add(time.Second)
	m := model.Message{
		ID:        fmt.Sprintf("m%d", len(f.inserted)+1),
		SenderID:  senderID,
		Kind:      kind,
		Content:   content,
		CreatedAt: f.now,
	}
	f.inserted = append(f.inserted, m)
	return &m, nil
}

func (f *fakeMessageStore) ListJoined(_ context.Context) ([]model.FeedMessage, error) {
	return f.history, nil
}

type fakeBroadcaster struct {
	events []*model.WSEvent
}

func (f *fakeBroadcaster) Broadcast(event *model.WSEvent) {
	f.events = append(f.events, event)
}

func newTestFeed() (*Feed, *fakeMessageStore, *fakeProfiles, *fakeBroadcaster) {
	messages := &fakeMessageStore{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	profiles := &fakeProfiles{byUser: map[string]*model.Profile{}}
	hub := &fakeBroadcaster{}
	return NewFeed(messages, profiles, hub), messages, profiles, hub
}

func TestFeedSendRoundTrip(t *testing.T) {
	feed, _, profiles, hub := newTestFeed()
	profiles.byUser["u1"] = &model.Profile{UserID: "u1", Username: "alex"}

	msg, err := feed.Send(context.Background(), "u1", model.KindText, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != model.KindText || msg.Content != "hello" {
		t.Errorf("stored message: got %s %q", msg.Kind, msg.Content)
	}
	if msg.Sender.Username != "alex" {
		t.Errorf("sender: got %q, want %q", msg.Sender.Username, "alex")
	}

	snap := feed.Snapshot()
	if len(snap) != 1 || snap[0].Content != "hello" {
		t.Fatalf("snapshot: got %+v", snap)
	}
	if len(hub.events) != 1 || hub.events[0].Type != model.EventMessage {
		t.Fatalf("expected one message broadcast, got %+v", hub.events)
	}
}

func TestFeedPlaceholderSender(t *testing.T) {
	feed, _, _, _ := newTestFeed()

	msg, err := feed.Send(context.Background(), "admin-1", model.KindText, "welcome")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Sender.Username != model.PlaceholderUsername {
		t.Errorf("sender: got %q, want placeholder %q", msg.Sender.Username, model.PlaceholderUsername)
	}
}

func TestFeedDeduplicatesRedelivery(t *testing.T) {
	feed, _, _, hub := newTestFeed()
	ctx := context.Background()

	m := model.Message{ID: "m1", SenderID: "u1", Kind: model.KindText, Content: "once",
		CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	feed.Publish(ctx, m)
	feed.Publish(ctx, m)

	if snap := feed.Snapshot(); len(snap) != 1 {
		t.Errorf("snapshot length: got %d, want 1", len(snap))
	}
	if len(hub.events) != 1 {
		t.Errorf("broadcasts: got %d, want 1", len(hub.events))
	}
}

func TestFeedReordersLateArrivals(t *testing.T) {
	feed, _, _, _ := newTestFeed()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	feed.Publish(ctx, model.Message{ID: "m2", SenderID: "u1", Kind: model.KindText, Content: "second", CreatedAt: base.Add(2 * time.Second)})
	feed.Publish(ctx, model.Message{ID: "m3", SenderID: "u1", Kind: model.KindText, Content: "third", CreatedAt: base.Add(3 * time.Second)})
	// Created first, delivered last.
	feed.Publish(ctx, model.Message{ID: "m1", SenderID: "u1", Kind: model.KindText, Content: "first", CreatedAt: base.Add(1 * time.Second)})

	snap := feed.Snapshot()
	want := []string{"first", "second", "third"}
	if len(snap) != len(want) {
		t.Fatalf("snapshot length: got %d, want %d", len(snap), len(want))
	}
	for i, w := range want {
		if snap[i].Content != w {
			t.Errorf("position %d: got %q, want %q", i, snap[i].Content, w)
		}
	}
}

func TestFeedLoadSeedsHistory(t *testing.T) {
	feed, messages, _, _ := newTestFeed()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	messages.history = []model.FeedMessage{
		{Message: model.Message{ID: "m1", SenderID: "u1", Kind: model.KindText, Content: "old", CreatedAt: base},
			Sender: model.Profile{UserID: "u1", Username: "alex"}},
	}

	if err := feed.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := feed.Snapshot(); len(snap) != 1 || snap[0].Content != "old" {
		t.Fatalf("snapshot: got %+v", feed.Snapshot())
	}

	// A seeded message redelivered as an event is dropped.
	feed.Publish(context.Background(), model.Message{ID: "m1", SenderID: "u1", Kind: model.KindText, Content: "old", CreatedAt: base})
	if snap := feed.Snapshot(); len(snap) != 1 {
		t.Errorf("snapshot length after redelivery: got %d, want 1", len(snap))
	}
}
