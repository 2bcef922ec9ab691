package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/repository"
)

type MessageStore interface {
	Insert(ctx context.Context, senderID string, kind model.MessageKind, content string) (*model.Message, error)
	ListJoined(ctx context.Context) ([]model.FeedMessage, error)
}

type Broadcaster interface {
	Broadcast(event *model.WSEvent)
}

// Feed owns the ordered in-memory message sequence. It is seeded once by a
// bulk fetch and then maintained from insert events: each event gets a
// point lookup of the sender's profile before it becomes displayable.
// Events are treated as an unordered multiset — duplicates are dropped by
// message id and the sequence is kept in created_at order, so redelivery
// or out-of-order arrival never corrupts the displayed feed.
type Feed struct {
	messages MessageStore
	profiles ProfileStore
	hub      Broadcaster

	mu   sync.Mutex
	seen map[string]bool
	feed []model.FeedMessage
}

func NewFeed(messages MessageStore, profiles ProfileStore, hub Broadcaster) *Feed {
	return &Feed{
		messages: messages,
		profiles: profiles,
		hub:      hub,
		seen:     make(map[string]bool),
	}
}

// Load seeds the feed with the full message history, oldest first.
func (f *Feed) Load(ctx context.Context) error {
	msgs, err := f.messages.ListJoined(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.feed = f.feed[:0]
	f.seen = make(map[string]bool, len(msgs))
	for _, m := range msgs {
		f.seen[m.ID] = true
		f.feed = append(f.feed, m)
	}
	return nil
}

// Snapshot returns a copy of the current sequence.
func (f *Feed) Snapshot() []model.FeedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.FeedMessage, len(f.feed))
	copy(out, f.feed)
	return out
}

// Send stores a new message and publishes it. The sender sees its own
// message through the broadcast like everyone else; there is no local echo.
func (f *Feed) Send(ctx context.Context, senderID string, kind model.MessageKind, content string) (*model.FeedMessage, error) {
	msg, err := f.messages.Insert(ctx, senderID, kind, content)
	if err != nil {
		return nil, err
	}
	joined := f.Publish(ctx, *msg)
	return &joined, nil
}

// Publish joins an inserted message with its sender profile, reconciles it
// into the sequence and broadcasts it to subscribers.
func (f *Feed) Publish(ctx context.Context, msg model.Message) model.FeedMessage {
	joined := model.FeedMessage{Message: msg, Sender: *f.lookupSender(ctx, msg.SenderID)}

	if !f.apply(joined) {
		// Redelivered event; already displayed.
		return joined
	}

	data, err := json.Marshal(joined)
	if err != nil {
		log.Printf("[Feed] marshal message %s: %v", msg.ID, err)
		return joined
	}
	f.hub.Broadcast(&model.WSEvent{Type: model.EventMessage, Data: data})
	return joined
}

func (f *Feed) lookupSender(ctx context.Context, senderID string) *model.Profile {
	profile, err := f.profiles.GetByUserID(ctx, senderID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("[Feed] sender profile lookup %s: %v", senderID, err)
		}
		return model.PlaceholderProfile(senderID)
	}
	return profile
}

// apply inserts the message at its created_at position, dropping duplicates.
// Returns false if the id was already present.
func (f *Feed) apply(m model.FeedMessage) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen[m.ID] {
		return false
	}
	f.seen[m.ID] = true

	// Almost always an append; walk back only when an event arrived late.
	i := len(f.feed)
	for i > 0 && f.feed[i-1].CreatedAt.After(m.CreatedAt) {
		i--
	}
	f.feed = append(f.feed, model.FeedMessage{})
	copy(f.feed[i+1:], f.feed[i:])
	f.feed[i] = m
	return true
}
