package model

import "time"

type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindAudio MessageKind = "audio"
)

// Message is a stored chat message row. Content is the text payload for
// kind=text, or a public retrieval URL for image/audio.
type Message struct {
	ID        string      `json:"id"`
	SenderID  string      `json:"sender_id"`
	Kind      MessageKind `json:"type"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// FeedMessage is a message joined with its sender's profile at render time.
type FeedMessage struct {
	Message
	Sender Profile `json:"sender"`
}

// SendMessagePayload is the body for posting a new message.
type SendMessagePayload struct {
	Kind    MessageKind `json:"type"`
	Content string      `json:"content"`
}
