package model

import "encoding/json"

// Event types pushed over the realtime feed.
const (
	EventMessage  = "message"
	EventHistory  = "history"
	EventAnnounce = "server:announce"
)

type WSEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type WSAnnounce struct {
	Message string `json:"message"`
}
