package model

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// AccessRequest is a user's application for membership. At most one per
// user (unique index on user_id); status is mutated only by admin decisions.
type AccessRequest struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Name      string        `json:"name"`
	Reason    string        `json:"reason"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type SubmitRequestPayload struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type DecisionPayload struct {
	UserID   string `json:"user_id"`
	Decision string `json:"decision"`
}

// RequestWithRole is a roster row for the admin "all users" view: the
// access request joined with the user's current role, if any.
type RequestWithRole struct {
	AccessRequest
	Role string `json:"role,omitempty"`
}
