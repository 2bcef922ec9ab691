package model

// View is one of the fixed application screens the client can land on.
type View string

const (
	ViewNeedsAuth       View = "needs-auth"
	ViewAwaitingRequest View = "awaiting-request"
	ViewPendingReview   View = "pending-review"
	ViewRejected        View = "rejected"
	ViewNeedsProfile    View = "needs-profile"
	ViewAdminHome       View = "admin-home"
	ViewChat            View = "chat"
)
