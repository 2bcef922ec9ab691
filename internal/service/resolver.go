package service

import (
	"context"
	"errors"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/repository"
)

// Store lookups the resolver depends on. Absence is reported as
// repository.ErrNotFound; anything else is a store failure.
type RoleStore interface {
	GetByUserID(ctx context.Context, userID string) (*model.RoleAssignment, error)
}

type RequestStore interface {
	GetByUserID(ctx context.Context, userID string) (*model.AccessRequest, error)
}

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
}

// Resolver maps a user to the application view they should see, from the
// store's current state: admin role first, then access-request status, then
// profile completeness. Any store failure resolves to needs-auth so a
// partial or stale privileged view is never shown.
type Resolver struct {
	roles    RoleStore
	requests RequestStore
	profiles ProfileStore
}

func NewResolver(roles RoleStore, requests RequestStore, profiles ProfileStore) *Resolver {
	return &Resolver{roles: roles, requests: requests, profiles: profiles}
}

// Resolve returns the view for userID plus the profile to render with it,
// when one applies. current is the view the client is already on; it only
// matters for the admin-home/chat pair, where an admin already in chat is
// not evicted by a re-check. The returned error is for logging only — the
// returned view is always valid to show.
func (r *Resolver) Resolve(ctx context.Context, userID string, current model.View) (model.View, *model.Profile, error) {
	role, err := r.roles.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return model.ViewNeedsAuth, nil, err
	}

	if role != nil && role.Role == model.RoleAdmin {
		profile, err := r.profiles.GetByUserID(ctx, userID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return model.ViewNeedsAuth, nil, err
			}
			profile = model.PlaceholderProfile(userID)
		}
		if current == model.ViewChat {
			return model.ViewChat, profile, nil
		}
		return model.ViewAdminHome, profile, nil
	}

	req, err := r.requests.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ViewAwaitingRequest, nil, nil
		}
		return model.ViewNeedsAuth, nil, err
	}

	switch req.Status {
	case model.StatusPending:
		return model.ViewPendingReview, nil, nil
	case model.StatusRejected:
		return model.ViewRejected, nil, nil
	case model.StatusApproved:
		profile, err := r.profiles.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.ViewNeedsProfile, nil, nil
			}
			return model.ViewNeedsAuth, nil, err
		}
		return model.ViewChat, profile, nil
	default:
		return model.ViewNeedsAuth, nil, errors.New("unknown request status: " + string(req.Status))
	}
}

// CanChat reports whether the user may read and send messages: admins
// always, everyone else only from the chat view.
func (r *Resolver) CanChat(ctx context.Context, userID string) (bool, error) {
	view, _, err := r.Resolve(ctx, userID, "")
	if err != nil {
		return false, err
	}
	return view == model.ViewChat || view == model.ViewAdminHome, nil
}
