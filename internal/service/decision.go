package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/newinfo363-byte/groupchat/internal/model"
)

var (
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
	ErrUserMismatch    = errors.New("request does not belong to the given user")

	// ErrPartiallyApplied means the request status was updated but the role
	// change failed AND the compensating status rollback also failed. The
	// store is left with an inconsistent status/role pair.
	ErrPartiallyApplied = errors.New("decision partially applied: status updated but role change failed")
)

type RequestDecisionStore interface {
	GetByID(ctx context.Context, id string) (*model.AccessRequest, error)
	UpdateStatus(ctx context.Context, id string, status model.RequestStatus) error
}

type RoleDecisionStore interface {
	Upsert(ctx context.Context, userID string, role model.Role) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// DecisionService transitions an access request between pending, approved
// and rejected, keeping the role assignment consistent with the outcome.
type DecisionService struct {
	requests RequestDecisionStore
	roles    RoleDecisionStore
}

func NewDecisionService(requests RequestDecisionStore, roles RoleDecisionStore) *DecisionService {
	return &DecisionService{requests: requests, roles: roles}
}

// Decide sets the request's status and applies the matching role change:
// approved upserts a member role (idempotent), rejected deletes any role,
// revoking standing access even for a previously approved user. If the
// role change fails, the status update is rolled back to its prior value;
// if that rollback also fails, ErrPartiallyApplied is returned.
func (s *DecisionService) Decide(ctx context.Context, requestID, userID string, decision model.RequestStatus) error {
	if decision != model.StatusApproved && decision != model.StatusRejected {
		return ErrInvalidDecision
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if userID != "" && req.UserID != userID {
		return ErrUserMismatch
	}

	// Step 1: status. Failure here aborts with no role side effects.
	if err := s.requests.UpdateStatus(ctx, requestID, decision); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	// Step 2: role.
	var roleErr error
	if decision == model.StatusApproved {
		roleErr = s.roles.Upsert(ctx, req.UserID, model.RoleMember)
	} else {
		roleErr = s.roles.DeleteByUserID(ctx, req.UserID)
	}
	if roleErr == nil {
		return nil
	}

	// Compensate: restore the prior status.
	if rbErr := s.requests.UpdateStatus(ctx, requestID, req.Status); rbErr != nil {
		return fmt.Errorf("%w: role change: %v, rollback: %v", ErrPartiallyApplied, roleErr, rbErr)
	}
	return fmt.Errorf("apply role change: %w", roleErr)
}
