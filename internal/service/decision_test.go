package service

import (
	"context"
	"errors"
	"testing"

	"github.com/newinfo363-byte/groupchat/internal/model"
	"github.com/newinfo363-byte/groupchat/internal/repository"
)

type fakeRequestStore struct {
	byID            map[string]*model.AccessRequest
	updateErr       error
	failAfterFirst  bool
	updateCallCount int
}

func (f *fakeRequestStore) GetByID(_ context.Context, id string) (*model.AccessRequest, error) {
	if req, ok := f.byID[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRequestStore) UpdateStatus(_ context.Context, id string, status model.RequestStatus) error {
	f.updateCallCount++
	if f.updateErr != nil {
		if !f.failAfterFirst || f.updateCallCount > 1 {
			return f.updateErr
		}
	}
	req, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.Status = status
	return nil
}

type fakeRoleStore struct {
	byUser    map[string]model.Role
	upserts   int
	upsertErr error
	deleteErr error
}

func (f *fakeRoleStore) Upsert(_ context.Context, userID string, role model.Role) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	f.byUser[userID] = role
	return nil
}

func (f *fakeRoleStore) DeleteByUserID(_ context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byUser, userID)
	return nil
}

func newTestDecision(status model.RequestStatus) (*DecisionService, *fakeRequestStore, *fakeRoleStore) {
	requests := &fakeRequestStore{byID: map[string]*model.AccessRequest{
		"r1": {ID: "r1", UserID: "u1", Status: status},
	}}
	roles := &fakeRoleStore{byUser: map[string]model.Role{}}
	return NewDecisionService(requests, roles), requests, roles
}

func TestDecideApprove(t *testing.T) {
	svc, requests, roles := newTestDecision(model.StatusPending)

	if err := svc.Decide(context.Background(), "r1", "u1", model.StatusApproved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := requests.byID["r1"].Status; got != model.StatusApproved {
		t.Errorf("status: got %q, want %q", got, model.StatusApproved)
	}
	if got := roles.byUser["u1"]; got != model.RoleMember {
		t.Errorf("role: got %q, want %q", got, model.RoleMember)
	}
}

func TestDecideApproveIdempotent(t *testing.T) {
	svc, _, roles := newTestDecision(model.StatusPending)

	for i := 0; i < 2; i++ {
		if err := svc.Decide(context.Background(), "r1", "u1", model.StatusApproved); err != nil {
			t.Fatalf("decide %d: %v", i+1, err)
		}
	}
	if len(roles.byUser) != 1 {
		t.Errorf("role assignments: got %d, want 1", len(roles.byUser))
	}
	if got := roles.byUser["u1"]; got != model.RoleMember {
		t.Errorf("role: got %q, want %q", got, model.RoleMember)
	}
}

func TestDecideRejectRevokesRole(t *testing.T) {
	// Rejecting a previously approved user deletes their standing role.
	svc, requests, roles := newTestDecision(model.StatusApproved)
	roles.byUser["u1"] = model.RoleMember

	if err := svc.Decide(context.Background(), "r1", "u1", model.StatusRejected); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := requests.byID["r1"].Status; got != model.StatusRejected {
		t.Errorf("status: got %q, want %q", got, model.StatusRejected)
	}
	if _, ok := roles.byUser["u1"]; ok {
		t.Error("role assignment must be deleted on rejection")
	}
}

func TestDecideStatusFailureAborts(t *testing.T) {
	svc, requests, roles := newTestDecision(model.StatusPending)
	requests.updateErr = errors.New("connection refused")

	err := svc.Decide(context.Background(), "r1", "u1", model.StatusApproved)
	if err == nil {
		t.Fatal("expected error")
	}
	if roles.upserts != 0 {
		t.Error("role store must not be touched when the status update fails")
	}
}

func TestDecideRoleFailureRollsBack(t *testing.T) {
	svc, requests, roles := newTestDecision(model.StatusPending)
	roles.upsertErr = errors.New("connection refused")

	err := svc.Decide(context.Background(), "r1", "u1", model.StatusApproved)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrPartiallyApplied) {
		t.Error("rollback succeeded, must not report partial application")
	}
	if got := requests.byID["r1"].Status; got != model.StatusPending {
		t.Errorf("status after rollback: got %q, want %q", got, model.StatusPending)
	}
}

func TestDecidePartiallyApplied(t *testing.T) {
	svc, requests, roles := newTestDecision(model.StatusPending)
	roles.upsertErr = errors.New("role store down")
	requests.updateErr = errors.New("status store down")
	requests.failAfterFirst = true // step 1 succeeds, rollback fails

	err := svc.Decide(context.Background(), "r1", "u1", model.StatusApproved)
	if !errors.Is(err, ErrPartiallyApplied) {
		t.Fatalf("expected ErrPartiallyApplied, got %v", err)
	}
	if got := requests.byID["r1"].Status; got != model.StatusApproved {
		t.Errorf("status left as applied: got %q, want %q", got, model.StatusApproved)
	}
}

func TestDecideValidation(t *testing.T) {
	svc, _, _ := newTestDecision(model.StatusPending)
	ctx := context.Background()

	if err := svc.Decide(ctx, "r1", "u1", model.StatusPending); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("pending decision: got %v, want ErrInvalidDecision", err)
	}
	if err := svc.Decide(ctx, "r1", "someone-else", model.StatusApproved); !errors.Is(err, ErrUserMismatch) {
		t.Errorf("wrong user: got %v, want ErrUserMismatch", err)
	}
	if err := svc.Decide(ctx, "missing", "u1", model.StatusApproved); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing request: got %v, want ErrNotFound", err)
	}
}
