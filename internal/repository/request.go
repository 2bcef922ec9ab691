package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newinfo363-byte/groupchat/internal/model"
)

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

// Create inserts a new pending request. A second submission for the same
// user hits the unique index on user_id and reports a duplicate.
func (r *RequestRepository) Create(ctx context.Context, userID, name, reason string) (*model.AccessRequest, error) {
	req := &model.AccessRequest{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO access_requests (id, user_id, name, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		RETURNING id, user_id, name, reason, status, created_at
	`, uuid.NewString(), userID, name, reason).Scan(
		&req.ID, &req.UserID, &req.Name, &req.Reason, &req.Status, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("duplicate key")
		}
		return nil, err
	}
	return req, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*model.AccessRequest, error) {
	req := &model.AccessRequest{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, reason, status, created_at
		FROM access_requests WHERE id = $1
	`, id).Scan(&req.ID, &req.UserID, &req.Name, &req.Reason, &req.Status, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *RequestRepository) GetByUserID(ctx context.Context, userID string) (*model.AccessRequest, error) {
	req := &model.AccessRequest{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, reason, status, created_at
		FROM access_requests WHERE user_id = $1
	`, userID).Scan(&req.ID, &req.UserID, &req.Name, &req.Reason, &req.Status, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status model.RequestStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE access_requests SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RequestRepository) ListByStatus(ctx context.Context, status model.RequestStatus) ([]model.AccessRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, reason, status, created_at
		FROM access_requests
		WHERE status = $1
		ORDER BY created_at ASC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []model.AccessRequest
	for rows.Next() {
		var req model.AccessRequest
		if err := rows.Scan(&req.ID, &req.UserID, &req.Name, &req.Reason, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ListWithRoles returns every request joined with the user's current role,
// for the admin roster view.
func (r *RequestRepository) ListWithRoles(ctx context.Context) ([]model.RequestWithRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ar.id, ar.user_id, ar.name, ar.reason, ar.status, ar.created_at,
		       COALESCE(ro.role, '')
		FROM access_requests ar
		LEFT JOIN roles ro ON ro.user_id = ar.user_id
		ORDER BY ar.created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RequestWithRole
	for rows.Next() {
		var rr model.RequestWithRole
		if err := rows.Scan(&rr.ID, &rr.UserID, &rr.Name, &rr.Reason, &rr.Status, &rr.CreatedAt, &rr.Role); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
