package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newinfo363-byte/groupchat/internal/model"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) GetByUserID(ctx context.Context, userID string) (*model.RoleAssignment, error) {
	ra := &model.RoleAssignment{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, role, created_at FROM roles WHERE user_id = $1
	`, userID).Scan(&ra.ID, &ra.UserID, &ra.Role, &ra.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ra, nil
}

// Upsert assigns a role, replacing any existing assignment for the user.
// Safe to call repeatedly with the same arguments.
func (r *RoleRepository) Upsert(ctx context.Context, userID string, role model.Role) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO roles (id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
	`, uuid.NewString(), userID, role)
	return err
}

func (r *RoleRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE user_id = $1`, userID)
	return err
}

func (r *RoleRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	ra, err := r.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return ra.Role == model.RoleAdmin, nil
}

func (r *RoleRepository) AdminExists(ctx context.Context) (bool, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles WHERE role = 'admin'`).Scan(&n)
	return n > 0, err
}
