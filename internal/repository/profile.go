package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newinfo363-byte/groupchat/internal/model"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, userID, username, bio, dpURL string) (*model.Profile, error) {
	p := &model.Profile{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, user_id, username, bio, dp_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, username, bio, dp_url, created_at, updated_at
	`, uuid.NewString(), userID, username, bio, dpURL).Scan(
		&p.ID, &p.UserID, &p.Username, &p.Bio, &p.DpURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, userID, username, bio, dpURL string) (*model.Profile, error) {
	p := &model.Profile{}
	err := r.pool.QueryRow(ctx, `
		UPDATE profiles
		SET username = $2, bio = $3, dp_url = $4, updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, username, bio, dp_url, created_at, updated_at
	`, userID, username, bio, dpURL).Scan(
		&p.ID, &p.UserID, &p.Username, &p.Bio, &p.DpURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	p := &model.Profile{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, username, bio, dp_url, created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(
		&p.ID, &p.UserID, &p.Username, &p.Bio, &p.DpURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
