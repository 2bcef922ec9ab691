package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newinfo363-byte/groupchat/internal/model"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Insert stores a single message and returns the stored row, including the
// server-assigned creation time.
func (r *MessageRepository) Insert(ctx context.Context, senderID string, kind model.MessageKind, content string) (*model.Message, error) {
	m := &model.Message{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, type, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sender_id, type, content, created_at
	`, uuid.NewString(), senderID, kind, content).Scan(
		&m.ID, &m.SenderID, &m.Kind, &m.Content, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListJoined reads the full feed from the message_feed view, oldest first,
// each message left-joined with its sender's profile. Senders with no
// profile row get the placeholder identity.
func (r *MessageRepository) ListJoined(ctx context.Context) ([]model.FeedMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, type, content, created_at,
		       COALESCE(sender_username, ''), COALESCE(sender_bio, ''), COALESCE(sender_dp_url, '')
		FROM message_feed
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.FeedMessage
	for rows.Next() {
		var fm model.FeedMessage
		if err := rows.Scan(
			&fm.ID, &fm.SenderID, &fm.Kind, &fm.Content, &fm.CreatedAt,
			&fm.Sender.Username, &fm.Sender.Bio, &fm.Sender.DpURL,
		); err != nil {
			return nil, err
		}
		fm.Sender.UserID = fm.SenderID
		if fm.Sender.Username == "" {
			fm.Sender = *model.PlaceholderProfile(fm.SenderID)
		}
		msgs = append(msgs, fm)
	}
	return msgs, rows.Err()
}

// DeleteOlderThan removes messages older than the given number of days.
// Returns the number of deleted rows.
func (r *MessageRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM messages WHERE created_at < NOW() - make_interval(days => $1)
	`, days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
