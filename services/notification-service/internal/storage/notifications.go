package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/md-rashed-zaman/tutorbook/libs/db"
)

type Notification struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user"`
	BookingID string     `db:"booking_id" json:"booking"`
	Audience  string     `db:"audience" json:"audience"`
	Status    string     `db:"status" json:"status"`
	Message   string     `db:"message" json:"message"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	SeenAt    *time.Time `db:"seen_at" json:"seenAt,omitempty"`
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, user_id, booking_id, audience, status, message, created_at, seen_at`

func (r *Repository) Insert(ctx context.Context, n *Notification) error {
	n.ID = uuid.NewString()
	err := pgxscan.Get(ctx, r.pool, n, `
		INSERT INTO notifications (id, user_id, booking_id, audience, status, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+columns,
		n.ID, n.UserID, n.BookingID, n.Audience, n.Status, n.Message)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListUnseen returns the user's unseen notifications, oldest first.
func (r *Repository) ListUnseen(ctx context.Context, userID string) ([]Notification, error) {
	out := []Notification{}
	if uuid.Validate(userID) != nil {
		return out, nil
	}
	err := pgxscan.Select(ctx, r.pool, &out, `
		SELECT `+columns+` FROM notifications
		WHERE user_id = $1 AND seen_at IS NULL
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (r *Repository) MarkSeen(ctx context.Context, userID string, at time.Time) (int64, error) {
	if uuid.Validate(userID) != nil {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET seen_at = $2
		WHERE user_id = $1 AND seen_at IS NULL
	`, userID, at)
	if err != nil {
		return 0, fmt.Errorf("mark notifications seen: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PruneSeen deletes notifications seen before cutoff.
func (r *Repository) PruneSeen(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE seen_at IS NOT NULL AND seen_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
