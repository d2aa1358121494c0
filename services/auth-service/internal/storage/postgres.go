package storage

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/tutorbook/libs/db"
	"github.com/md-rashed-zaman/tutorbook/libs/outbox"
)

const userColumns = `id, name, email, password_hash, role, created_at`

type Postgres struct {
	pool   *db.Pool
	q      db.Querier
	outbox *outbox.Repository
}

func NewPostgres(pool *db.Pool, outboxRepo *outbox.Repository) *Postgres {
	return &Postgres{pool: pool, q: pool, outbox: outboxRepo}
}

func (s *Postgres) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&Postgres{q: tx, outbox: s.outbox})
	})
}

func (s *Postgres) Create(ctx context.Context, u *User) error {
	u.ID = uuid.NewString()
	err := pgxscan.Get(ctx, s.q, u, `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role)
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return wrap("insert user", err)
}

func (s *Postgres) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := pgxscan.Get(ctx, s.q, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return u, wrap("get user by email", err)
}

func (s *Postgres) GetByID(ctx context.Context, id string) (User, error) {
	if uuid.Validate(id) != nil {
		return User{}, ErrNotFound
	}
	var u User
	err := pgxscan.Get(ctx, s.q, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return u, wrap("get user", err)
}

func (s *Postgres) List(ctx context.Context) ([]User, error) {
	users := []User{}
	err := pgxscan.Select(ctx, s.q, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	return users, wrap("list users", err)
}

// Delete removes the user; profiles, bookings, reviews and notifications
// go with it through ON DELETE CASCADE.
func (s *Postgres) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	tag, err := s.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrap("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) AppendEvent(ctx context.Context, evt outbox.Event) error {
	return wrap("insert outbox event", s.outbox.Insert(ctx, s.q, evt))
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if db.IsNotFound(err) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
