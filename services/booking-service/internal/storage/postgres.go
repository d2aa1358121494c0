package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/tutorbook/libs/db"
	"github.com/md-rashed-zaman/tutorbook/libs/outbox"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/search"
)

const tutorColumns = `t.id, t.user_id, t.name, t.subjects, t.hourly_rate::float8 AS hourly_rate, t.bio,
	t.rating, t.status, t.availability, t.created_at, t.updated_at`

const bookingSelect = `
	SELECT b.id, to_char(b.booking_date, 'YYYY-MM-DD') AS date, b.from_time, b.to_time,
		b.from_minute, b.to_minute, b.status, b.created_at, b.updated_at,
		t.id AS "tutor.id", t.name AS "tutor.name", t.user_id AS "tutor.user_id", tu.email AS "tutor.email",
		s.id AS "student.id", s.name AS "student.name", s.email AS "student.email"
	FROM bookings b
	JOIN tutor_profiles t ON t.id = b.tutor_id
	JOIN users tu ON tu.id = t.user_id
	JOIN users s ON s.id = b.student_id`

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
		// already inside a transaction
		return fn(s)
	}
	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&Postgres{q: tx, outbox: s.outbox})
	})
}

func (s *Postgres) CreateTutor(ctx context.Context, t *model.Tutor) error {
	t.ID = uuid.NewString()
	err := pgxscan.Get(ctx, s.q, t, `
		INSERT INTO tutor_profiles AS t (id, user_id, name, subjects, hourly_rate, bio, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+tutorColumns,
		t.ID, t.UserID, t.Name, nonNilStrings(t.Subjects), t.HourlyRate, t.Bio, nonNilWindows(t.Availability))
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return wrap("insert tutor", err)
}

func (s *Postgres) GetTutor(ctx context.Context, id string) (model.Tutor, error) {
	return s.getTutor(ctx, "t.id = $1", id, "")
}

func (s *Postgres) LockTutor(ctx context.Context, id string) (model.Tutor, error) {
	return s.getTutor(ctx, "t.id = $1", id, "FOR UPDATE")
}

func (s *Postgres) GetTutorByUser(ctx context.Context, userID string) (model.Tutor, error) {
	return s.getTutor(ctx, "t.user_id = $1", userID, "")
}

func (s *Postgres) getTutor(ctx context.Context, where, id, lock string) (model.Tutor, error) {
	if uuid.Validate(id) != nil {
		return model.Tutor{}, ErrNotFound
	}
	var t model.Tutor
	err := pgxscan.Get(ctx, s.q, &t, `SELECT `+tutorColumns+` FROM tutor_profiles t WHERE `+where+` `+lock, id)
	return t, wrap("select tutor", err)
}

func (s *Postgres) ListTutors(ctx context.Context) ([]model.Tutor, error) {
	var out []model.Tutor
	err := pgxscan.Select(ctx, s.q, &out, `SELECT `+tutorColumns+` FROM tutor_profiles t ORDER BY t.created_at`)
	return out, wrap("list tutors", err)
}

func (s *Postgres) SearchTutors(ctx context.Context, q search.Query) ([]model.Tutor, error) {
	where, args := q.Where()
	var out []model.Tutor
	err := pgxscan.Select(ctx, s.q, &out,
		`SELECT `+tutorColumns+` FROM tutor_profiles t WHERE `+where+` ORDER BY t.rating DESC, t.created_at`, args...)
	return out, wrap("search tutors", err)
}

func (s *Postgres) UpdateTutor(ctx context.Context, t model.Tutor) (model.Tutor, error) {
	var out model.Tutor
	err := pgxscan.Get(ctx, s.q, &out, `
		UPDATE tutor_profiles AS t
		SET name = $2, subjects = $3, hourly_rate = $4, bio = $5, availability = $6, updated_at = now()
		WHERE t.id = $1
		RETURNING `+tutorColumns,
		t.ID, t.Name, nonNilStrings(t.Subjects), t.HourlyRate, t.Bio, nonNilWindows(t.Availability))
	return out, wrap("update tutor", err)
}

func (s *Postgres) SetTutorStatus(ctx context.Context, id string, status model.TutorStatus) (model.Tutor, error) {
	if uuid.Validate(id) != nil {
		return model.Tutor{}, ErrNotFound
	}
	var out model.Tutor
	err := pgxscan.Get(ctx, s.q, &out, `
		UPDATE tutor_profiles AS t SET status = $2, updated_at = now()
		WHERE t.id = $1
		RETURNING `+tutorColumns, id, status)
	return out, wrap("update tutor status", err)
}

func (s *Postgres) SetTutorRating(ctx context.Context, id string, rating float64) error {
	tag, err := s.q.Exec(ctx, `UPDATE tutor_profiles SET rating = $2, updated_at = now() WHERE id = $1`, id, rating)
	if err != nil {
		return wrap("update tutor rating", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteTutor(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	tag, err := s.q.Exec(ctx, `DELETE FROM tutor_profiles WHERE id = $1`, id)
	if err != nil {
		return wrap("delete tutor", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) GetUser(ctx context.Context, id string) (model.UserRef, error) {
	if uuid.Validate(id) != nil {
		return model.UserRef{}, ErrNotFound
	}
	var u model.UserRef
	err := pgxscan.Get(ctx, s.q, &u, `SELECT id, name, email FROM users WHERE id = $1`, id)
	return u, wrap("select user", err)
}

func (s *Postgres) FindBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	var conds []string
	var args []any
	argIdx := 1
	for _, c := range []struct{ col, val string }{
		{"b.tutor_id", f.TutorID},
		{"b.student_id", f.StudentID},
		{"b.booking_date", f.Date},
	} {
		if c.val == "" {
			continue
		}
		cast := ""
		if c.col == "b.booking_date" {
			cast = "::date"
		}
		conds = append(conds, fmt.Sprintf("%s = $%d%s", c.col, argIdx, cast))
		args = append(args, c.val)
		argIdx++
	}
	if f.ExcludeCancelled {
		conds = append(conds, "b.status <> 'cancelled'")
	}
	query := bookingSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY b.booking_date, b.from_minute"

	var out []model.Booking
	err := pgxscan.Select(ctx, s.q, &out, query, args...)
	return out, wrap("find bookings", err)
}

func (s *Postgres) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	if uuid.Validate(id) != nil {
		return model.Booking{}, ErrNotFound
	}
	var b model.Booking
	err := pgxscan.Get(ctx, s.q, &b, bookingSelect+` WHERE b.id = $1`, id)
	return b, wrap("select booking", err)
}

func (s *Postgres) InsertBooking(ctx context.Context, b *model.Booking) error {
	id := uuid.NewString()
	_, err := s.q.Exec(ctx, `
		INSERT INTO bookings (id, tutor_id, student_id, booking_date, from_time, to_time, from_minute, to_minute, status)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9)
	`, id, b.Tutor.ID, b.Student.ID, b.Date, b.From, b.To, b.FromMinute, b.ToMinute, b.Status)
	if db.IsExclusionViolation(err) {
		return ErrOverlap
	}
	if err != nil {
		return wrap("insert booking", err)
	}
	stored, err := s.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	*b = stored
	return nil
}

func (s *Postgres) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) (model.Booking, error) {
	if uuid.Validate(id) != nil {
		return model.Booking{}, ErrNotFound
	}
	tag, err := s.q.Exec(ctx, `UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if db.IsExclusionViolation(err) {
		return model.Booking{}, ErrOverlap
	}
	if err != nil {
		return model.Booking{}, wrap("update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Booking{}, ErrNotFound
	}
	return s.GetBooking(ctx, id)
}

func (s *Postgres) InsertReview(ctx context.Context, r *model.Review) error {
	r.ID = uuid.NewString()
	_, err := s.q.Exec(ctx, `
		INSERT INTO reviews (id, tutor_id, student_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
	`, r.ID, r.TutorID, r.Student.ID, r.Rating, r.Comment)
	if db.IsForeignKeyViolation(err) {
		return ErrNotFound
	}
	return wrap("insert review", err)
}

func (s *Postgres) ListReviews(ctx context.Context, tutorID string) ([]model.Review, error) {
	if uuid.Validate(tutorID) != nil {
		return nil, nil
	}
	var out []model.Review
	err := pgxscan.Select(ctx, s.q, &out, `
		SELECT r.id, r.tutor_id, r.rating, r.comment, r.created_at,
			u.id AS "student.id", u.name AS "student.name", '' AS "student.email"
		FROM reviews r
		JOIN users u ON u.id = r.student_id
		WHERE r.tutor_id = $1
		ORDER BY r.created_at DESC
	`, tutorID)
	return out, wrap("list reviews", err)
}

func (s *Postgres) TutorRatings(ctx context.Context, tutorID string) ([]int, error) {
	var out []int
	err := pgxscan.Select(ctx, s.q, &out, `SELECT rating FROM reviews WHERE tutor_id = $1`, tutorID)
	return out, wrap("select ratings", err)
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

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilWindows(v []model.Window) []model.Window {
	if v == nil {
		return []model.Window{}
	}
	return v
}
