package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/tutorbook/libs/outbox"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/search"
)

// Memory is an in-process Store used by service tests. WithTx serializes
// callers but does not roll back on error.
type Memory struct {
	txMu sync.Mutex
	mu   sync.Mutex
	now  func() time.Time

	users    map[string]model.UserRef
	tutors   map[string]model.Tutor
	bookings []model.Booking
	reviews  []model.Review
	events   []outbox.Event
}

func NewMemory() *Memory {
	return &Memory{
		now:    time.Now,
		users:  map[string]model.UserRef{},
		tutors: map[string]model.Tutor{},
	}
}

// AddUser seeds an account owned by the auth service.
func (m *Memory) AddUser(u model.UserRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// Events returns a copy of every appended outbox event.
func (m *Memory) Events() []outbox.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]outbox.Event(nil), m.events...)
}

func (m *Memory) WithTx(_ context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

func (m *Memory) CreateTutor(_ context.Context, t *model.Tutor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tutors {
		if existing.UserID == t.UserID {
			return ErrDuplicate
		}
	}
	t.ID = uuid.NewString()
	if t.Status == "" {
		t.Status = model.TutorPending
	}
	t.CreatedAt = m.now()
	t.UpdatedAt = t.CreatedAt
	m.tutors[t.ID] = *t
	return nil
}

func (m *Memory) GetTutor(_ context.Context, id string) (model.Tutor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tutors[id]
	if !ok {
		return model.Tutor{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) LockTutor(ctx context.Context, id string) (model.Tutor, error) {
	return m.GetTutor(ctx, id)
}

func (m *Memory) GetTutorByUser(_ context.Context, userID string) (model.Tutor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tutors {
		if t.UserID == userID {
			return t, nil
		}
	}
	return model.Tutor{}, ErrNotFound
}

func (m *Memory) ListTutors(_ context.Context) ([]model.Tutor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedTutors(func(model.Tutor) bool { return true }), nil
}

func (m *Memory) SearchTutors(_ context.Context, q search.Query) ([]model.Tutor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedTutors(q.Matches), nil
}

func (m *Memory) sortedTutors(keep func(model.Tutor) bool) []model.Tutor {
	var out []model.Tutor
	for _, t := range m.tutors {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *Memory) UpdateTutor(_ context.Context, t model.Tutor) (model.Tutor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tutors[t.ID]
	if !ok {
		return model.Tutor{}, ErrNotFound
	}
	cur.Name, cur.Subjects, cur.HourlyRate, cur.Bio, cur.Availability = t.Name, t.Subjects, t.HourlyRate, t.Bio, t.Availability
	cur.UpdatedAt = m.now()
	m.tutors[t.ID] = cur
	return cur, nil
}

func (m *Memory) SetTutorStatus(_ context.Context, id string, status model.TutorStatus) (model.Tutor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tutors[id]
	if !ok {
		return model.Tutor{}, ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = m.now()
	m.tutors[id] = t
	return t, nil
}

func (m *Memory) SetTutorRating(_ context.Context, id string, rating float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tutors[id]
	if !ok {
		return ErrNotFound
	}
	t.Rating = rating
	m.tutors[id] = t
	return nil
}

func (m *Memory) DeleteTutor(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tutors[id]; !ok {
		return ErrNotFound
	}
	delete(m.tutors, id)
	bookings := m.bookings[:0]
	for _, b := range m.bookings {
		if b.Tutor.ID != id {
			bookings = append(bookings, b)
		}
	}
	m.bookings = bookings
	reviews := m.reviews[:0]
	for _, r := range m.reviews {
		if r.TutorID != id {
			reviews = append(reviews, r)
		}
	}
	m.reviews = reviews
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (model.UserRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.UserRef{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) FindBookings(_ context.Context, f BookingFilter) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.bookings {
		switch {
		case f.TutorID != "" && b.Tutor.ID != f.TutorID,
			f.StudentID != "" && b.Student.ID != f.StudentID,
			f.Date != "" && b.Date != f.Date,
			f.ExcludeCancelled && b.Status == model.BookingCancelled:
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *Memory) GetBooking(_ context.Context, id string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.bookingIndex(id)
	if i < 0 {
		return model.Booking{}, ErrNotFound
	}
	return m.bookings[i], nil
}

func (m *Memory) InsertBooking(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tutors[b.Tutor.ID]
	if !ok {
		return ErrNotFound
	}
	student, ok := m.users[b.Student.ID]
	if !ok {
		return ErrNotFound
	}
	for _, other := range m.bookings {
		if other.Tutor.ID == b.Tutor.ID && other.Date == b.Date && other.Status != model.BookingCancelled &&
			other.FromMinute < b.ToMinute && b.FromMinute < other.ToMinute {
			return ErrOverlap
		}
	}
	b.ID = uuid.NewString()
	b.Tutor = model.TutorRef{ID: t.ID, Name: t.Name, UserID: t.UserID, Email: m.users[t.UserID].Email}
	b.Student = student
	b.CreatedAt = m.now()
	b.UpdatedAt = b.CreatedAt
	m.bookings = append(m.bookings, *b)
	return nil
}

func (m *Memory) UpdateBookingStatus(_ context.Context, id string, status model.BookingStatus) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.bookingIndex(id)
	if i < 0 {
		return model.Booking{}, ErrNotFound
	}
	m.bookings[i].Status = status
	m.bookings[i].UpdatedAt = m.now()
	return m.bookings[i], nil
}

func (m *Memory) bookingIndex(id string) int {
	for i, b := range m.bookings {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) InsertReview(_ context.Context, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tutors[r.TutorID]; !ok {
		return ErrNotFound
	}
	student, ok := m.users[r.Student.ID]
	if !ok {
		return ErrNotFound
	}
	r.ID = uuid.NewString()
	r.Student = model.UserRef{ID: student.ID, Name: student.Name}
	r.CreatedAt = m.now()
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *Memory) ListReviews(_ context.Context, tutorID string) ([]model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Review
	for _, r := range m.reviews {
		if r.TutorID == tutorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) TutorRatings(ctx context.Context, tutorID string) ([]int, error) {
	reviews, _ := m.ListReviews(ctx, tutorID)
	out := make([]int, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.Rating)
	}
	return out, nil
}

func (m *Memory) AppendEvent(_ context.Context, evt outbox.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}
