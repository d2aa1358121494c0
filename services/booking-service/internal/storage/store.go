package storage

import (
	"context"
	"errors"

	"github.com/md-rashed-zaman/tutorbook/libs/outbox"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/search"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrDuplicate = errors.New("storage: already exists")
	// ErrOverlap is returned when the no-overlap constraint rejects a booking.
	ErrOverlap = errors.New("storage: overlapping booking")
)

// BookingFilter narrows FindBookings. Empty fields match everything.
type BookingFilter struct {
	TutorID          string
	StudentID        string
	Date             string
	ExcludeCancelled bool
}

// Store is the data-access contract of the booking service. Calls made
// through the Store handed to WithTx's fn share one transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error

	CreateTutor(ctx context.Context, t *model.Tutor) error
	GetTutor(ctx context.Context, id string) (model.Tutor, error)
	// LockTutor reads the profile and holds it until the transaction ends.
	LockTutor(ctx context.Context, id string) (model.Tutor, error)
	GetTutorByUser(ctx context.Context, userID string) (model.Tutor, error)
	ListTutors(ctx context.Context) ([]model.Tutor, error)
	SearchTutors(ctx context.Context, q search.Query) ([]model.Tutor, error)
	UpdateTutor(ctx context.Context, t model.Tutor) (model.Tutor, error)
	SetTutorStatus(ctx context.Context, id string, status model.TutorStatus) (model.Tutor, error)
	SetTutorRating(ctx context.Context, id string, rating float64) error
	DeleteTutor(ctx context.Context, id string) error

	GetUser(ctx context.Context, id string) (model.UserRef, error)

	FindBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error)
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) (model.Booking, error)

	InsertReview(ctx context.Context, r *model.Review) error
	ListReviews(ctx context.Context, tutorID string) ([]model.Review, error)
	TutorRatings(ctx context.Context, tutorID string) ([]int, error)

	AppendEvent(ctx context.Context, evt outbox.Event) error
}
