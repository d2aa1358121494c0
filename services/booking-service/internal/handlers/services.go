package handlers

import (
	"context"

	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/reviews"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/search"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/tutors"
)

//go:generate mockgen -source=services.go -destination=mock_services_test.go -package=handlers

type BookingService interface {
	Create(ctx context.Context, caller auth.Identity, in booking.CreateInput) (model.Booking, error)
	UpdateStatus(ctx context.Context, caller auth.Identity, id string, status model.BookingStatus) (model.Booking, error)
	Cancel(ctx context.Context, caller auth.Identity, id string) (model.Booking, error)
	ListAll(ctx context.Context, caller auth.Identity) ([]model.Booking, error)
	ListMine(ctx context.Context, caller auth.Identity) ([]model.Booking, error)
	Export(ctx context.Context, caller auth.Identity) ([]model.Booking, error)
}

type TutorService interface {
	Create(ctx context.Context, caller auth.Identity, in tutors.CreateInput) (model.Tutor, error)
	List(ctx context.Context) ([]model.Tutor, error)
	Search(ctx context.Context, q search.Query) ([]model.Tutor, error)
	Get(ctx context.Context, id string) (model.Tutor, error)
	Mine(ctx context.Context, caller auth.Identity) (model.Tutor, error)
	Update(ctx context.Context, caller auth.Identity, id string, in tutors.UpdateInput) (model.Tutor, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
	SetStatus(ctx context.Context, caller auth.Identity, id string, status model.TutorStatus) (model.Tutor, error)
	Slots(ctx context.Context, id string, q tutors.SlotQuery) ([]tutors.Slot, error)
}

type ReviewService interface {
	Create(ctx context.Context, caller auth.Identity, in reviews.CreateInput) (model.Review, error)
	ListForTutor(ctx context.Context, tutorID string) ([]model.Review, error)
}
