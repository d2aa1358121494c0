// Package booking owns booking creation and the booking status lifecycle.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/libs/events"
	"github.com/md-rashed-zaman/tutorbook/libs/outbox"
	"github.com/md-rashed-zaman/tutorbook/libs/policy"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/timeslot"
)

type Service struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store storage.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// WithClock replaces the wall clock used for the past-date check.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateInput struct {
	Tutor string `json:"tutor" validate:"required"`
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	From  string `json:"from" validate:"required,hhmm"`
	To    string `json:"to" validate:"required,hhmm"`
}

// Create validates the request against the tutor's availability and the
// tutor's existing bookings, then stores a pending booking. The tutor row
// stays locked from the conflict read until commit.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (model.Booking, error) {
	if err := policy.Authorize(policy.CreateBooking, caller.Role, policy.Any); err != nil {
		return model.Booking{}, err
	}
	if _, err := timeslot.ParseDate(in.Date); err != nil {
		return model.Booking{}, apperr.Validation("date must be in YYYY-MM-DD format")
	}
	if timeslot.IsPast(in.Date, s.now()) {
		return model.Booking{}, apperr.Validation("You cannot book for a past date.")
	}
	req, err := timeslot.ParseRange(in.From, in.To)
	if err != nil {
		return model.Booking{}, apperr.Validation(err.Error())
	}

	var out model.Booking
	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		tutor, err := tx.LockTutor(ctx, in.Tutor)
		if err != nil {
			return notFound(err, "Tutor not found")
		}
		if _, err := availability.Check(tutor.Availability, in.Date, req); err != nil {
			return err
		}

		existing, err := tx.FindBookings(ctx, storage.BookingFilter{TutorID: tutor.ID, Date: in.Date, ExcludeCancelled: true})
		if err != nil {
			return apperr.Store("Booking failed", err)
		}
		if _, clash := FindConflict(existing, req); clash {
			return apperr.Conflict(conflictMessage)
		}

		b := model.Booking{
			Tutor:      model.TutorRef{ID: tutor.ID},
			Student:    model.UserRef{ID: caller.ID},
			Date:       in.Date,
			From:       in.From,
			To:         in.To,
			FromMinute: req.From,
			ToMinute:   req.To,
			Status:     model.BookingPending,
		}
		if err := tx.InsertBooking(ctx, &b); err != nil {
			if errors.Is(err, storage.ErrOverlap) {
				return apperr.Conflict(conflictMessage)
			}
			return apperr.Store("Booking failed", err)
		}
		if err := appendEvent(ctx, tx, events.BookingCreated, b, "", caller.ID); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.logger.Info("booking created", "booking_id", out.ID, "tutor_id", out.Tutor.ID, "date", out.Date)
	return out, nil
}

// transitions lists the statuses reachable through UpdateStatus.
var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingPending:   {model.BookingConfirmed, model.BookingCancelled},
	model.BookingConfirmed: {model.BookingCancelled},
}

func canMove(from, to model.BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateStatus confirms or cancels a booking on behalf of its tutor or an admin.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, id string, status model.BookingStatus) (model.Booking, error) {
	if status != model.BookingConfirmed && status != model.BookingCancelled {
		return model.Booking{}, apperr.Validation("Invalid status value")
	}
	return s.change(ctx, caller, id, policy.UpdateBookingStatus, func(cur model.Booking) (model.BookingStatus, error) {
		if !canMove(cur.Status, status) {
			return "", apperr.Validation("Cannot change a " + string(cur.Status) + " booking to " + string(status))
		}
		return status, nil
	})
}

// Cancel sets a booking to cancelled whatever its current state.
func (s *Service) Cancel(ctx context.Context, caller auth.Identity, id string) (model.Booking, error) {
	return s.change(ctx, caller, id, policy.CancelBooking, func(model.Booking) (model.BookingStatus, error) {
		return model.BookingCancelled, nil
	})
}

func (s *Service) change(ctx context.Context, caller auth.Identity, id string, op policy.Operation,
	next func(model.Booking) (model.BookingStatus, error)) (model.Booking, error) {
	var out model.Booking
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		cur, err := tx.GetBooking(ctx, id)
		if err != nil {
			return notFound(err, "Booking not found")
		}
		rel, err := s.relation(ctx, tx, caller, op, cur)
		if err != nil {
			return err
		}
		if err := policy.Authorize(op, caller.Role, rel); err != nil {
			return err
		}
		status, err := next(cur)
		if err != nil {
			return err
		}
		if status == cur.Status {
			out = cur
			return nil
		}
		updated, err := tx.UpdateBookingStatus(ctx, id, status)
		if err != nil {
			if errors.Is(err, storage.ErrOverlap) {
				return apperr.Conflict(conflictMessage)
			}
			return notFound(err, "Booking not found")
		}
		if err := appendEvent(ctx, tx, events.BookingStatusChanged, updated, cur.Status, caller.ID); err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.logger.Info("booking status changed", "booking_id", out.ID, "status", out.Status, "by", caller.ID)
	return out, nil
}

// relation resolves how caller relates to b, looking up the caller's tutor
// profile only when the policy could grant op through it.
func (s *Service) relation(ctx context.Context, st storage.Store, caller auth.Identity, op policy.Operation, b model.Booking) (policy.Relation, error) {
	needs := policy.Needs(op, caller.Role)
	var rel policy.Relation
	if needs&policy.Owner != 0 && b.Student.ID == caller.ID {
		rel |= policy.Owner
	}
	if needs&policy.AssignedTutor != 0 {
		profile, err := st.GetTutorByUser(ctx, caller.ID)
		switch {
		case err == nil && profile.ID == b.Tutor.ID:
			rel |= policy.AssignedTutor
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return 0, apperr.Store("Failed to update booking status", err)
		}
	}
	return rel, nil
}

// ListAll returns every booking. Admin only.
func (s *Service) ListAll(ctx context.Context, caller auth.Identity) ([]model.Booking, error) {
	if err := policy.Authorize(policy.ListAllBookings, caller.Role, policy.Any); err != nil {
		return nil, err
	}
	out, err := s.store.FindBookings(ctx, storage.BookingFilter{})
	if err != nil {
		return nil, apperr.Store("Failed to fetch bookings", err)
	}
	return out, nil
}

// ListMine returns the caller's bookings: as the student, or as the tutor
// through their profile.
func (s *Service) ListMine(ctx context.Context, caller auth.Identity) ([]model.Booking, error) {
	if err := policy.Authorize(policy.ListMyBookings, caller.Role, policy.Any); err != nil {
		return nil, err
	}
	filter := storage.BookingFilter{StudentID: caller.ID}
	if caller.Role == auth.RoleTutor {
		profile, err := s.store.GetTutorByUser(ctx, caller.ID)
		if err != nil {
			return nil, notFound(err, "Tutor profile not found")
		}
		filter = storage.BookingFilter{TutorID: profile.ID}
	}
	out, err := s.store.FindBookings(ctx, filter)
	if err != nil {
		return nil, apperr.Store("Failed to fetch your bookings", err)
	}
	return out, nil
}

func appendEvent(ctx context.Context, st storage.Store, eventType string, b model.Booking, prev model.BookingStatus, by string) error {
	payload := events.Booking{
		BookingID:      b.ID,
		TutorProfileID: b.Tutor.ID,
		Tutor:          events.Party{ID: b.Tutor.UserID, Name: b.Tutor.Name, Email: b.Tutor.Email},
		Student:        events.Party{ID: b.Student.ID, Name: b.Student.Name, Email: b.Student.Email},
		Date:           b.Date,
		From:           b.From,
		To:             b.To,
		Status:         string(b.Status),
		PreviousStatus: string(prev),
		ChangedBy:      by,
	}
	evt, err := outbox.NewEvent("booking", b.ID, eventType, payload)
	if err != nil {
		return apperr.Store("Failed to build event", err)
	}
	if err := st.AppendEvent(ctx, evt); err != nil {
		return apperr.Store("Failed to record event", err)
	}
	return nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Store("Internal server error", err)
}

// Export returns every booking for the admin spreadsheet.
func (s *Service) Export(ctx context.Context, caller auth.Identity) ([]model.Booking, error) {
	if err := policy.Authorize(policy.ExportBookings, caller.Role, policy.Any); err != nil {
		return nil, err
	}
	out, err := s.store.FindBookings(ctx, storage.BookingFilter{})
	if err != nil {
		return nil, apperr.Store("Failed to export bookings", err)
	}
	return out, nil
}
