// Package tutors manages tutor profiles: creation, edits, moderation,
// public listing, search and open-slot lookup.
package tutors

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/libs/policy"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/search"
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

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateInput struct {
	Name         string         `json:"name" validate:"required"`
	Subjects     []string       `json:"subjects" validate:"required,min=1,dive,required"`
	HourlyRate   *float64       `json:"hourlyRate" validate:"required,gte=0"`
	Bio          string         `json:"bio"`
	Availability []model.Window `json:"availability" validate:"dive"`
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name         *string         `json:"name" validate:"omitempty,min=1"`
	Subjects     *[]string       `json:"subjects" validate:"omitempty,min=1,dive,required"`
	HourlyRate   *float64        `json:"hourlyRate" validate:"omitempty,gte=0"`
	Bio          *string         `json:"bio"`
	Availability *[]model.Window `json:"availability" validate:"omitempty,dive"`
}

func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (model.Tutor, error) {
	if err := policy.Authorize(policy.CreateProfile, caller.Role, policy.Any); err != nil {
		return model.Tutor{}, err
	}
	if in.HourlyRate == nil || *in.HourlyRate < 0 {
		return model.Tutor{}, apperr.Validation("hourlyRate must be a non-negative number")
	}
	if err := ValidateWindows(in.Availability); err != nil {
		return model.Tutor{}, err
	}
	t := model.Tutor{
		UserID:       caller.ID,
		Name:         in.Name,
		Subjects:     in.Subjects,
		HourlyRate:   *in.HourlyRate,
		Bio:          in.Bio,
		Status:       model.TutorPending,
		Availability: in.Availability,
	}
	if err := s.store.CreateTutor(ctx, &t); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return model.Tutor{}, apperr.Conflict("Profile already exists.")
		}
		return model.Tutor{}, apperr.Store("Failed to create tutor", err)
	}
	s.logger.Info("tutor profile created", "tutor_id", t.ID, "user_id", caller.ID)
	return t, nil
}

// ValidateWindows checks every availability entry names real weekdays and
// an increasing HH:MM range.
func ValidateWindows(windows []model.Window) error {
	for _, w := range windows {
		days := availability.Days(w.Day)
		if len(days) == 0 {
			return apperr.Validation("availability day is required")
		}
		for _, d := range days {
			if !timeslot.IsWeekday(d) {
				return apperr.Validation("availability day must list weekday names")
			}
		}
		if _, err := timeslot.ParseRange(w.From, w.To); err != nil {
			return apperr.Validation("availability " + err.Error())
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]model.Tutor, error) {
	out, err := s.store.ListTutors(ctx)
	if err != nil {
		return nil, apperr.Store("Failed to fetch tutors", err)
	}
	return out, nil
}

func (s *Service) Search(ctx context.Context, q search.Query) ([]model.Tutor, error) {
	out, err := s.store.SearchTutors(ctx, q)
	if err != nil {
		return nil, apperr.Store("Failed to search tutors", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Tutor, error) {
	t, err := s.store.GetTutor(ctx, id)
	if err != nil {
		return model.Tutor{}, lookupErr(err, "Tutor not found")
	}
	return t, nil
}

func (s *Service) Mine(ctx context.Context, caller auth.Identity) (model.Tutor, error) {
	t, err := s.store.GetTutorByUser(ctx, caller.ID)
	if err != nil {
		return model.Tutor{}, lookupErr(err, "No profile found")
	}
	return t, nil
}

// Update applies the writable fields. Rating, status and owner are not
// reachable from here.
func (s *Service) Update(ctx context.Context, caller auth.Identity, id string, in UpdateInput) (model.Tutor, error) {
	cur, err := s.owned(ctx, caller, id, policy.UpdateProfile)
	if err != nil {
		return model.Tutor{}, err
	}
	if in.Name != nil {
		cur.Name = *in.Name
	}
	if in.Subjects != nil {
		cur.Subjects = *in.Subjects
	}
	if in.HourlyRate != nil {
		cur.HourlyRate = *in.HourlyRate
	}
	if in.Bio != nil {
		cur.Bio = *in.Bio
	}
	if in.Availability != nil {
		if err := ValidateWindows(*in.Availability); err != nil {
			return model.Tutor{}, err
		}
		cur.Availability = *in.Availability
	}
	out, err := s.store.UpdateTutor(ctx, cur)
	if err != nil {
		return model.Tutor{}, lookupErr(err, "Tutor not found")
	}
	return out, nil
}

// Delete removes the profile. Its bookings and reviews go with it.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id string) error {
	if _, err := s.owned(ctx, caller, id, policy.DeleteProfile); err != nil {
		return err
	}
	if err := s.store.DeleteTutor(ctx, id); err != nil {
		return lookupErr(err, "Tutor not found")
	}
	s.logger.Info("tutor profile deleted", "tutor_id", id, "by", caller.ID)
	return nil
}

func (s *Service) SetStatus(ctx context.Context, caller auth.Identity, id string, status model.TutorStatus) (model.Tutor, error) {
	if err := policy.Authorize(policy.ModerateProfile, caller.Role, policy.Any); err != nil {
		return model.Tutor{}, err
	}
	t, err := s.store.SetTutorStatus(ctx, id, status)
	if err != nil {
		return model.Tutor{}, lookupErr(err, "Tutor not found")
	}
	s.logger.Info("tutor moderated", "tutor_id", id, "status", status)
	return t, nil
}

func (s *Service) owned(ctx context.Context, caller auth.Identity, id string, op policy.Operation) (model.Tutor, error) {
	t, err := s.store.GetTutor(ctx, id)
	if err != nil {
		return model.Tutor{}, lookupErr(err, "Tutor not found")
	}
	rel := policy.Any
	if t.UserID == caller.ID {
		rel |= policy.Owner
	}
	if err := policy.Authorize(op, caller.Role, rel); err != nil {
		return model.Tutor{}, err
	}
	return t, nil
}

// maxSlotMinutes is one day; no window can hold a longer slot.
const maxSlotMinutes = 24 * 60

type SlotQuery struct {
	Date     string
	Duration int
	Step     int
}

type Slot struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Slots lists bookable start times for date inside the first window that
// covers its weekday.
func (s *Service) Slots(ctx context.Context, id string, q SlotQuery) ([]Slot, error) {
	if _, err := timeslot.ParseDate(q.Date); err != nil {
		return nil, apperr.Validation("date must be in YYYY-MM-DD format")
	}
	if q.Duration <= 0 || q.Step <= 0 {
		return nil, apperr.Validation("duration and step must be positive")
	}
	if q.Duration > maxSlotMinutes || q.Step > maxSlotMinutes {
		return nil, apperr.Validation("duration and step must be at most 1440 minutes")
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if timeslot.IsPast(q.Date, now) {
		return []Slot{}, nil
	}
	weekday, _ := timeslot.WeekdayName(q.Date)
	window, ok := availability.Match(t.Availability, weekday)
	if !ok {
		return []Slot{}, nil
	}
	bounds, err := timeslot.ParseRange(window.From, window.To)
	if err != nil {
		return []Slot{}, nil
	}
	existing, err := s.store.FindBookings(ctx, storage.BookingFilter{TutorID: t.ID, Date: q.Date, ExcludeCancelled: true})
	if err != nil {
		return nil, apperr.Store("Failed to fetch slots", err)
	}
	busy := make([]timeslot.Range, 0, len(existing))
	for _, b := range existing {
		busy = append(busy, timeslot.Range{From: b.FromMinute, To: b.ToMinute})
	}
	notBefore := 0
	if q.Date == timeslot.Today(now) {
		u := now.UTC()
		notBefore = u.Hour()*60 + u.Minute()
	}
	out := []Slot{}
	for _, r := range availability.FreeSlots(bounds, q.Duration, q.Step, notBefore, busy) {
		out = append(out, Slot{From: timeslot.FormatMinutes(r.From), To: timeslot.FormatMinutes(r.To)})
	}
	return out, nil
}

func lookupErr(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Store("Internal server error", err)
}
