package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/libs/httpx"
	"github.com/md-rashed-zaman/tutorbook/libs/policy"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/timeslot"
)

func init() {
	mustRegister("hhmm", func(fl validator.FieldLevel) bool {
		_, err := timeslot.ToMinutes(fl.Field().String())
		return err == nil
	})
	mustRegister("weekdays", func(fl validator.FieldLevel) bool {
		days := availability.Days(fl.Field().String())
		for _, d := range days {
			if !timeslot.IsWeekday(d) {
				return false
			}
		}
		return len(days) > 0
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := httpx.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

type Handler struct {
	bookings BookingService
	tutors   TutorService
	reviews  ReviewService
	logger   *slog.Logger
	secret   string
}

func New(bookings BookingService, tutors TutorService, reviews ReviewService, logger *slog.Logger, jwtSecret string) *Handler {
	return &Handler{bookings: bookings, tutors: tutors, reviews: reviews, logger: logger, secret: jwtSecret}
}

// Register mounts the tutor, booking and review routes on r.
func (h *Handler) Register(r chi.Router) {
	requireAuth := auth.Require(h.secret)

	r.Route("/api/tutors", func(r chi.Router) {
		r.Get("/", h.listTutors)
		r.Get("/search", h.searchTutors)
		r.With(requireAuth).Get("/my-profile", h.myProfile)
		r.With(requireAuth).Post("/", h.createTutor)
		r.Get("/{id}", h.getTutor)
		r.Get("/{id}/slots", h.tutorSlots)
		r.With(requireAuth).Put("/{id}", h.updateTutor)
		r.With(requireAuth).Delete("/{id}", h.deleteTutor)
		r.With(requireAuth).Put("/{id}/approve", h.moderate("approved"))
		r.With(requireAuth).Put("/{id}/reject", h.moderate("rejected"))
	})

	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.createBooking)
		r.Get("/", h.listBookings)
		r.Get("/my", h.myBookings)
		r.Get("/export", h.exportBookings)
		r.Put("/{id}/status", h.updateBookingStatus)
		r.Delete("/{id}", h.cancelBooking)
	})

	r.Route("/api/reviews", func(r chi.Router) {
		r.With(requireAuth).Post("/", h.createReview)
		r.Get("/{tutorId}", h.listReviews)
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteError(w, r, h.logger, err)
}

// bind decodes the body once the caller's role may perform op at all.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, op policy.Operation, dst any) bool {
	err := policy.RoleCan(op, caller(r).Role)
	if err == nil {
		err = httpx.Bind(r, dst)
	}
	if err != nil {
		h.fail(w, r, err)
		return false
	}
	return true
}

// caller is only used behind auth.Require, which guarantees an identity.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}
