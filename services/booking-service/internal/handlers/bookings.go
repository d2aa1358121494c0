package handlers

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/libs/httpx"
	"github.com/md-rashed-zaman/tutorbook/libs/policy"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/export"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
)

type statusRequest struct {
	Status model.BookingStatus `json:"status"`
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	var in booking.CreateInput
	if !h.bind(w, r, policy.CreateBooking, &in) {
		return
	}
	b, err := h.bookings.Create(r.Context(), caller(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.bookings.ListAll(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) myBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.bookings.ListMine(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) updateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.bind(w, r, policy.UpdateBookingStatus, &req) {
		return
	}
	b, err := h.bookings.UpdateStatus(r.Context(), caller(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Booking " + string(b.Status),
		"booking": b,
	})
}

func (h *Handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	if _, err := h.bookings.Cancel(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Booking canceled")
}

func (h *Handler) exportBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.bookings.Export(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, list); err != nil {
		h.fail(w, r, apperr.Store("Failed to export bookings", err))
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
