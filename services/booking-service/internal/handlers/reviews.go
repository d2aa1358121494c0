package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/md-rashed-zaman/tutorbook/libs/httpx"
	"github.com/md-rashed-zaman/tutorbook/libs/policy"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/reviews"
)

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	var in reviews.CreateInput
	if !h.bind(w, r, policy.CreateReview, &in) {
		return
	}
	rev, err := h.reviews.Create(r.Context(), caller(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rev)
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	list, err := h.reviews.ListForTutor(r.Context(), chi.URLParam(r, "tutorId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, nonNil(list))
}
