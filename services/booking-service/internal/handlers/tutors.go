package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/libs/httpx"
	"github.com/md-rashed-zaman/tutorbook/libs/policy"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/search"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/tutors"
)

func (h *Handler) createTutor(w http.ResponseWriter, r *http.Request) {
	var in tutors.CreateInput
	if !h.bind(w, r, policy.CreateProfile, &in) {
		return
	}
	t, err := h.tutors.Create(r.Context(), caller(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) listTutors(w http.ResponseWriter, r *http.Request) {
	list, err := h.tutors.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) searchTutors(w http.ResponseWriter, r *http.Request) {
	q, err := search.Parse(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.tutors.Search(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) myProfile(w http.ResponseWriter, r *http.Request) {
	t, err := h.tutors.Mine(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) getTutor(w http.ResponseWriter, r *http.Request) {
	t, err := h.tutors.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) updateTutor(w http.ResponseWriter, r *http.Request) {
	var in tutors.UpdateInput
	if !h.bind(w, r, policy.UpdateProfile, &in) {
		return
	}
	t, err := h.tutors.Update(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) deleteTutor(w http.ResponseWriter, r *http.Request) {
	if err := h.tutors.Delete(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Tutor deleted")
}

func (h *Handler) moderate(status model.TutorStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := h.tutors.SetStatus(r.Context(), caller(r), chi.URLParam(r, "id"), status)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"message": "Tutor " + string(status),
			"tutor":   t,
		})
	}
}

func (h *Handler) tutorSlots(w http.ResponseWriter, r *http.Request) {
	q := tutors.SlotQuery{Date: r.URL.Query().Get("date"), Duration: 60, Step: 30}
	for name, dst := range map[string]*int{"duration": &q.Duration, "step": &q.Step} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			h.fail(w, r, apperr.Validation(name+" must be a positive number of minutes"))
			return
		}
		*dst = v
	}
	slots, err := h.tutors.Slots(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, slots)
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
