package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/libs/httpx"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/storage"
)

type Inbox interface {
	ListUnseen(ctx context.Context, userID string) ([]storage.Notification, error)
	MarkSeen(ctx context.Context, userID string, at time.Time) (int64, error)
}

type Handler struct {
	inbox  Inbox
	logger *slog.Logger
	secret string
	now    func() time.Time
}

func New(inbox Inbox, logger *slog.Logger, jwtSecret string) *Handler {
	return &Handler{inbox: inbox, logger: logger, secret: jwtSecret, now: time.Now}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(auth.Require(h.secret))
		r.Get("/my", h.listMine)
		r.Post("/my/seen", h.markSeen)
	})
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	items, err := h.inbox.ListUnseen(r.Context(), id.ID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, apperr.Store("Failed to fetch notifications", err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) markSeen(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	n, err := h.inbox.MarkSeen(r.Context(), id.ID, h.now().UTC())
	if err != nil {
		httpx.WriteError(w, r, h.logger, apperr.Store("Failed to update notifications", err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Notifications marked as seen",
		"updated": n,
	})
}
