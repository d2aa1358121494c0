package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/libs/httpx"
	"github.com/md-rashed-zaman/tutorbook/services/auth-service/internal/accounts"
	"github.com/md-rashed-zaman/tutorbook/services/auth-service/internal/storage"
)

// Accounts is the account service the routes delegate to.
type Accounts interface {
	Register(ctx context.Context, in accounts.RegisterInput) (storage.User, error)
	Login(ctx context.Context, in accounts.LoginInput) (accounts.Session, error)
	Me(ctx context.Context, caller auth.Identity) (storage.User, error)
	List(ctx context.Context, caller auth.Identity) ([]storage.User, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
}

type AuthHandler struct {
	accounts Accounts
	logger   *slog.Logger
	secret   string
}

func NewAuthHandler(svc Accounts, logger *slog.Logger, jwtSecret string) *AuthHandler {
	return &AuthHandler{accounts: svc, logger: logger, secret: jwtSecret}
}

func (h *AuthHandler) Register(r chi.Router) {
	requireAuth := auth.Require(h.secret)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.With(requireAuth).Get("/me", h.me)
	})
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/users", h.listUsers)
		r.Delete("/users/{id}", h.deleteUser)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
	if err := httpx.Bind(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered",
		"user":    user,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in accounts.LoginInput
	if err := httpx.Bind(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Me(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *AuthHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "User, profile, and related bookings deleted")
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteError(w, r, h.logger, err)
}

func caller(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}
