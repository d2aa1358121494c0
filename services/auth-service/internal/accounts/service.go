// Package accounts registers users, issues bearer tokens and lets admins
// manage accounts.
package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/libs/events"
	"github.com/md-rashed-zaman/tutorbook/libs/outbox"
	"github.com/md-rashed-zaman/tutorbook/libs/policy"
	"github.com/md-rashed-zaman/tutorbook/services/auth-service/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgUserExists   = "User already exists"
	msgBadLogin     = "Invalid email or password"
	msgUserNotFound = "User not found"
)

type Config struct {
	Secret             string
	TokenTTL           time.Duration
	AllowAdminRegister bool
}

type Service struct {
	store  storage.Store
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
	cost   int
}

func NewService(store storage.Store, cfg Config, logger *slog.Logger) *Service {
	return &Service{store: store, cfg: cfg, logger: logger, now: time.Now, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost, for tests.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

type RegisterInput struct {
	Name     string    `json:"name" validate:"required"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required"`
	Role     auth.Role `json:"role" validate:"required,oneof=student tutor admin"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	Token string       `json:"token"`
	User  storage.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (storage.User, error) {
	if !in.Role.Valid() {
		return storage.User{}, apperr.Validation("role must be one of: student tutor admin")
	}
	if in.Role == auth.RoleAdmin && !s.cfg.AllowAdminRegister {
		return storage.User{}, apperr.Forbidden("Admin registration is disabled")
	}
	return s.create(ctx, strings.TrimSpace(in.Name), normalizeEmail(in.Email), in.Password, in.Role)
}

func (s *Service) create(ctx context.Context, name, email, password string, role auth.Role) (storage.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return storage.User{}, apperr.Store("Registration failed", err)
	}
	user := storage.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		if err := tx.Create(ctx, &user); err != nil {
			return err
		}
		return appendEvent(ctx, tx, events.UserRegistered, user)
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return storage.User{}, apperr.Validation(msgUserExists)
	}
	if err != nil {
		return storage.User{}, apperr.Store("Registration failed", err)
	}
	return user, nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	user, err := s.store.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, apperr.Validation(msgBadLogin)
	}
	if err != nil {
		return Session{}, apperr.Store("Internal server error", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return Session{}, apperr.Validation(msgBadLogin)
	}
	token, err := auth.SignHS256(auth.Identity{ID: user.ID, Role: user.Role}, s.cfg.Secret, s.cfg.TokenTTL, s.now())
	if err != nil {
		return Session{}, apperr.Store("Login failed", err)
	}
	return Session{Token: token, User: user}, nil
}

func (s *Service) Me(ctx context.Context, caller auth.Identity) (storage.User, error) {
	user, err := s.store.GetByID(ctx, caller.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.User{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return storage.User{}, apperr.Store("Internal server error", err)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, caller auth.Identity) ([]storage.User, error) {
	if err := policy.Authorize(policy.ListUsers, caller.Role, policy.Any); err != nil {
		return nil, err
	}
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Store("Failed to fetch users", err)
	}
	return users, nil
}

// Delete removes an account together with everything that references it.
// Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id string) error {
	if err := policy.Authorize(policy.DeleteUser, caller.Role, policy.Any); err != nil {
		return err
	}
	if id == caller.ID {
		return apperr.Validation("You cannot delete your own account")
	}
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		user, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(ctx, id); err != nil {
			return err
		}
		return appendEvent(ctx, tx, events.UserDeleted, user)
	})
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return apperr.Store("Failed to delete user", err)
	}
	s.logger.Info("user deleted", "user_id", id, "by", caller.ID)
	return nil
}

// EnsureAdmin creates the bootstrap admin account unless the email is taken.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	_, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, apperr.Store("Internal server error", err)
	}
	if _, err := s.create(ctx, name, email, password, auth.RoleAdmin); err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			// lost a race with another instance
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func appendEvent(ctx context.Context, tx storage.Store, eventType string, u storage.User) error {
	evt, err := outbox.NewEvent("user", u.ID, eventType, events.User{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
	})
	if err != nil {
		return err
	}
	return tx.AppendEvent(ctx, evt)
}
