package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/libs/httpx"
)

type upstreams struct {
	Auth         string `env:"AUTH_URL" env-default:"http://auth-service:8081"`
	Booking      string `env:"BOOKING_URL" env-default:"http://booking-service:8083"`
	Notification string `env:"NOTIFICATION_URL" env-default:"http://notification-service:8085"`
}

// Identity headers no upstream trusts. They are dropped so a client
// cannot smuggle them past the gateway.
const (
	headerUserID = "X-User-Id"
	headerRole   = "X-Role"
)

func registerRoutes(r chi.Router, up upstreams, jwtSecret string, transport http.RoundTripper, logger *slog.Logger) error {
	authProxy, err := newProxy(up.Auth, transport, logger)
	if err != nil {
		return err
	}
	bookingProxy, err := newProxy(up.Booking, transport, logger)
	if err != nil {
		return err
	}
	notificationProxy, err := newProxy(up.Notification, transport, logger)
	if err != nil {
		return err
	}

	registerProxy(r, "/api/auth", authProxy)
	registerProxy(r, "/api/admin", requireAuth(requireRole(authProxy, auth.RoleAdmin), jwtSecret))
	registerProxy(r, "/api/tutors", bookingProxy)
	registerProxy(r, "/api/reviews", bookingProxy)
	registerProxy(r, "/api/bookings", requireAuth(bookingProxy, jwtSecret))
	registerProxy(r, "/api/notifications", requireAuth(notificationProxy, jwtSecret))
	return nil
}

func newProxy(raw string, transport http.RoundTripper, logger *slog.Logger) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse upstream %q: %w", raw, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream %q must be an absolute url", raw)
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = transport
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream request failed",
			"upstream", target.Host,
			"path", r.URL.Path,
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"err", err,
		)
		httpx.WriteMessage(w, http.StatusBadGateway, "Service unavailable")
	}
	return proxy, nil
}

func registerProxy(mux chi.Router, prefix string, handler http.Handler) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(headerUserID)
		r.Header.Del(headerRole)
		handler.ServeHTTP(w, r)
	})
	mux.Handle(prefix, h)
	mux.Handle(prefix+"/*", h)
}

// requireAuth rejects requests without a valid bearer token. The token
// itself is forwarded; upstreams verify it again.
func requireAuth(next http.Handler, jwtSecret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r)
		if !ok {
			httpx.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		id, err := auth.ParseAndVerifyHS256(token, jwtSecret)
		if err != nil {
			httpx.WriteMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func requireRole(next http.Handler, roles ...auth.Role) http.Handler {
	allowed := map[auth.Role]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			httpx.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if _, ok := allowed[id.Role]; !ok {
			httpx.WriteMessage(w, http.StatusForbidden, "Access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}
