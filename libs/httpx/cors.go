package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy defines the CORS headers to emit for matching origins.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultFrontendOrigin is the browser app allowed when nothing else is configured.
const DefaultFrontendOrigin = "http://localhost:3000"

// BrowserPolicy is the gateway's policy for the web app: JSON calls with a
// bearer token from the given origins.
func BrowserPolicy(origins []string) CORSPolicy {
	if len(normalizeList(origins)) == 0 {
		origins = []string{DefaultFrontendOrigin}
	}
	return CORSPolicy{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}
}

// WithCORS answers preflights and tags responses for allowed origins.
// An empty AllowedOrigins disables it.
func WithCORS(cfg CORSPolicy) Middleware {
	origins := normalizeList(cfg.AllowedOrigins)
	if len(origins) == 0 {
		return nil
	}
	static := corsHeaders(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allow, ok := matchOrigin(origin, origins, cfg.AllowCredentials)
			if origin == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allow)
			for k, v := range static {
				h.Set(k, v)
			}
			h.Add("Vary", "Origin")

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if preflight {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// corsHeaders are the per-policy headers that do not depend on the origin.
func corsHeaders(cfg CORSPolicy) map[string]string {
	out := map[string]string{}
	if cfg.AllowCredentials {
		out["Access-Control-Allow-Credentials"] = "true"
	}
	if m := normalizeList(cfg.AllowedMethods); len(m) > 0 {
		out["Access-Control-Allow-Methods"] = strings.Join(m, ", ")
	}
	if hs := normalizeList(cfg.AllowedHeaders); len(hs) > 0 {
		out["Access-Control-Allow-Headers"] = strings.Join(hs, ", ")
	}
	if secs := int(cfg.MaxAge / time.Second); secs > 0 {
		out["Access-Control-Max-Age"] = strconv.Itoa(secs)
	}
	return out
}

func normalizeList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// matchOrigin returns the Allow-Origin value for origin. A wildcard entry
// echoes the origin back when credentials are allowed, since browsers
// reject "*" in that case.
func matchOrigin(origin string, allowed []string, allowCredentials bool) (string, bool) {
	for _, candidate := range allowed {
		switch {
		case candidate == "*" && allowCredentials:
			return origin, true
		case candidate == "*":
			return "*", true
		case strings.EqualFold(candidate, origin):
			return origin, true
		}
	}
	return "", false
}
