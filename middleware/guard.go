package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/CipherPhantom/userauth"
)

// Option configures a guard.
type Option func(*guard)

// WithLogger sets the logger used for rejection warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(g *guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics counts rejections in m.
func WithMetrics(m *userauth.Metrics) Option {
	return func(g *guard) {
		g.metrics = m
	}
}

type guard struct {
	strategy userauth.Strategy
	excluded []string
	logger   *slog.Logger
	metrics  *userauth.Metrics
}

// Guard returns middleware that enforces strategy on every path that
// strategy.RequiresAuth reports as protected. A nil strategy rejects every
// protected request with 401.
func Guard(strategy userauth.Strategy, excludedPaths []string, opts ...Option) func(http.Handler) http.Handler {
	g := &guard{
		strategy: strategy,
		excluded: append([]string(nil), excludedPaths...),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.strategy == nil {
				if userauth.RequiresAuth(r.URL.Path, g.excluded) {
					g.reject(w, r, http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if !g.strategy.RequiresAuth(r.URL.Path, g.excluded) {
				next.ServeHTTP(w, r)
				return
			}

			req := userauth.FromHTTP(r)
			if _, ok := g.strategy.ExtractToken(req); !ok {
				g.reject(w, r, http.StatusUnauthorized)
				return
			}

			user, ok := g.strategy.CurrentUser(r.Context(), req)
			if !ok {
				g.reject(w, r, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(userauth.WithUser(r.Context(), user)))
		})
	}
}

// ForEngine guards with the engine's strategy, exclusions, logger and
// metrics.
func ForEngine(engine *userauth.Engine) func(http.Handler) http.Handler {
	return Guard(engine.Strategy(), engine.ExcludedPaths(),
		WithLogger(engine.Logger()), WithMetrics(engine.Metrics()))
}

// RequireUser guards every path regardless of exclusions.
func RequireUser(strategy userauth.Strategy, opts ...Option) func(http.Handler) http.Handler {
	return Guard(strategy, nil, opts...)
}

func (g *guard) reject(w http.ResponseWriter, r *http.Request, status int) {
	if status == http.StatusUnauthorized {
		g.metrics.Inc(userauth.MetricGuardUnauthorized)
	} else {
		g.metrics.Inc(userauth.MetricGuardForbidden)
	}
	g.logger.WarnContext(r.Context(), "request rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
	)
	WriteError(w, status)
}

// WriteError writes the fixed JSON body for a 401 or 403, or the status text
// for anything else.
func WriteError(w http.ResponseWriter, status int) {
	msg := http.StatusText(status)
	switch status {
	case http.StatusUnauthorized:
		msg = "Unauthorized"
	case http.StatusForbidden:
		msg = "Forbidden"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
