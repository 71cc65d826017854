package userauth

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Strategy is one authentication scheme.
type Strategy interface {
	// RequiresAuth reports whether path must be authenticated given the
	// excluded path patterns.
	RequiresAuth(path string, excludedPaths []string) bool
	// ExtractToken returns the raw credential carried by r.
	ExtractToken(r Request) (string, bool)
	// CurrentUser resolves r to a user. Every internal failure, including
	// store errors, yields (nil, false).
	CurrentUser(ctx context.Context, r Request) (User, bool)
}

// SessionStrategy is a Strategy that issues server-side sessions carried in
// a cookie.
type SessionStrategy interface {
	Strategy
	CreateSession(ctx context.Context, userID string) (string, bool)
	UserIDForSessionID(ctx context.Context, sessionID string) (string, bool)
	DestroySession(ctx context.Context, r Request) bool
	CookieName() string
}

// RequiresAuth implements the shared exclusion rule. It returns true for an
// empty path or an empty exclusion list. Otherwise path is given a trailing
// "/" and compared first for exact membership, then against entries ending
// in "*" by prefix.
func RequiresAuth(path string, excludedPaths []string) bool {
	if path == "" || len(excludedPaths) == 0 {
		return true
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	for _, excluded := range excludedPaths {
		if excluded == path {
			return false
		}
	}
	for _, excluded := range excludedPaths {
		if prefix, ok := strings.CutSuffix(excluded, "*"); ok && strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// Option configures a strategy.
type Option func(*env)

// WithLogger sets the logger used for rejection diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *env) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records strategy outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(e *env) {
		e.metrics = m
	}
}

// WithAuditSink emits session and failure events to sink.
func WithAuditSink(sink AuditSink) Option {
	return func(e *env) {
		e.audit = sink
	}
}

// WithClock overrides time.Now for session timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(e *env) {
		if now != nil {
			e.now = now
		}
	}
}

// env carries the ambient collaborators every strategy shares.
type env struct {
	logger  *slog.Logger
	metrics *Metrics
	audit   AuditSink
	now     func() time.Time
}

func newEnv(opts []Option) env {
	e := env{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&e)
		}
	}
	return e
}

// Auth is the base strategy. It applies the exclusion rule, reads the
// Authorization header and never resolves a user. The concrete strategies
// embed it.
type Auth struct{}

// AuthorizationHeader is the header consulted by Auth.ExtractToken.
const AuthorizationHeader = "Authorization"

func (Auth) RequiresAuth(path string, excludedPaths []string) bool {
	return RequiresAuth(path, excludedPaths)
}

func (Auth) ExtractToken(r Request) (string, bool) {
	if r == nil {
		return "", false
	}
	return r.Header(AuthorizationHeader)
}

func (Auth) CurrentUser(context.Context, Request) (User, bool) {
	return nil, false
}

var _ Strategy = Auth{}
