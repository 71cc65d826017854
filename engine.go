package userauth

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/CipherPhantom/userauth/internal/audit"
)

// Engine is the configured authentication runtime: the selected Strategy,
// the optional account service and the shared metrics and audit plumbing.
//
// Engine is immutable after Build and safe for concurrent use.
type Engine struct {
	config         Config
	strategy       Strategy
	accounts       *Accounts
	metrics        *Metrics
	audit          *audit.Dispatcher
	logger         *slog.Logger
	sessionBackend string
	closers        []func() error
}

// Strategy returns the strategy selected by AUTH_TYPE.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Sessions returns the strategy as a SessionStrategy when it issues
// sessions.
func (e *Engine) Sessions() (SessionStrategy, bool) {
	s, ok := e.strategy.(SessionStrategy)
	return s, ok
}

// Accounts returns the account service, or nil when no AccountStore was
// given to the Builder.
func (e *Engine) Accounts() *Accounts {
	return e.accounts
}

// ExcludedPaths returns a copy of the configured public paths.
func (e *Engine) ExcludedPaths() []string {
	return slices.Clone(e.config.Auth.ExcludedPaths)
}

// RequiresAuth applies the strategy's rule to the configured exclusions.
func (e *Engine) RequiresAuth(path string) bool {
	return e.strategy.RequiresAuth(path, e.config.Auth.ExcludedPaths)
}

// CurrentUser resolves r with the selected strategy.
func (e *Engine) CurrentUser(ctx context.Context, r Request) (User, bool) {
	return e.strategy.CurrentUser(ctx, r)
}

func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped returns how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() Config {
	cfg := e.config
	cfg.Auth.ExcludedPaths = slices.Clone(cfg.Auth.ExcludedPaths)
	return cfg
}

// Close releases backends opened by Build, most recent first.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
