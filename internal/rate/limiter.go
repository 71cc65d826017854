package rate

import (
	"context"
	"strings"
	"time"
)

// Config tunes a Limiter.
type Config struct {
	// MaxAttempts is the number of failures tolerated per window.
	MaxAttempts int
	Window      time.Duration
	// PerIP adds a second budget keyed by client address.
	PerIP bool
	// Prefix namespaces counter keys.
	Prefix string
}

// Limiter tracks failed logins per identifier and, optionally, per IP.
// A nil *Limiter allows everything.
type Limiter struct {
	counter Counter
	config  Config
}

// New creates a Limiter over counter.
func New(counter Counter, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	return &Limiter{counter: counter, config: cfg}
}

// Check returns ErrRateLimited when login or ip has used up its budget.
// It does not count as an attempt.
func (l *Limiter) Check(ctx context.Context, login, ip string) error {
	if l == nil {
		return nil
	}
	for _, key := range l.keys(login, ip) {
		count, err := l.counter.Get(ctx, key)
		if err != nil {
			return err
		}
		if count >= int64(l.config.MaxAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// Fail records one failed attempt. It returns ErrRateLimited when this
// attempt exhausted the budget.
func (l *Limiter) Fail(ctx context.Context, login, ip string) error {
	if l == nil {
		return nil
	}
	limited := false
	for _, key := range l.keys(login, ip) {
		count, err := l.counter.Incr(ctx, key, l.config.Window)
		if err != nil {
			return err
		}
		if count >= int64(l.config.MaxAttempts) {
			limited = true
		}
	}
	if limited {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the counters after a successful login.
func (l *Limiter) Reset(ctx context.Context, login, ip string) error {
	if l == nil {
		return nil
	}
	return l.counter.Del(ctx, l.keys(login, ip)...)
}

// Attempts returns the failures recorded for login in the current window.
func (l *Limiter) Attempts(ctx context.Context, login string) (int, error) {
	if l == nil {
		return 0, nil
	}
	count, err := l.counter.Get(ctx, l.loginKey(login))
	return int(count), err
}

func (l *Limiter) keys(login, ip string) []string {
	keys := []string{l.loginKey(login)}
	if l.config.PerIP && ip != "" {
		keys = append(keys, l.config.Prefix+":ip:"+ip)
	}
	return keys
}

// Logins are case-insensitive so "A@b.com" and "a@b.com" share a budget.
func (l *Limiter) loginKey(login string) string {
	return l.config.Prefix + ":login:" + strings.ToLower(strings.TrimSpace(login))
}
