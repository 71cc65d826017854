package userauth

import (
	"context"
	"fmt"
	"time"

	"github.com/CipherPhantom/userauth/session"
)

// PersistentSessionAuth keeps session records in a session.Repository
// instead of process memory, applying the same expiry rule as
// ExpiringSessionAuth to the persisted creation time.
//
// Repository calls are not retried. A failed call behaves like a missing
// record.
type PersistentSessionAuth struct {
	inner *ExpiringSessionAuth
	repo  session.Repository
}

var _ SessionStrategy = (*PersistentSessionAuth)(nil)

// NewPersistentSessionAuth builds a PersistentSessionAuth over repo.
func NewPersistentSessionAuth(repo session.Repository, users UserStore, cookieName string, duration time.Duration, opts ...Option) *PersistentSessionAuth {
	inner := NewExpiringSessionAuth(nil, users, cookieName, duration, opts...)
	inner.inner.kind = AuthTypeSessionDB
	return &PersistentSessionAuth{inner: inner, repo: repo}
}

// Duration returns the configured maximum session age.
func (p *PersistentSessionAuth) Duration() time.Duration {
	return p.inner.Duration()
}

func (p *PersistentSessionAuth) RequiresAuth(path string, excludedPaths []string) bool {
	return RequiresAuth(path, excludedPaths)
}

func (p *PersistentSessionAuth) ExtractToken(r Request) (string, bool) {
	return p.inner.ExtractToken(r)
}

func (p *PersistentSessionAuth) CookieName() string {
	return p.inner.CookieName()
}

// CreateSession generates a record and saves it. A failed save yields none.
func (p *PersistentSessionAuth) CreateSession(ctx context.Context, userID string) (string, bool) {
	base := p.inner.inner

	rec, err := p.inner.newRecord(userID)
	if err != nil {
		base.env.metrics.Inc(MetricSessionCreateFailure)
		return "", false
	}
	if err := p.repo.Save(ctx, rec); err != nil {
		base.env.metrics.Inc(MetricSessionCreateFailure)
		base.env.metrics.Inc(MetricStoreFailure)
		base.env.logger.WarnContext(ctx, "session save failed", "error", err)
		return "", false
	}

	base.sessionCreated(ctx, userID)
	return rec.SessionID, true
}

// UserIDForSessionID returns the owner of the persisted record unless it has
// expired.
func (p *PersistentSessionAuth) UserIDForSessionID(ctx context.Context, sessionID string) (string, bool) {
	userID, err := p.lookupUserID(ctx, sessionID)
	return userID, err == nil
}

func (p *PersistentSessionAuth) CurrentUser(ctx context.Context, r Request) (User, bool) {
	return p.inner.inner.resolveUser(ctx, r, p.lookupUserID)
}

// DestroySession removes every record matching the cookie's session id and
// its owner. It returns false when nothing matched or any call failed.
func (p *PersistentSessionAuth) DestroySession(ctx context.Context, r Request) bool {
	base := p.inner.inner

	removed, err := p.destroy(ctx, r)
	if err != nil {
		base.env.metrics.Inc(MetricSessionDestroyFailure)
		base.env.logger.DebugContext(ctx, "session destroy rejected", "reason", failureReason(err))
		return false
	}
	base.sessionDestroyed(ctx, removed)
	return true
}

func (p *PersistentSessionAuth) destroy(ctx context.Context, r Request) (string, error) {
	sessionID, ok := p.ExtractToken(r)
	if !ok {
		return "", ErrUnauthenticated
	}
	userID, err := p.lookupUserID(ctx, sessionID)
	if err != nil {
		return "", err
	}

	matches, err := p.repo.Search(ctx, session.Filter{SessionID: sessionID, UserID: userID})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if len(matches) == 0 {
		return "", ErrSessionNotFound
	}
	for _, rec := range matches {
		if err := p.repo.Remove(ctx, rec); err != nil {
			return "", fmt.Errorf("%w: %v", ErrStoreFailure, err)
		}
	}
	return userID, nil
}

func (p *PersistentSessionAuth) lookupUserID(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrSessionNotFound
	}
	matches, err := p.repo.Search(ctx, session.Filter{SessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if len(matches) == 0 {
		return "", ErrSessionNotFound
	}

	rec := matches[0]
	if err := p.inner.validate(rec); err != nil {
		return "", err
	}
	return rec.UserID, nil
}
