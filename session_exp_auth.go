package userauth

import (
	"context"
	"fmt"
	"time"

	"github.com/CipherPhantom/userauth/session"
)

// ExpiringSessionAuth layers a maximum session age over SessionAuth.
//
// Expiry is evaluated lazily: a record older than the duration stops
// resolving but stays in the store until it is destroyed.
type ExpiringSessionAuth struct {
	inner    *SessionAuth
	duration time.Duration
}

var _ SessionStrategy = (*ExpiringSessionAuth)(nil)

// NewExpiringSessionAuth builds an ExpiringSessionAuth. A duration <= 0
// disables expiry.
func NewExpiringSessionAuth(store *session.Store, users UserStore, cookieName string, duration time.Duration, opts ...Option) *ExpiringSessionAuth {
	inner := NewSessionAuth(store, users, cookieName, opts...)
	inner.kind = AuthTypeSessionExp
	return &ExpiringSessionAuth{inner: inner, duration: duration}
}

// Duration returns the configured maximum session age.
func (e *ExpiringSessionAuth) Duration() time.Duration {
	return e.duration
}

func (e *ExpiringSessionAuth) RequiresAuth(path string, excludedPaths []string) bool {
	return RequiresAuth(path, excludedPaths)
}

func (e *ExpiringSessionAuth) ExtractToken(r Request) (string, bool) {
	return e.inner.ExtractToken(r)
}

func (e *ExpiringSessionAuth) CookieName() string {
	return e.inner.CookieName()
}

// CreateSession issues a session stamped with the strategy clock.
func (e *ExpiringSessionAuth) CreateSession(ctx context.Context, userID string) (string, bool) {
	return e.inner.CreateSession(ctx, userID)
}

// UserIDForSessionID returns the owner of sessionID unless it has expired.
func (e *ExpiringSessionAuth) UserIDForSessionID(ctx context.Context, sessionID string) (string, bool) {
	userID, err := e.lookupUserID(ctx, sessionID)
	return userID, err == nil
}

func (e *ExpiringSessionAuth) CurrentUser(ctx context.Context, r Request) (User, bool) {
	return e.inner.resolveUser(ctx, r, e.lookupUserID)
}

// DestroySession deletes the cookie's session. An expired session is treated
// as unknown and is left in place.
func (e *ExpiringSessionAuth) DestroySession(ctx context.Context, r Request) bool {
	return e.inner.destroy(ctx, r, e.lookupUserID)
}

func (e *ExpiringSessionAuth) lookupUserID(_ context.Context, sessionID string) (string, error) {
	rec, ok := e.inner.store.Lookup(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}
	if err := e.validate(rec); err != nil {
		return "", err
	}
	return rec.UserID, nil
}

// validate applies the duration rule to rec.
func (e *ExpiringSessionAuth) validate(rec session.Record) error {
	if e.duration <= 0 {
		return nil
	}
	if rec.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation time", ErrSessionExpired)
	}
	if rec.CreatedAt.Add(e.duration).Before(e.inner.env.now()) {
		return ErrSessionExpired
	}
	return nil
}

// newRecord generates a record with the strategy clock without storing it.
func (e *ExpiringSessionAuth) newRecord(userID string) (session.Record, error) {
	return session.NewRecord(userID, e.inner.env.now())
}
