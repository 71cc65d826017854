package userauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/CipherPhantom/userauth/session"
)

// DefaultSessionCookie is used when no cookie name is configured.
const DefaultSessionCookie = "_my_session_id"

// sessionLookup maps a session id to its owner or explains why it cannot.
type sessionLookup func(ctx context.Context, sessionID string) (string, error)

// SessionAuth maps an opaque session cookie to a user through an in-memory
// session.Store.
type SessionAuth struct {
	Auth
	store      *session.Store
	users      UserStore
	cookieName string
	kind       string // AUTH_TYPE of the outermost strategy, for audit events
	env        env
}

var _ SessionStrategy = (*SessionAuth)(nil)

// NewSessionAuth builds a SessionAuth. A nil store gets a fresh private one;
// an empty cookieName falls back to DefaultSessionCookie.
func NewSessionAuth(store *session.Store, users UserStore, cookieName string, opts ...Option) *SessionAuth {
	if store == nil {
		store = session.NewStore()
	}
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &SessionAuth{
		store:      store,
		users:      users,
		cookieName: cookieName,
		kind:       AuthTypeSession,
		env:        newEnv(opts),
	}
}

// CookieName returns the cookie that carries the session id.
func (s *SessionAuth) CookieName() string {
	return s.cookieName
}

// ExtractToken returns the session cookie value.
func (s *SessionAuth) ExtractToken(r Request) (string, bool) {
	if r == nil {
		return "", false
	}
	return r.Cookie(s.cookieName)
}

// CreateSession issues a new session id for userID. An empty userID yields
// none.
func (s *SessionAuth) CreateSession(ctx context.Context, userID string) (string, bool) {
	id, ok := s.store.CreateAt(userID, s.env.now())
	if !ok {
		s.env.metrics.Inc(MetricSessionCreateFailure)
		return "", false
	}
	s.sessionCreated(ctx, userID)
	return id, true
}

// UserIDForSessionID returns the owner of sessionID.
func (s *SessionAuth) UserIDForSessionID(ctx context.Context, sessionID string) (string, bool) {
	userID, err := s.lookupUserID(ctx, sessionID)
	return userID, err == nil
}

// CurrentUser resolves the session cookie to a user.
func (s *SessionAuth) CurrentUser(ctx context.Context, r Request) (User, bool) {
	return s.resolveUser(ctx, r, s.lookupUserID)
}

// DestroySession deletes the session named by the request cookie. It
// returns false when the cookie is absent or the session is unknown.
func (s *SessionAuth) DestroySession(ctx context.Context, r Request) bool {
	return s.destroy(ctx, r, s.lookupUserID)
}

func (s *SessionAuth) lookupUserID(_ context.Context, sessionID string) (string, error) {
	rec, ok := s.store.Lookup(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}
	return rec.UserID, nil
}

// resolveUser runs cookie -> lookup -> UserStore.GetByID and records the
// outcome. It backs CurrentUser for every session strategy.
func (s *SessionAuth) resolveUser(ctx context.Context, r Request, lookup sessionLookup) (User, bool) {
	user, err := s.userForRequest(ctx, r, lookup)
	if err != nil {
		s.env.metrics.Inc(MetricSessionRejected)
		switch {
		case errors.Is(err, ErrSessionExpired):
			s.env.metrics.Inc(MetricSessionExpired)
		case errors.Is(err, ErrStoreFailure):
			s.env.metrics.Inc(MetricStoreFailure)
			s.env.logger.WarnContext(ctx, "session lookup failed", "error", err)
		}
		s.env.logger.DebugContext(ctx, "session rejected", "reason", failureReason(err))
		return nil, false
	}
	s.env.metrics.Inc(MetricSessionResolved)
	return user, true
}

func (s *SessionAuth) userForRequest(ctx context.Context, r Request, lookup sessionLookup) (User, error) {
	sessionID, ok := s.ExtractToken(r)
	if !ok {
		return nil, ErrUnauthenticated
	}
	userID, err := lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.users == nil {
		return nil, fmt.Errorf("%w: no user store", ErrStoreFailure)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// destroy removes the in-memory record once lookup accepts it.
func (s *SessionAuth) destroy(ctx context.Context, r Request, lookup sessionLookup) bool {
	sessionID, ok := s.ExtractToken(r)
	if !ok {
		s.env.metrics.Inc(MetricSessionDestroyFailure)
		return false
	}
	userID, err := lookup(ctx, sessionID)
	if err != nil || !s.store.Delete(sessionID) {
		s.env.metrics.Inc(MetricSessionDestroyFailure)
		return false
	}
	s.sessionDestroyed(ctx, userID)
	return true
}

func (s *SessionAuth) sessionCreated(ctx context.Context, userID string) {
	s.env.metrics.Inc(MetricSessionCreated)
	s.env.emitAudit(ctx, AuditEvent{Type: AuditSessionCreated, Strategy: s.kind, UserID: userID, Success: true})
}

func (s *SessionAuth) sessionDestroyed(ctx context.Context, userID string) {
	s.env.metrics.Inc(MetricSessionDestroyed)
	s.env.emitAudit(ctx, AuditEvent{Type: AuditSessionDestroyed, Strategy: s.kind, UserID: userID, Success: true})
}
