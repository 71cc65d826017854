package userauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CipherPhantom/userauth/credential"
)

// BasicAuth authenticates requests carrying an HTTP Basic Authorization
// header against a UserStore.
type BasicAuth struct {
	Auth
	users UserStore
	env   env
}

var _ Strategy = (*BasicAuth)(nil)

// NewBasicAuth returns a BasicAuth over users.
func NewBasicAuth(users UserStore, opts ...Option) *BasicAuth {
	return &BasicAuth{users: users, env: newEnv(opts)}
}

// CurrentUser decodes the Basic header and returns the first candidate
// whose password verifies.
func (b *BasicAuth) CurrentUser(ctx context.Context, r Request) (User, bool) {
	start := time.Now()
	defer func() { b.env.metrics.Observe(MetricResolveLatency, time.Since(start)) }()

	user, err := b.resolve(ctx, r)
	if err != nil {
		b.env.metrics.Inc(MetricBasicAuthFailure)
		if errors.Is(err, ErrStoreFailure) {
			b.env.metrics.Inc(MetricStoreFailure)
		}
		b.env.logger.DebugContext(ctx, "basic auth rejected", "reason", failureReason(err))
		b.env.emitAudit(ctx, AuditEvent{
			Type:     AuditBasicAuthFailed,
			Strategy: AuthTypeBasic,
			Reason:   failureReason(err),
		})
		return nil, false
	}

	b.env.metrics.Inc(MetricBasicAuthSuccess)
	return user, true
}

// UserFromCredentials looks up username and returns the first candidate
// accepting password.
func (b *BasicAuth) UserFromCredentials(ctx context.Context, username, password string) (User, error) {
	if b.users == nil {
		return nil, fmt.Errorf("%w: no user store", ErrStoreFailure)
	}

	candidates, err := b.users.FindByCredentials(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if len(candidates) == 0 {
		return nil, ErrUserNotFound
	}
	for _, candidate := range candidates {
		if candidate != nil && candidate.VerifyPassword(password) {
			return candidate, nil
		}
	}
	return nil, ErrUnauthenticated
}

func (b *BasicAuth) resolve(ctx context.Context, r Request) (User, error) {
	header, ok := b.ExtractToken(r)
	if !ok {
		return nil, ErrUnauthenticated
	}

	encoded, ok := credential.DecodeBasicHeader(header, true)
	if !ok {
		return nil, fmt.Errorf("%w: missing Basic prefix", ErrMalformedCredentials)
	}
	decoded, ok := credential.DecodeBase64(encoded)
	if !ok {
		return nil, fmt.Errorf("%w: bad base64", ErrMalformedCredentials)
	}
	creds, ok := credential.SplitCredentials(decoded)
	if !ok {
		return nil, fmt.Errorf("%w: missing separator", ErrMalformedCredentials)
	}

	return b.UserFromCredentials(ctx, creds.Username, creds.Password)
}
