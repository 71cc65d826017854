package userauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Accounts implements registration, login checks and password resets over
// an AccountStore.
type Accounts struct {
	store  AccountStore
	hasher PasswordHasher
	env    env
}

// NewAccounts returns an Accounts service.
func NewAccounts(store AccountStore, hasher PasswordHasher, opts ...Option) *Accounts {
	return &Accounts{store: store, hasher: hasher, env: newEnv(opts)}
}

// Register creates an account for email. It returns ErrAccountExists when
// email is already registered.
func (a *Accounts) Register(ctx context.Context, email, password string) (User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrMalformedCredentials)
	}

	existing, err := a.store.FindByCredentials(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if len(existing) > 0 {
		a.env.metrics.Inc(MetricAccountDuplicate)
		return nil, ErrAccountExists
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := a.store.CreateAccount(ctx, email, hash)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			a.env.metrics.Inc(MetricAccountDuplicate)
		}
		return nil, err
	}

	a.env.metrics.Inc(MetricAccountCreated)
	a.env.emitAudit(ctx, AuditEvent{Type: AuditAccountCreated, UserID: user.UserID(), Success: true})
	return user, nil
}

// Authenticate returns the account for email when password matches.
// It returns ErrUserNotFound when no account has that email and
// ErrUnauthenticated on a wrong password.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (User, error) {
	candidates, err := a.store.FindByCredentials(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if len(candidates) == 0 {
		a.env.metrics.Inc(MetricLoginFailure)
		return nil, ErrUserNotFound
	}
	for _, candidate := range candidates {
		if candidate != nil && candidate.VerifyPassword(password) {
			a.env.metrics.Inc(MetricLoginSuccess)
			return candidate, nil
		}
	}
	a.env.metrics.Inc(MetricLoginFailure)
	return nil, ErrUnauthenticated
}

// ValidLogin reports whether email and password identify an account.
func (a *Accounts) ValidLogin(ctx context.Context, email, password string) bool {
	_, err := a.Authenticate(ctx, email, password)
	return err == nil
}

// ResetPasswordToken stores and returns a fresh reset token for email.
func (a *Accounts) ResetPasswordToken(ctx context.Context, email string) (string, error) {
	candidates, err := a.store.FindByCredentials(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if len(candidates) == 0 {
		return "", ErrUserNotFound
	}

	token := uuid.NewString()
	userID := candidates[0].UserID()
	if err := a.store.SetResetToken(ctx, userID, token); err != nil {
		return "", err
	}

	a.env.metrics.Inc(MetricPasswordResetRequest)
	a.env.emitAudit(ctx, AuditEvent{Type: AuditPasswordReset, UserID: userID, Success: true, Reason: "requested"})
	return token, nil
}

// UpdatePassword replaces the password of the account holding token and
// invalidates the token.
func (a *Accounts) UpdatePassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		a.env.metrics.Inc(MetricPasswordResetFailure)
		return ErrResetTokenInvalid
	}

	user, err := a.store.FindByResetToken(ctx, token)
	if err != nil {
		a.env.metrics.Inc(MetricPasswordResetFailure)
		return err
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		a.env.metrics.Inc(MetricPasswordResetFailure)
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := a.store.UpdatePasswordHash(ctx, user.UserID(), hash); err != nil {
		a.env.metrics.Inc(MetricPasswordResetFailure)
		return err
	}

	a.env.metrics.Inc(MetricPasswordResetConfirm)
	a.env.emitAudit(ctx, AuditEvent{Type: AuditPasswordReset, UserID: user.UserID(), Success: true, Reason: "confirmed"})
	return nil
}
