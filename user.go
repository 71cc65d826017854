package userauth

import "context"

// User is an authenticated identity.
type User interface {
	UserID() string
	// VerifyPassword reports whether candidate matches the stored credential.
	// Implementations must compare in constant time.
	VerifyPassword(candidate string) bool
}

// UserStore resolves users for the strategies. Implementations return an
// empty slice, not an error, when no user matches a login.
type UserStore interface {
	FindByCredentials(ctx context.Context, emailOrUsername string) ([]User, error)
	// GetByID returns ErrUserNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (User, error)
}

// AccountStore extends UserStore with the writes used by [Accounts].
type AccountStore interface {
	UserStore

	// CreateAccount returns ErrAccountExists when email is taken.
	CreateAccount(ctx context.Context, email, passwordHash string) (User, error)
	// SetResetToken returns ErrUserNotFound for unknown ids.
	SetResetToken(ctx context.Context, userID, token string) error
	// FindByResetToken returns ErrResetTokenInvalid when no account holds token.
	FindByResetToken(ctx context.Context, token string) (User, error)
	// UpdatePasswordHash stores hash and clears any reset token.
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// PasswordHasher produces hashes that the store's User.VerifyPassword accepts.
type PasswordHasher interface {
	Hash(password string) (string, error)
}
