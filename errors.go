package userauth

import "errors"

var (
	// ErrUnauthenticated is the single outcome the HTTP layer reports when a
	// protected path carries no usable credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is reported when a token was present but resolved to no user.
	ErrForbidden = errors.New("forbidden")
	// ErrMalformedCredentials covers a bad header prefix, bad base64, invalid
	// UTF-8 or a missing colon separator.
	ErrMalformedCredentials = errors.New("malformed credentials")
	// ErrUserNotFound is returned by user stores for unknown ids and emails.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound is returned when a session id has no record.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a record is older than the configured duration.
	ErrSessionExpired = errors.New("session expired")
	// ErrStoreFailure wraps any failure of a backing store.
	ErrStoreFailure = errors.New("store failure")
	// ErrAccountExists is returned when registering an email that is taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrResetTokenInvalid is returned for unknown or already used reset tokens.
	ErrResetTokenInvalid = errors.New("reset token invalid")
	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid config")
)

// failureReason returns a stable label for err used in logs and audit
// events. It never reaches the caller of a Strategy.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedCredentials):
		return "malformed_credentials"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrStoreFailure):
		return "store_failure"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
