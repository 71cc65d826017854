package userstore

import (
	"strings"
	"time"

	"github.com/CipherPhantom/userauth/password"
)

// Account is a stored user.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	ResetToken   string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserID implements userauth.User.
func (a *Account) UserID() string {
	return a.ID
}

// VerifyPassword checks candidate against the stored Argon2id hash. Any
// malformed hash is a mismatch.
func (a *Account) VerifyPassword(candidate string) bool {
	if a == nil || a.PasswordHash == "" {
		return false
	}
	ok, err := password.Verify(candidate, a.PasswordHash)
	return err == nil && ok
}

// DisplayName returns "first last", falling back to whichever name is set
// and then to the email.
func (a *Account) DisplayName() string {
	first := strings.TrimSpace(a.FirstName)
	last := strings.TrimSpace(a.LastName)
	switch {
	case first == "" && last == "":
		return a.Email
	case last == "":
		return first
	case first == "":
		return last
	default:
		return first + " " + last
	}
}

func (a *Account) clone() *Account {
	c := *a
	return &c
}
