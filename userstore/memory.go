package userstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CipherPhantom/userauth"
)

// Memory is an in-process AccountStore. Emails are unique and matched exactly.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	now      func() time.Time
}

var _ userauth.AccountStore = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*Account),
		now:      time.Now,
	}
}

// Add inserts a fully formed account, generating an id when empty. It is
// meant for seeding and tests.
func (m *Memory) Add(acct Account) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTakenLocked(acct.Email) {
		return nil, userauth.ErrAccountExists
	}
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = m.now().UTC()
		acct.UpdatedAt = acct.CreatedAt
	}
	stored := acct.clone()
	m.accounts[stored.ID] = stored
	return stored.clone(), nil
}

// CreateAccount implements userauth.AccountStore.
func (m *Memory) CreateAccount(ctx context.Context, email, passwordHash string) (userauth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acct, err := m.Add(Account{Email: email, PasswordHash: passwordHash})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// FindByCredentials returns accounts whose email equals login.
func (m *Memory) FindByCredentials(ctx context.Context, login string) ([]userauth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]*Account, 0, 1)
	for _, acct := range m.accounts {
		if acct.Email == login {
			matches = append(matches, acct.clone())
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})

	users := make([]userauth.User, len(matches))
	for i, acct := range matches {
		users[i] = acct
	}
	return users, nil
}

// Count returns the number of accounts.
func (m *Memory) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts), nil
}

// GetByID implements userauth.UserStore.
func (m *Memory) GetByID(ctx context.Context, id string) (userauth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[id]
	if !ok {
		return nil, userauth.ErrUserNotFound
	}
	return acct.clone(), nil
}

// SetResetToken implements userauth.AccountStore.
func (m *Memory) SetResetToken(ctx context.Context, userID, token string) error {
	return m.update(ctx, userID, func(acct *Account) {
		acct.ResetToken = token
	})
}

// FindByResetToken implements userauth.AccountStore.
func (m *Memory) FindByResetToken(ctx context.Context, token string) (userauth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, userauth.ErrResetTokenInvalid
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, acct := range m.accounts {
		if acct.ResetToken == token {
			return acct.clone(), nil
		}
	}
	return nil, userauth.ErrResetTokenInvalid
}

// UpdatePasswordHash implements userauth.AccountStore.
func (m *Memory) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return m.update(ctx, userID, func(acct *Account) {
		acct.PasswordHash = hash
		acct.ResetToken = ""
	})
}

func (m *Memory) update(ctx context.Context, userID string, apply func(*Account)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[userID]
	if !ok {
		return userauth.ErrUserNotFound
	}
	apply(acct)
	acct.UpdatedAt = m.now().UTC()
	return nil
}

func (m *Memory) emailTakenLocked(email string) bool {
	for _, acct := range m.accounts {
		if acct.Email == email {
			return true
		}
	}
	return false
}
