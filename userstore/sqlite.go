package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/CipherPhantom/userauth"
)

const accountColumns = "id, email, password_hash, first_name, last_name, reset_token, created_at, updated_at"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name    TEXT,
	last_name     TEXT,
	reset_token   TEXT,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
) STRICT;

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_reset_token ON users(reset_token) WHERE reset_token IS NOT NULL;
`

// SQLite is an AccountStore backed by a SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ userauth.AccountStore = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path in WAL mode and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	store := NewSQLite(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLite wraps an open database. Call Migrate before first use.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

// Migrate creates the users table when missing.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrating users schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Count returns the number of accounts.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting users: %v", userauth.ErrStoreFailure, err)
	}
	return n, nil
}

// CreateAccount implements userauth.AccountStore.
func (s *SQLite) CreateAccount(ctx context.Context, email, passwordHash string) (userauth.User, error) {
	now := s.now().UTC().Truncate(time.Second)
	acct := &Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	stamp := now.Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+accountColumns+`) VALUES (?, ?, ?, NULL, NULL, NULL, ?, ?)`,
		acct.ID, acct.Email, acct.PasswordHash, stamp, stamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, userauth.ErrAccountExists
		}
		return nil, fmt.Errorf("%w: creating account: %v", userauth.ErrStoreFailure, err)
	}
	return acct, nil
}

// FindByCredentials returns the accounts registered with email login.
func (s *SQLite) FindByCredentials(ctx context.Context, login string) ([]userauth.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM users WHERE email = ? ORDER BY created_at ASC", login)
	if err != nil {
		return nil, fmt.Errorf("%w: querying accounts: %v", userauth.ErrStoreFailure, err)
	}
	defer rows.Close()

	users := []userauth.User{}
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating accounts: %v", userauth.ErrStoreFailure, err)
	}
	return users, nil
}

// GetByID implements userauth.UserStore.
func (s *SQLite) GetByID(ctx context.Context, id string) (userauth.User, error) {
	acct, err := scanAccount(s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// SetResetToken implements userauth.AccountStore.
func (s *SQLite) SetResetToken(ctx context.Context, userID, token string) error {
	return s.exec(ctx, "setting reset token",
		"UPDATE users SET reset_token = ?, updated_at = ? WHERE id = ?",
		nullString(token), s.stamp(), userID)
}

// FindByResetToken implements userauth.AccountStore.
func (s *SQLite) FindByResetToken(ctx context.Context, token string) (userauth.User, error) {
	if token == "" {
		return nil, userauth.ErrResetTokenInvalid
	}
	acct, err := scanAccount(s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM users WHERE reset_token = ?", token))
	if errors.Is(err, userauth.ErrUserNotFound) {
		return nil, userauth.ErrResetTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// UpdatePasswordHash implements userauth.AccountStore.
func (s *SQLite) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return s.exec(ctx, "updating password",
		"UPDATE users SET password_hash = ?, reset_token = NULL, updated_at = ? WHERE id = ?",
		hash, s.stamp(), userID)
}

func (s *SQLite) exec(ctx context.Context, what, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", userauth.ErrStoreFailure, what, err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return userauth.ErrUserNotFound
	}
	return nil
}

func (s *SQLite) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*Account, error) {
	var (
		acct                 Account
		first, last, token   sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &first, &last, &token, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userauth.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: scanning account: %v", userauth.ErrStoreFailure, err)
	}

	acct.FirstName = first.String
	acct.LastName = last.String
	acct.ResetToken = token.String
	acct.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	acct.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	return &acct, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueViolation reports SQLite UNIQUE constraint failures.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
