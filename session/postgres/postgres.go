// Package postgres stores session records in a PostgreSQL user_sessions table
// using a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CipherPhantom/userauth/session"
)

// Repository is a PostgreSQL-backed [session.Repository].
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ session.Repository = (*Repository)(nil)

// New opens a pool for cfg, verifies connectivity and optionally migrates.
// A nil logger falls back to slog.Default().
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Repository, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	r := &Repository{pool: pool, logger: logger}
	if cfg.MigrateOnStart {
		if err := r.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}
	return r, nil
}

// Search returns records matching every non-empty filter field, oldest first.
func (r *Repository) Search(ctx context.Context, filter session.Filter) ([]session.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT session_id, user_id, created_at
		FROM user_sessions
		WHERE ($1 = '' OR session_id = $1)
		  AND ($2 = '' OR user_id = $2)
		ORDER BY created_at NULLS FIRST, session_id
	`, filter.SessionID, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	out := []session.Record{}
	for rows.Next() {
		var (
			rec       session.Record
			createdAt *time.Time
		)
		if err := rows.Scan(&rec.SessionID, &rec.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if createdAt != nil {
			rec.CreatedAt = *createdAt
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return out, nil
}

// Save upserts rec. An existing row owned by a different user is a conflict.
func (r *Repository) Save(ctx context.Context, rec session.Record) error {
	if rec.UserID == "" {
		return session.ErrInvalidUserID
	}

	var createdAt *time.Time
	if !rec.CreatedAt.IsZero() {
		createdAt = &rec.CreatedAt
	}

	var owner string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_sessions (session_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE
		SET created_at = EXCLUDED.created_at
		WHERE user_sessions.user_id = EXCLUDED.user_id
		RETURNING user_id
	`, rec.SessionID, rec.UserID, createdAt).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.ErrConflict
		}
		if isUniqueViolation(err) {
			return session.ErrConflict
		}
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Remove deletes rec by session id. A missing row is not an error.
func (r *Repository) Remove(ctx context.Context, rec session.Record) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM user_sessions WHERE session_id = $1", rec.SessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// HealthCheck verifies the database connection.
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
