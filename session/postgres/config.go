package postgres

import "time"

// Config holds PostgreSQL connection settings for the session repository.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string

	// MaxConns is the maximum pool size (default: 10).
	MaxConns int32

	// MinConns is the number of idle connections kept open (default: 1).
	MinConns int32

	// MaxConnLifetime bounds how long a pooled connection lives (default: 5 minutes).
	MaxConnLifetime time.Duration

	// MigrateOnStart applies embedded schema migrations when the repository opens.
	MigrateOnStart bool
}

func (c *Config) defaults() {
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MinConns == 0 {
		c.MinConns = 1
	}
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = 5 * time.Minute
	}
}
