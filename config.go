package userauth

import (
	"fmt"
	"slices"
	"time"

	"github.com/CipherPhantom/userauth/internal/logging"
	"github.com/CipherPhantom/userauth/password"
)

// AUTH_TYPE values.
const (
	AuthTypeBase       = "auth"
	AuthTypeBasic      = "basic_auth"
	AuthTypeSession    = "session_auth"
	AuthTypeSessionExp = "session_exp_auth"
	AuthTypeSessionDB  = "session_db_auth"
)

// Session repository backends used by session_db_auth.
const (
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
)

// User store drivers.
const (
	DatabaseMemory = "memory"
	DatabaseSQLite = "sqlite"
)

// Config is the full process configuration. It is read once at startup;
// strategies copy what they need at construction.
type Config struct {
	Auth     AuthConfig     `yaml:"auth"`
	Password PasswordConfig `yaml:"password"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Audit    AuditSettings  `yaml:"audit"`
	Throttle ThrottleConfig `yaml:"login_throttle"`
}

// AuthConfig selects the strategy.
type AuthConfig struct {
	Type          string   `yaml:"type"`
	ExcludedPaths []string `yaml:"excluded_paths"`
	SessionName   string   `yaml:"session_name"`
	// SessionDuration is the maximum session age in seconds. Zero or less
	// disables expiry.
	SessionDuration int `yaml:"session_duration"`
}

// Duration returns SessionDuration as a time.Duration.
func (a AuthConfig) Duration() time.Duration {
	return time.Duration(a.SessionDuration) * time.Second
}

// PasswordConfig holds Argon2id parameters.
type PasswordConfig struct {
	Memory           uint32 `yaml:"memory_kib"`
	Time             uint32 `yaml:"time"`
	Parallelism      uint8  `yaml:"parallelism"`
	SaltLength       uint32 `yaml:"salt_length"`
	KeyLength        uint32 `yaml:"key_length"`
	MinPasswordBytes int    `yaml:"min_password_bytes"`
	MaxPasswordBytes int    `yaml:"max_password_bytes"`
}

// Hasher converts the section to a password.Config.
func (p PasswordConfig) Hasher() password.Config {
	return password.Config{
		Memory:           p.Memory,
		Time:             p.Time,
		Parallelism:      p.Parallelism,
		SaltLength:       p.SaltLength,
		KeyLength:        p.KeyLength,
		MinPasswordBytes: p.MinPasswordBytes,
		MaxPasswordBytes: p.MaxPasswordBytes,
	}
}

// SessionConfig picks where session_db_auth persists records.
type SessionConfig struct {
	Backend     string `yaml:"backend"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// RedisConfig addresses the Redis server. Embedded starts an in-process
// server, meant for development only.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Embedded bool   `yaml:"embedded"`
}

// PostgresConfig addresses the PostgreSQL session table.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConns       int32  `yaml:"max_conns"`
	MinConns       int32  `yaml:"min_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// DatabaseConfig selects the user store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CookieSecure    bool          `yaml:"cookie_secure"`
}

// ThrottleConfig limits failed logins on the HTTP API. Backend is "memory"
// or "redis"; the redis backend uses the Redis section.
type ThrottleConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"max_attempts"`
	Window      time.Duration `yaml:"window"`
	PerIP       bool          `yaml:"per_ip"`
	Backend     string        `yaml:"backend"`
}

// LoggingConfig is the logger configuration.
type LoggingConfig = logging.Config

// AuditSettings configures audit delivery. Sink is "log", "stdout" or "none".
type AuditSettings struct {
	Enabled    bool   `yaml:"enabled"`
	BufferSize int    `yaml:"buffer_size"`
	DropIfFull bool   `yaml:"drop_if_full"`
	Sink       string `yaml:"sink"`
}

// Dispatcher converts the section into the dispatcher configuration.
func (a AuditSettings) Dispatcher() AuditConfig {
	return AuditConfig{Enabled: a.Enabled, BufferSize: a.BufferSize, DropIfFull: a.DropIfFull}
}

// DefaultExcludedPaths are reachable without authentication.
var DefaultExcludedPaths = []string{
	"/api/v1/status/",
	"/api/v1/stats/",
	"/api/v1/unauthorized/",
	"/api/v1/forbidden/",
	"/api/v1/auth_session/login/",
	"/api/v1/reset_password/",
	"/api/v1/metrics/",
}

// DefaultConfig returns a configuration that runs entirely in memory.
func DefaultConfig() Config {
	pw := password.DefaultConfig()
	return Config{
		Auth: AuthConfig{
			Type:          AuthTypeSession,
			ExcludedPaths: slices.Clone(DefaultExcludedPaths),
			SessionName:   DefaultSessionCookie,
		},
		Password: PasswordConfig{
			Memory:      pw.Memory,
			Time:        pw.Time,
			Parallelism: pw.Parallelism,
			SaltLength:  pw.SaltLength,
			KeyLength:   pw.KeyLength,
		},
		Session: SessionConfig{
			Backend:     SessionBackendMemory,
			RedisPrefix: "us",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Postgres: PostgresConfig{
			MaxConns:       10,
			MinConns:       1,
			MigrateOnStart: true,
		},
		Database: DatabaseConfig{
			Driver: DatabaseMemory,
			Path:   "./data/userauth.db",
		},
		HTTP: HTTPConfig{
			Addr:            ":5000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Audit: AuditSettings{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
			Sink:       "log",
		},
		Throttle: ThrottleConfig{
			Enabled:     true,
			MaxAttempts: 5,
			Window:      15 * time.Minute,
			Backend:     "memory",
		},
	}
}

// Validate checks that every section is internally consistent.
func (c *Config) Validate() error {
	switch c.Auth.Type {
	case AuthTypeBase, AuthTypeBasic, AuthTypeSession, AuthTypeSessionExp, AuthTypeSessionDB:
	default:
		return fmt.Errorf("%w: unknown auth type %q", ErrInvalidConfig, c.Auth.Type)
	}
	if c.Auth.Type != AuthTypeBasic && c.Auth.Type != AuthTypeBase && c.Auth.SessionName == "" {
		return fmt.Errorf("%w: session strategies require a session cookie name", ErrInvalidConfig)
	}
	if _, err := password.NewArgon2(c.Password.Hasher()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Auth.Type == AuthTypeSessionDB {
		switch c.Session.Backend {
		case SessionBackendMemory:
		case SessionBackendRedis:
			if c.Redis.Addr == "" && !c.Redis.Embedded {
				return fmt.Errorf("%w: redis backend requires an address or embedded mode", ErrInvalidConfig)
			}
		case SessionBackendPostgres:
			if c.Postgres.DSN == "" {
				return fmt.Errorf("%w: postgres backend requires a DSN", ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: unknown session backend %q", ErrInvalidConfig, c.Session.Backend)
		}
	}

	switch c.Database.Driver {
	case DatabaseMemory:
	case DatabaseSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: sqlite driver requires a path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http addr must be set", ErrInvalidConfig)
	}
	if c.HTTP.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: http shutdown timeout must be >= 0", ErrInvalidConfig)
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: audit buffer size must be > 0", ErrInvalidConfig)
	}
	switch c.Audit.Sink {
	case "", "log", "stdout", "none":
	default:
		return fmt.Errorf("%w: unknown audit sink %q", ErrInvalidConfig, c.Audit.Sink)
	}

	if c.Throttle.Enabled {
		if c.Throttle.MaxAttempts <= 0 || c.Throttle.Window <= 0 {
			return fmt.Errorf("%w: login throttle needs positive max_attempts and window", ErrInvalidConfig)
		}
		switch c.Throttle.Backend {
		case "", "memory":
		case "redis":
			if c.Redis.Addr == "" && !c.Redis.Embedded {
				return fmt.Errorf("%w: redis throttle requires an address or embedded mode", ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: unknown throttle backend %q", ErrInvalidConfig, c.Throttle.Backend)
		}
	}
	return nil
}
