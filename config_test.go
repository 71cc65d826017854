package userauth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Auth.SessionName != DefaultSessionCookie {
		t.Fatalf("session name = %q", cfg.Auth.SessionName)
	}
	if cfg.Auth.Duration() != 0 {
		t.Fatalf("default duration must disable expiry")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown auth type", func(c *Config) { c.Auth.Type = "jwt" }},
		{"session without cookie", func(c *Config) { c.Auth.SessionName = "" }},
		{"bad argon2 params", func(c *Config) { c.Password.Time = 0 }},
		{"unknown backend", func(c *Config) { c.Auth.Type = AuthTypeSessionDB; c.Session.Backend = "etcd" }},
		{"postgres without dsn", func(c *Config) { c.Auth.Type = AuthTypeSessionDB; c.Session.Backend = SessionBackendPostgres }},
		{"redis without addr", func(c *Config) {
			c.Auth.Type = AuthTypeSessionDB
			c.Session.Backend = SessionBackendRedis
			c.Redis.Addr = ""
		}},
		{"unknown database driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"sqlite without path", func(c *Config) { c.Database.Driver = DatabaseSQLite; c.Database.Path = "" }},
		{"empty http addr", func(c *Config) { c.HTTP.Addr = "" }},
		{"audit buffer", func(c *Config) { c.Audit.BufferSize = 0 }},
		{"audit sink", func(c *Config) { c.Audit.Sink = "kafka" }},
		{"throttle attempts", func(c *Config) { c.Throttle.MaxAttempts = 0 }},
		{"throttle window", func(c *Config) { c.Throttle.Window = 0 }},
		{"throttle backend", func(c *Config) { c.Throttle.Backend = "etcd" }},
		{"redis throttle without addr", func(c *Config) { c.Throttle.Backend = "redis"; c.Redis.Addr = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigValidateBasicNeedsNoCookie(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.Type = AuthTypeBasic
	cfg.Auth.SessionName = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("basic auth should not need a cookie: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(envMap(map[string]string{
		"AUTH_TYPE":                "session_db_auth",
		"SESSION_NAME":             "_sid",
		"SESSION_DURATION":         "60",
		"USERAUTH_SESSION_BACKEND": "redis",
		"USERAUTH_REDIS_ADDR":      "redis:6379",
		"USERAUTH_HTTP_ADDR":       ":8080",
		"USERAUTH_LOG_LEVEL":       "debug",
		"USERAUTH_DATABASE_DRIVER": "sqlite",
		"USERAUTH_DATABASE_PATH":   "/tmp/u.db",
	}))

	if cfg.Auth.Type != AuthTypeSessionDB || cfg.Auth.SessionName != "_sid" {
		t.Fatalf("auth section: %+v", cfg.Auth)
	}
	if cfg.Auth.Duration() != time.Minute {
		t.Fatalf("duration = %v", cfg.Auth.Duration())
	}
	if cfg.Session.Backend != SessionBackendRedis || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("session section: %+v %+v", cfg.Session, cfg.Redis)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Logging.Level != "debug" {
		t.Fatalf("http/logging: %+v %+v", cfg.HTTP, cfg.Logging)
	}
	if cfg.Database.Driver != DatabaseSQLite || cfg.Database.Path != "/tmp/u.db" {
		t.Fatalf("database: %+v", cfg.Database)
	}
}

func TestApplyEnvSessionDuration(t *testing.T) {
	cases := []struct {
		value string
		start int
		want  int
	}{
		{"", 30, 30},
		{"abc", 30, 0},
		{"12.5", 30, 0},
		{"0", 30, 0},
		{"-5", 30, -5},
		{"3600", 0, 3600},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		cfg.Auth.SessionDuration = tc.start
		cfg.ApplyEnv(envMap(map[string]string{"SESSION_DURATION": tc.value}))
		if cfg.Auth.SessionDuration != tc.want {
			t.Fatalf("SESSION_DURATION=%q: got %d want %d", tc.value, cfg.Auth.SessionDuration, tc.want)
		}
	}
}

func TestApplyEnvNil(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(nil)
	if cfg.Auth.Type != AuthTypeSession {
		t.Fatalf("nil getenv must not change config")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userauth.yaml")
	data := []byte(`
auth:
  type: session_exp_auth
  session_name: _app_session
  session_duration: 120
  excluded_paths:
    - /health/
    - /public*
session:
  backend: memory
http:
  addr: ":9000"
  read_timeout: 5s
logging:
  level: warn
  format: text
metrics:
  enabled: false
login_throttle:
  max_attempts: 3
  window: 1m
  per_ip: true
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("AUTH_TYPE", "")
	t.Setenv("SESSION_NAME", "")
	t.Setenv("SESSION_DURATION", "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Auth.Type != AuthTypeSessionExp || cfg.Auth.SessionName != "_app_session" {
		t.Fatalf("auth: %+v", cfg.Auth)
	}
	if cfg.Auth.Duration() != 2*time.Minute {
		t.Fatalf("duration = %v", cfg.Auth.Duration())
	}
	if len(cfg.Auth.ExcludedPaths) != 2 || cfg.Auth.ExcludedPaths[1] != "/public*" {
		t.Fatalf("excluded paths: %v", cfg.Auth.ExcludedPaths)
	}
	if cfg.HTTP.Addr != ":9000" || cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Fatalf("http: %+v", cfg.HTTP)
	}
	if cfg.HTTP.WriteTimeout != 10*time.Second {
		t.Fatalf("unset fields must keep defaults, write timeout = %v", cfg.HTTP.WriteTimeout)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "text" {
		t.Fatalf("logging: %+v", cfg.Logging)
	}
	if cfg.Throttle.MaxAttempts != 3 || cfg.Throttle.Window != time.Minute || !cfg.Throttle.PerIP || !cfg.Throttle.Enabled {
		t.Fatalf("throttle: %+v", cfg.Throttle)
	}
	if cfg.Metrics.Enabled {
		t.Fatalf("metrics should be disabled")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("auth: [unterminated"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("auth:\n  type: nope\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("AUTH_TYPE", "")
	if _, err := LoadConfig(invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
