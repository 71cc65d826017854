package userauth

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML file over DefaultConfig, applies environment
// overrides and validates the result. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overrides c from the environment. AUTH_TYPE, SESSION_NAME and
// SESSION_DURATION keep their historical names; a SESSION_DURATION that is
// set but not an integer means 0. Everything else uses a USERAUTH_ prefix.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		return
	}

	if v := getenv("AUTH_TYPE"); v != "" {
		c.Auth.Type = v
	}
	if v := getenv("SESSION_NAME"); v != "" {
		c.Auth.SessionName = v
	}
	if v := getenv("SESSION_DURATION"); v != "" {
		c.Auth.SessionDuration = parseSeconds(v)
	}

	if v := getenv("USERAUTH_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := getenv("USERAUTH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("USERAUTH_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := getenv("USERAUTH_SESSION_BACKEND"); v != "" {
		c.Session.Backend = v
	}
	if v := getenv("USERAUTH_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("USERAUTH_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("USERAUTH_POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := getenv("USERAUTH_DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := getenv("USERAUTH_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
}

func parseSeconds(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
