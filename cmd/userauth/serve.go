package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/CipherPhantom/userauth"
	"github.com/CipherPhantom/userauth/internal/api"
	"github.com/CipherPhantom/userauth/internal/logging"
	"github.com/CipherPhantom/userauth/internal/rate"
	"github.com/CipherPhantom/userauth/userstore"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Load configuration, build the configured authentication strategy and
serve the API until interrupted. Environment variables override the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := userauth.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, cfg userauth.Config) error {
	logger := logging.New(cfg.Logging, version)
	slog.SetDefault(logger)

	users, closeUsers, err := openUserStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeUsers()

	builder := userauth.New().
		WithConfig(cfg).
		WithAccountStore(users).
		WithLogger(logger)

	if sink := auditSink(cfg.Audit, logger); sink != nil {
		builder.WithAuditSink(sink)
	}

	var client redis.UniversalClient
	if needsRedis(cfg) {
		c, closeRedis, err := openRedis(cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer closeRedis()
		client = c
		builder.WithRedis(client)
	}

	engine, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("closing engine", "error", err)
		}
	}()

	srv, err := api.New(api.Deps{
		Engine:   engine,
		Users:    users,
		Config:   cfg.HTTP,
		Logger:   logger,
		Version:  version,
		Throttle: loginThrottle(cfg.Throttle, client),
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func needsRedis(cfg userauth.Config) bool {
	sessions := cfg.Auth.Type == userauth.AuthTypeSessionDB && cfg.Session.Backend == userauth.SessionBackendRedis
	throttle := cfg.Throttle.Enabled && cfg.Throttle.Backend == "redis"
	return sessions || throttle
}

// openRedis connects to cfg.Addr, or to an in-process server when
// cfg.Embedded is set.
func openRedis(cfg userauth.RedisConfig, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	if !cfg.Embedded {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("starting embedded redis: %w", err)
	}
	logger.Warn("using embedded redis, state is lost on exit", "addr", mr.Addr())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

func loginThrottle(cfg userauth.ThrottleConfig, client redis.UniversalClient) *rate.Limiter {
	if !cfg.Enabled {
		return nil
	}
	var counter rate.Counter = rate.NewMemoryCounter()
	if cfg.Backend == "redis" && client != nil {
		counter = rate.NewRedisCounter(client)
	}
	return rate.New(counter, rate.Config{
		MaxAttempts: cfg.MaxAttempts,
		Window:      cfg.Window,
		PerIP:       cfg.PerIP,
		Prefix:      "us:throttle",
	})
}

type accountStore interface {
	userauth.AccountStore
	Count(ctx context.Context) (int, error)
}

func openUserStore(ctx context.Context, cfg userauth.DatabaseConfig) (accountStore, func(), error) {
	switch cfg.Driver {
	case userauth.DatabaseSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		store, err := userstore.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return userstore.NewMemory(), func() {}, nil
	}
}

func auditSink(cfg userauth.AuditSettings, logger *slog.Logger) userauth.AuditSink {
	if !cfg.Enabled {
		return nil
	}
	switch cfg.Sink {
	case "stdout":
		return userauth.NewJSONWriterSink(os.Stdout)
	case "none":
		return nil
	default:
		return userauth.NewLogSink(logger)
	}
}
