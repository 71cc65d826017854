package userauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CipherPhantom/userauth/internal/audit"
	"github.com/CipherPhantom/userauth/password"
	"github.com/CipherPhantom/userauth/session"
	"github.com/CipherPhantom/userauth/session/postgres"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine from a Config and the stores it cannot open
// by itself.
//
// Builder instances are configured during initialization and used once.
type Builder struct {
	config Config

	users    UserStore
	accounts AccountStore

	redis redis.UniversalClient
	repo  session.Repository
	store *session.Store

	logger    *slog.Logger
	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New returns a Builder over DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithUserStore sets the store strategies resolve users from.
func (b *Builder) WithUserStore(users UserStore) *Builder {
	b.users = users
	return b
}

// WithAccountStore sets a store that also supports registration and
// password resets. It doubles as the user store unless one is set.
func (b *Builder) WithAccountStore(accounts AccountStore) *Builder {
	b.accounts = accounts
	return b
}

// WithRedis supplies the client used by the redis session backend. Without
// it Build dials Config.Redis.Addr. The caller keeps ownership of client.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSessionRepository bypasses Config.Session.Backend.
func (b *Builder) WithSessionRepository(repo session.Repository) *Builder {
	b.repo = repo
	return b
}

// WithSessionStore shares an in-memory store with the session strategies.
func (b *Builder) WithSessionStore(store *session.Store) *Builder {
	b.store = store
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink routes audit events to sink through the async dispatcher.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration and constructs the Engine. Any backend
// opened here is closed by Engine.Close.
func (b *Builder) Build(ctx context.Context) (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	cfg.Auth.ExcludedPaths = append([]string(nil), cfg.Auth.ExcludedPaths...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	users := b.users
	if users == nil && b.accounts != nil {
		users = b.accounts
	}
	if users == nil && cfg.Auth.Type != AuthTypeBase {
		return nil, fmt.Errorf("%w: user store required for %s", ErrInvalidConfig, cfg.Auth.Type)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:  cfg,
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
	}
	if b.auditSink != nil {
		engine.audit = audit.NewDispatcher(cfg.Audit.Dispatcher(), b.auditSink)
		if engine.audit != nil {
			engine.closers = append(engine.closers, func() error {
				engine.audit.Close()
				return nil
			})
		}
	}

	opts := []Option{WithLogger(logger), WithMetrics(engine.metrics), WithClock(b.clock)}
	if engine.audit != nil {
		opts = append(opts, WithAuditSink(engine.audit))
	}

	strategy, err := b.strategy(ctx, engine, users, opts)
	if err != nil {
		_ = engine.Close()
		return nil, err
	}
	engine.strategy = strategy

	if b.accounts != nil {
		hasher, err := password.NewArgon2(cfg.Password.Hasher())
		if err != nil {
			_ = engine.Close()
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		engine.accounts = NewAccounts(b.accounts, hasher, opts...)
	}

	b.built = true
	logger.Info("auth strategy ready", "auth_type", cfg.Auth.Type, "session_backend", engine.sessionBackend)
	return engine, nil
}

func (b *Builder) strategy(ctx context.Context, engine *Engine, users UserStore, opts []Option) (Strategy, error) {
	cfg := engine.config.Auth

	switch cfg.Type {
	case AuthTypeBase:
		return Auth{}, nil
	case AuthTypeBasic:
		return NewBasicAuth(users, opts...), nil
	case AuthTypeSession:
		return NewSessionAuth(b.store, users, cfg.SessionName, opts...), nil
	case AuthTypeSessionExp:
		return NewExpiringSessionAuth(b.store, users, cfg.SessionName, cfg.Duration(), opts...), nil
	case AuthTypeSessionDB:
		repo, err := b.repository(ctx, engine)
		if err != nil {
			return nil, err
		}
		return NewPersistentSessionAuth(repo, users, cfg.SessionName, cfg.Duration(), opts...), nil
	}
	return nil, fmt.Errorf("%w: unknown auth type %q", ErrInvalidConfig, cfg.Type)
}

// repository opens the session backend named by Config.Session.Backend.
func (b *Builder) repository(ctx context.Context, engine *Engine) (session.Repository, error) {
	if b.repo != nil {
		engine.sessionBackend = "custom"
		return b.repo, nil
	}

	cfg := engine.config
	engine.sessionBackend = cfg.Session.Backend

	switch cfg.Session.Backend {
	case SessionBackendMemory:
		return session.NewMemoryRepository(), nil

	case SessionBackendRedis:
		client := b.redis
		if client == nil {
			owned := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			engine.closers = append(engine.closers, owned.Close)
			client = owned
		}
		repo := session.NewRedisRepository(client, cfg.Session.RedisPrefix)
		if _, err := repo.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connecting session redis: %w", err)
		}
		return repo, nil

	case SessionBackendPostgres:
		repo, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MinConns:       cfg.Postgres.MinConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		}, engine.logger)
		if err != nil {
			return nil, fmt.Errorf("connecting session postgres: %w", err)
		}
		engine.closers = append(engine.closers, repo.Close)
		return repo, nil
	}
	return nil, fmt.Errorf("%w: unknown session backend %q", ErrInvalidConfig, cfg.Session.Backend)
}
