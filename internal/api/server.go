package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/CipherPhantom/userauth"
	"github.com/CipherPhantom/userauth/internal/rate"
)

const defaultShutdownTimeout = 10 * time.Second

// Deps holds what the server needs.
type Deps struct {
	Engine *userauth.Engine
	// Users backs /stats when it can count accounts. Optional.
	Users   userauth.UserStore
	Config  userauth.HTTPConfig
	Logger  *slog.Logger
	Version string
	// Throttle limits failed logins. Nil disables throttling.
	Throttle *rate.Limiter
}

// Server is the HTTP API server.
type Server struct {
	engine   *userauth.Engine
	users    userauth.UserStore
	cfg      userauth.HTTPConfig
	logger   *slog.Logger
	version  string
	sessions userauth.SessionStrategy
	accounts *userauth.Accounts
	throttle *rate.Limiter
	handler  http.Handler
}

// New validates deps and builds the router.
func New(deps Deps) (*Server, error) {
	if deps.Engine == nil {
		return nil, errors.New("engine is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = deps.Engine.Logger()
	}

	s := &Server{
		engine:   deps.Engine,
		users:    deps.Users,
		cfg:      deps.Config,
		logger:   logger,
		version:  deps.Version,
		accounts: deps.Engine.Accounts(),
		throttle: deps.Throttle,
	}
	if sessions, ok := deps.Engine.Sessions(); ok {
		s.sessions = sessions
	}
	s.handler = s.buildRouter()
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving API: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
