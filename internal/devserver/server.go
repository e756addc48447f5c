// Package devserver is a development backend that issues guest and user
// credentials the way the real backend does, so the client can be run and
// tested end to end.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/mcoot/jeopardyze-client/internal/dependencies/clock"
	"github.com/mcoot/jeopardyze-client/internal/dependencies/random"
	"github.com/mcoot/jeopardyze-client/internal/services/auth"
)

// Backend bundles the services behind the HTTP handler
type Backend struct {
	AuthService *auth.Service
	Tokens      *auth.Tokens
	Handler     http.Handler
}

// NewBackend wires the account service, token issuer and router
func NewBackend(cfg Config, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Backend {
	authCfg := auth.DefaultConfig()
	if cfg.CodeTTL > 0 {
		authCfg.CodeTTL = cfg.CodeTTL
	}

	authService := auth.New(clk, rnd, authCfg, logger)
	tokens := auth.NewTokens([]byte(cfg.Secret), clk, cfg.GuestTTL, cfg.UserTTL)

	return &Backend{
		AuthService: authService,
		Tokens:      tokens,
		Handler: NewRouter(RouterConfig{
			Logger:      logger,
			AuthService: authService,
			Tokens:      tokens,
		}),
	}
}

// Server wraps the HTTP server with graceful shutdown support
type Server struct {
	server   *http.Server
	listener net.Listener
	logger   *slog.Logger
	config   Config
}

// NewServer creates a new server listening on cfg.Addr
func NewServer(handler http.Handler, cfg Config, logger *slog.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	return &Server{
		server: &http.Server{
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		listener: listener,
		logger:   logger,
		config:   cfg,
	}, nil
}

// Start serves requests until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", slog.String("addr", s.Addr()))

	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the address the server is listening on
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}
