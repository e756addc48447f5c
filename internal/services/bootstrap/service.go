// Package bootstrap mints anonymous guest identities.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/jeopardyze-client/internal/client"
	"github.com/mcoot/jeopardyze-client/internal/model"
)

// Bootstrapper obtains a fresh guest credential from the backend
type Bootstrapper interface {
	// CreateGuestSession mints a new guest. Every call creates a new identity.
	CreateGuestSession(ctx context.Context) (*model.AuthResult, error)
}

// Service creates guest sessions through the auth endpoints
type Service struct {
	api    *client.AuthAPI
	logger *slog.Logger
}

// Ensure Service implements Bootstrapper
var _ Bootstrapper = (*Service)(nil)

// New creates a new bootstrap service. api must not route through the
// intercepting transport.
func New(api *client.AuthAPI, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		logger: logger.With(slog.String("component", "guest-bootstrapper")),
	}
}

// CreateGuestSession performs a single guest creation call. Remote failures are
// returned as-is; retrying is left to the caller.
func (s *Service) CreateGuestSession(ctx context.Context) (*model.AuthResult, error) {
	result, err := s.api.Guest(ctx)
	if err != nil {
		s.logger.Warn("guest creation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("create guest: %w", err)
	}

	s.logger.Info("guest session created",
		slog.Int64("player_id", int64(result.PlayerID)),
		slog.String("display_name", result.DisplayName))

	return result, nil
}
