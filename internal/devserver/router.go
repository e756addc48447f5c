package devserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/jeopardyze-client/internal/devserver/handler"
	"github.com/mcoot/jeopardyze-client/internal/devserver/middleware"
	shared "github.com/mcoot/jeopardyze-client/internal/middleware"
	"github.com/mcoot/jeopardyze-client/internal/services/auth"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Tokens      *auth.Tokens
}

// NewRouter creates the router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Tokens)
	authMiddleware := middleware.Auth(cfg.Tokens, cfg.AuthService)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(shared.Logging(cfg.Logger))

	// Identity routes never require a credential
	api.HandleFunc("/auth/guest", authHandler.Guest).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-email", authHandler.VerifyEmail).Methods(http.MethodPost)

	players := api.PathPrefix("/players").Subrouter()
	players.Use(authMiddleware)
	players.HandleFunc("/me", handler.GetMe).Methods(http.MethodGet)

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	return r
}
