package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/jeopardyze-client/internal/client"
	"github.com/mcoot/jeopardyze-client/internal/dependencies/clock"
	"github.com/mcoot/jeopardyze-client/internal/interceptor"
	"github.com/mcoot/jeopardyze-client/internal/notify"
	"github.com/mcoot/jeopardyze-client/internal/services/bootstrap"
	"github.com/mcoot/jeopardyze-client/internal/session"
	"github.com/mcoot/jeopardyze-client/internal/storage"
	"github.com/mcoot/jeopardyze-client/internal/storage/file"
	"github.com/mcoot/jeopardyze-client/internal/storage/memory"
	redisstorage "github.com/mcoot/jeopardyze-client/internal/storage/redis"
)

// Store type constants
const (
	StoreTypeMemory = "memory"
	StoreTypeFile   = "file"
	StoreTypeRedis  = "redis"
)

// App contains all wired client components
type App struct {
	Store storage.CredentialStore
	Bus   *notify.Bus
	Clock clock.Clock

	// AuthAPI talks to the identity endpoints without the interceptor
	AuthAPI      *client.AuthAPI
	Bootstrapper bootstrap.Bootstrapper
	// API carries the stored credential and renews expired guests
	API     *client.Client
	Session *session.Manager

	Logger *slog.Logger

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// ServerURL is the backend API root, e.g. http://localhost:8000/api
	ServerURL string
	// Timeout bounds each API call (optional, defaults to client.DefaultConfig)
	Timeout time.Duration
	// StoreType selects the credential store ("memory", "file" or "redis").
	// If empty, defaults to "file".
	StoreType string
	// StateDir is the file store's root directory (optional)
	StateDir string
	// RedisConfig holds Redis connection settings (required if StoreType is "redis")
	RedisConfig *redisstorage.Config
	// Transport is the base HTTP transport (optional)
	Transport http.RoundTripper
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = client.DefaultConfig().BaseURL
	}

	origin, err := storage.OriginKey(cfg.ServerURL)
	if err != nil {
		return nil, err
	}

	var closers []io.Closer
	var store storage.CredentialStore

	storeType := cfg.StoreType
	if storeType == "" {
		storeType = StoreTypeFile
	}

	switch storeType {
	case StoreTypeMemory:
		store = memory.New()
	case StoreTypeFile:
		dir := cfg.StateDir
		if dir == "" {
			dir = file.DefaultDir()
		}
		fileStore, err := file.New(dir, origin)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case StoreTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StoreType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, origin)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, fmt.Errorf("invalid StoreType %q: must be 'memory', 'file' or 'redis'", storeType)
	}

	app := newWithDependencies(cfg, store, clock.New(), logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg Config, store storage.CredentialStore, clk clock.Clock, logger *slog.Logger) *App {
	clientCfg := client.DefaultConfig()
	clientCfg.BaseURL = cfg.ServerURL
	clientCfg.Transport = cfg.Transport
	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}

	bus := notify.New(clk, logger)

	authAPI := client.NewAuthAPI(client.New(clientCfg))
	bootstrapper := bootstrap.New(authAPI, logger)

	apiCfg := clientCfg
	apiCfg.Transport = interceptor.New(cfg.Transport, store, bootstrapper, bus, logger)
	api := client.New(apiCfg)

	return &App{
		Store:        store,
		Bus:          bus,
		Clock:        clk,
		AuthAPI:      authAPI,
		Bootstrapper: bootstrapper,
		API:          api,
		Session:      session.New(store, bootstrapper, bus, logger),
		Logger:       logger,
	}
}

// Close tears down the session manager and releases the store
func (a *App) Close() error {
	a.Session.Teardown()
	a.Bus.Close()

	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
