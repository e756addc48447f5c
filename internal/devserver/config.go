package devserver

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds configuration for the development backend
type Config struct {
	Addr     string        `env:"JZ_DEV_ADDR" envDefault:":8000"`
	Secret   string        `env:"JZ_DEV_SECRET" envDefault:"jeopardyze-dev-secret"`
	GuestTTL time.Duration `env:"JZ_DEV_GUEST_TTL" envDefault:"1h"`
	UserTTL  time.Duration `env:"JZ_DEV_USER_TTL" envDefault:"24h"`
	CodeTTL  time.Duration `env:"JZ_DEV_CODE_TTL" envDefault:"10m"`

	ReadTimeout     time.Duration `env:"JZ_DEV_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"JZ_DEV_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"JZ_DEV_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig returns the configuration used when no environment is set
func DefaultConfig() Config {
	return Config{
		Addr:            ":8000",
		Secret:          "jeopardyze-dev-secret",
		GuestTTL:        time.Hour,
		UserTTL:         24 * time.Hour,
		CodeTTL:         10 * time.Minute,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadConfig reads the configuration from the environment
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Secret == "" {
		return Config{}, fmt.Errorf("JZ_DEV_SECRET must not be empty")
	}
	return cfg, nil
}
