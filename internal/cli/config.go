package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/jeopardyze-client/internal/factory"
	"github.com/mcoot/jeopardyze-client/internal/storage/file"
	redisstorage "github.com/mcoot/jeopardyze-client/internal/storage/redis"
)

// Config holds CLI configuration. Values are layered: defaults, then the
// config file, then JZ_* environment variables, then flags.
type Config struct {
	ServerURL string        `yaml:"server" env:"JZ_SERVER"`
	Store     string        `yaml:"store" env:"JZ_STORE"`
	StateDir  string        `yaml:"state_dir" env:"JZ_STATE_DIR"`
	RedisURL  string        `yaml:"redis_url" env:"JZ_REDIS_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"JZ_TIMEOUT"`
	Output    string        `yaml:"output" env:"JZ_OUTPUT"`
	Verbose   bool          `yaml:"verbose" env:"JZ_VERBOSE"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: "http://localhost:8000/api",
		Store:     factory.StoreTypeFile,
		StateDir:  file.DefaultDir(),
		Timeout:   30 * time.Second,
		Output:    "text",
	}
}

// DefaultConfigPath is where the config file is looked up when --config is not given
func DefaultConfigPath() string {
	return filepath.Join(file.DefaultDir(), "config.yaml")
}

// LoadConfig builds the configuration from defaults, the file at path and the
// environment. A missing file is only an error when required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format %q: must be 'text' or 'json'", c.Output)
	}
	switch c.Store {
	case factory.StoreTypeMemory, factory.StoreTypeFile:
	case factory.StoreTypeRedis:
		if c.RedisURL == "" {
			return errors.New("--redis-url is required with --store redis")
		}
	default:
		return fmt.Errorf("invalid store %q: must be 'file', 'redis' or 'memory'", c.Store)
	}
	return nil
}

// FactoryConfig translates the CLI settings into application wiring
func (c *Config) FactoryConfig() factory.Config {
	fc := factory.Config{
		ServerURL: c.ServerURL,
		Timeout:   c.Timeout,
		StoreType: c.Store,
		StateDir:  c.StateDir,
	}
	if c.Store == factory.StoreTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		fc.RedisConfig = &redisCfg
	}
	return fc
}
