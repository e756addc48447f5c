package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("JZ_DEV_ADDR", "127.0.0.1:9999")
	t.Setenv("JZ_DEV_SECRET", "s3cret")
	t.Setenv("JZ_DEV_GUEST_TTL", "30s")
	t.Setenv("JZ_DEV_USER_TTL", "2h")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
	assert.Equal(t, "s3cret", cfg.Secret)
	assert.Equal(t, 30*time.Second, cfg.GuestTTL)
	assert.Equal(t, 2*time.Hour, cfg.UserTTL)
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	t.Setenv("JZ_DEV_GUEST_TTL", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}
