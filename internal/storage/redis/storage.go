package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/jeopardyze-client/internal/model"
	"github.com/mcoot/jeopardyze-client/internal/storage"
)

// Storage is a Redis-backed credential store, one key per backend origin
type Storage struct {
	client *redis.Client
	key    string
}

// New creates a new Redis storage instance
func New(cfg Config, origin string) (*Storage, error) {
	if origin == "" {
		return nil, errors.New("origin is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, origin), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, origin string) *Storage {
	return &Storage{
		client: client,
		key:    credentialKey(origin),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.CredentialStore = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) (model.Credential, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrCredentialNotFound
		}
		return "", err
	}
	if val == "" {
		return "", model.ErrCredentialNotFound
	}
	return model.Credential(val), nil
}

// Save stores the credential without a TTL; expiry is only learned from the backend
func (s *Storage) Save(ctx context.Context, cred model.Credential) error {
	return s.client.Set(ctx, s.key, cred.Raw(), 0).Err()
}

func (s *Storage) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
