package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/jeopardyze-client/internal/model"
)

const testOrigin = "http_localhost_8000"

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	client  *redis.Client
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(s.client, testOrigin)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestLoadEmpty() {
	_, err := s.storage.Load(s.ctx)
	s.ErrorIs(err, model.ErrCredentialNotFound)
}

func (s *StorageSuite) TestSaveAndLoad() {
	err := s.storage.Save(s.ctx, "a.b.c")
	s.Require().NoError(err)

	cred, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Credential("a.b.c"), cred)
}

func (s *StorageSuite) TestSaveUsesOriginKey() {
	_ = s.storage.Save(s.ctx, "a.b.c")

	val, err := s.mini.Get("jz:" + testOrigin + ":credential")
	s.Require().NoError(err)
	s.Equal("a.b.c", val)
}

func (s *StorageSuite) TestCredentialHasNoTTL() {
	_ = s.storage.Save(s.ctx, "a.b.c")

	ttl := s.mini.TTL(credentialKey(testOrigin))
	s.Equal(time.Duration(0), ttl, "Credential should not have TTL")
}

func (s *StorageSuite) TestSaveReplaces() {
	_ = s.storage.Save(s.ctx, "first.b.c")
	_ = s.storage.Save(s.ctx, "second.b.c")

	cred, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Credential("second.b.c"), cred)
}

func (s *StorageSuite) TestClear() {
	_ = s.storage.Save(s.ctx, "a.b.c")

	err := s.storage.Clear(s.ctx)
	s.Require().NoError(err)

	_, err = s.storage.Load(s.ctx)
	s.ErrorIs(err, model.ErrCredentialNotFound)
	s.False(s.mini.Exists(credentialKey(testOrigin)))
}

func (s *StorageSuite) TestClearEmptyIsNoop() {
	s.NoError(s.storage.Clear(s.ctx))
}

func (s *StorageSuite) TestOriginsAreIsolated() {
	other := NewWithClient(s.client, "https_quiz.example.com_443")

	_ = s.storage.Save(s.ctx, "local.b.c")

	_, err := other.Load(s.ctx)
	s.ErrorIs(err, model.ErrCredentialNotFound)
}

func (s *StorageSuite) TestLoadPropagatesConnectionErrors() {
	s.mini.SetError("connection lost")

	_, err := s.storage.Load(s.ctx)
	s.Error(err)
	s.NotErrorIs(err, model.ErrCredentialNotFound)
}

func (s *StorageSuite) TestNewConnectsWithURL() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()

	store, err := New(cfg, testOrigin)
	s.Require().NoError(err)
	defer func() { _ = store.Close() }()

	_ = s.storage.Save(s.ctx, "shared.b.c")

	cred, err := store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Credential("shared.b.c"), cred)
}

func (s *StorageSuite) TestNewFailsWhenUnreachable() {
	cfg := DefaultConfig()
	cfg.URL = "redis://127.0.0.1:1"

	_, err := New(cfg, testOrigin)
	s.Error(err)
}
