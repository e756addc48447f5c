package memory

import (
	"context"
	"sync"

	"github.com/mcoot/jeopardyze-client/internal/model"
	"github.com/mcoot/jeopardyze-client/internal/storage"
)

// Storage is an in-memory credential store. It does not survive the process.
type Storage struct {
	mu   sync.RWMutex
	cred model.Credential

	// Counters for tests
	saves  int
	clears int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{}
}

// NewWithCredential creates a store pre-populated with cred
func NewWithCredential(cred model.Credential) *Storage {
	return &Storage{cred: cred}
}

// Ensure Storage implements the interface
var _ storage.CredentialStore = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) (model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == "" {
		return "", model.ErrCredentialNotFound
	}
	return s.cred, nil
}

func (s *Storage) Save(ctx context.Context, cred model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	s.saves++
	return nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = ""
	s.clears++
	return nil
}

// Saves returns how many times Save was called
func (s *Storage) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Clears returns how many times Clear was called
func (s *Storage) Clears() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clears
}
