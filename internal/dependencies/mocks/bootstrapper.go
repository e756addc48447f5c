package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/mcoot/jeopardyze-client/internal/model"
)

// ErrNoQueuedGuest is returned when MockBootstrapper runs out of queued results
var ErrNoQueuedGuest = errors.New("mock bootstrapper: no queued guest")

type bootstrapResult struct {
	result *model.AuthResult
	err    error
}

// MockBootstrapper is a mock guest bootstrapper for testing
type MockBootstrapper struct {
	mu      sync.Mutex
	results []bootstrapResult
	calls   int

	// Hook runs at the start of every call, outside the lock
	Hook func(ctx context.Context)
}

// NewMockBootstrapper creates a new MockBootstrapper
func NewMockBootstrapper() *MockBootstrapper {
	return &MockBootstrapper{}
}

// QueueGuest queues a successful result
func (b *MockBootstrapper) QueueGuest(result *model.AuthResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = append(b.results, bootstrapResult{result: result})
}

// QueueError queues a failure
func (b *MockBootstrapper) QueueError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = append(b.results, bootstrapResult{err: err})
}

// CreateGuestSession returns the next queued result
func (b *MockBootstrapper) CreateGuestSession(ctx context.Context) (*model.AuthResult, error) {
	if b.Hook != nil {
		b.Hook(ctx)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls++
	if len(b.results) == 0 {
		return nil, ErrNoQueuedGuest
	}
	next := b.results[0]
	b.results = b.results[1:]
	return next.result, next.err
}

// Calls returns how many times CreateGuestSession was invoked
func (b *MockBootstrapper) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}
