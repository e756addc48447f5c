package factory

import (
	"net/http/httptest"
	"time"

	"github.com/mcoot/jeopardyze-client/internal/dependencies/mocks"
	"github.com/mcoot/jeopardyze-client/internal/devserver"
	"github.com/mcoot/jeopardyze-client/internal/storage/memory"
	"github.com/mcoot/jeopardyze-client/internal/testutil"
)

// TestApp extends App with an in-process development backend
type TestApp struct {
	*App

	Server  *httptest.Server
	Backend *devserver.Backend
	Memory  *memory.Storage

	// Mocks for test control; the backend's clock decides credential expiry
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App wired to a fresh development backend. Close
// shuts both down.
func NewTestApp(cfg devserver.Config) *TestApp {
	mockClock := mocks.NewMockClock(time.Now())
	mockRandom := mocks.NewMockRandom()
	logger := testutil.NopLogger()

	backend := devserver.NewBackend(cfg, mockClock, mockRandom, logger)
	server := httptest.NewServer(backend.Handler)

	store := memory.New()
	app := newWithDependencies(Config{ServerURL: server.URL + "/api"}, store, mockClock, logger)

	return &TestApp{
		App:        app,
		Server:     server,
		Backend:    backend,
		Memory:     store,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// Close shuts down the client and the backend
func (t *TestApp) Close() error {
	err := t.App.Close()
	t.Server.Close()
	return err
}
