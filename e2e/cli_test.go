package e2e_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/jeopardyze-client/internal/cli"
	"github.com/mcoot/jeopardyze-client/internal/dependencies/mocks"
	"github.com/mcoot/jeopardyze-client/internal/devserver"
	"github.com/mcoot/jeopardyze-client/internal/testutil"
)

// testServer is a development backend on a controllable clock
type testServer struct {
	server *httptest.Server
	clock  *mocks.MockClock
	apiURL string
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := devserver.DefaultConfig()
	cfg.GuestTTL = time.Minute
	cfg.UserTTL = time.Hour

	clk := mocks.NewMockClock(time.Now())
	backend := devserver.NewBackend(cfg, clk, mocks.NewMockRandom(), testutil.NopLogger())
	server := httptest.NewServer(backend.Handler)
	t.Cleanup(server.Close)

	return &testServer{server: server, clock: clk, apiURL: server.URL + "/api"}
}

// cliRunner runs the CLI in-process against one server and state directory,
// the way successive invocations of the binary would
type cliRunner struct {
	serverURL  string
	stateDir   string
	configFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("store: file\ntimeout: 5s\n"), 0o600))

	return &cliRunner{
		serverURL:  serverURL,
		stateDir:   filepath.Join(dir, "state"),
		configFile: configFile,
	}
}

type result struct {
	stdout string
	stderr string
}

func (r *cliRunner) run(args ...string) (result, error) {
	var stdout, stderr bytes.Buffer

	cmd := cli.NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{
		"--config", r.configFile,
		"--server", r.serverURL,
		"--state-dir", r.stateDir,
		"--output", "json",
	}, args...))

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String()}, err
}

// Response types

type playerJSON struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
}

type snapshotJSON struct {
	State          string      `json:"state"`
	Player         *playerJSON `json:"player"`
	ExpiresAt      *time.Time  `json:"expires_at"`
	ReauthRequired bool        `json:"reauth_required"`
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}

func (r *cliRunner) whoami(t *testing.T) snapshotJSON {
	t.Helper()
	res, err := r.run("whoami")
	require.NoError(t, err, "stderr: %s", res.stderr)
	return decode[snapshotJSON](t, res.stdout)
}

// signUp registers and verifies an account, converting the current guest
func (r *cliRunner) signUp(t *testing.T, username, email string) snapshotJSON {
	t.Helper()

	res, err := r.run("register", "--username", username, "--email", email, "--pass", "correct-horse")
	require.NoError(t, err, "stderr: %s", res.stderr)

	// The development backend's random source yields an all-zero code
	res, err = r.run("verify-email", "--email", email, "--code", "000000")
	require.NoError(t, err, "stderr: %s", res.stderr)
	return decode[snapshotJSON](t, res.stdout)
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)

	res, err := runner.run("health")
	require.NoError(t, err, "stderr: %s", res.stderr)

	health := decode[struct {
		Status string `json:"status"`
	}](t, res.stdout)
	assert.Equal(t, "ok", health.Status)
}

func TestCLI_FirstRunBecomesGuest(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)

	snap := runner.whoami(t)
	assert.Equal(t, "guest", snap.State)
	require.NotNil(t, snap.Player)
	assert.Equal(t, "guest", snap.Player.Type)
	assert.True(t, strings.HasPrefix(snap.Player.DisplayName, "Guest_"))
	assert.NotNil(t, snap.ExpiresAt)
	assert.False(t, snap.ReauthRequired)

	// A second invocation reuses the stored credential
	again := runner.whoami(t)
	require.NotNil(t, again.Player)
	assert.Equal(t, snap.Player.ID, again.Player.ID)
}

func TestCLI_StatePerServer(t *testing.T) {
	first := startTestServer(t)
	second := startTestServer(t)

	runner := newCLIRunner(t, first.apiURL)
	firstSnap := runner.whoami(t)

	runner.serverURL = second.apiURL
	assert.Equal(t, "guest", runner.whoami(t).State)

	entries, err := os.ReadDir(runner.stateDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	runner.serverURL = first.apiURL
	assert.Equal(t, firstSnap.Player.ID, runner.whoami(t).Player.ID)
}

func TestCLI_AuthenticatedCall(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)

	snap := runner.whoami(t)

	res, err := runner.run("call", "GET", "/players/me")
	require.NoError(t, err, "stderr: %s", res.stderr)

	me := decode[playerJSON](t, res.stdout)
	assert.Equal(t, snap.Player.ID, me.ID)
	assert.Equal(t, "guest", me.Type)
}

func TestCLI_ExpiredGuestRenewedTransparently(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)

	before := runner.whoami(t)
	ts.clock.Advance(2 * time.Minute)

	res, err := runner.run("call", "GET", "/players/me")
	require.NoError(t, err, "stderr: %s", res.stderr)

	me := decode[playerJSON](t, res.stdout)
	assert.Equal(t, "guest", me.Type)
	assert.NotEqual(t, before.Player.ID, me.ID)
	assert.NotContains(t, res.stderr, "reauth_required")

	after := runner.whoami(t)
	assert.Equal(t, me.ID, after.Player.ID)
}

func TestCLI_SignUpConvertsGuest(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)

	guest := runner.whoami(t)

	snap := runner.signUp(t, "alice", "alice@example.com")
	assert.Equal(t, "authenticated", snap.State)
	require.NotNil(t, snap.Player)
	assert.Equal(t, "user", snap.Player.Type)
	assert.Equal(t, "alice", snap.Player.DisplayName)
	assert.Equal(t, guest.Player.ID, snap.Player.ID)

	assert.Equal(t, "authenticated", runner.whoami(t).State)
}

func TestCLI_RegisterTwiceResendsCode(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)

	for range 2 {
		res, err := runner.run("register", "--username", "bob", "--email", "bob@example.com", "--pass", "hunter22")
		require.NoError(t, err, "stderr: %s", res.stderr)

		resp := decode[struct {
			Message string `json:"message"`
			Email   string `json:"email"`
		}](t, res.stdout)
		assert.Equal(t, "bob@example.com", resp.Email)
	}
}

func TestCLI_LoginAndLogout(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)
	runner.signUp(t, "carol", "carol@example.com")

	res, err := runner.run("logout")
	require.NoError(t, err, "stderr: %s", res.stderr)
	out := decode[snapshotJSON](t, res.stdout)
	assert.Equal(t, "guest", out.State)
	assert.Equal(t, "guest", out.Player.Type)

	res, err = runner.run("login", "--user", "carol@example.com", "--pass", "correct-horse")
	require.NoError(t, err, "stderr: %s", res.stderr)
	in := decode[snapshotJSON](t, res.stdout)
	assert.Equal(t, "authenticated", in.State)
	assert.Equal(t, "carol", in.Player.DisplayName)
}

func TestCLI_LoginWrongPassword(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)
	runner.signUp(t, "dave", "dave@example.com")

	_, err := runner.run("login", "--user", "dave", "--pass", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")

	// The failed attempt leaves the stored sign-in alone
	assert.Equal(t, "authenticated", runner.whoami(t).State)
}

func TestCLI_ExpiredUserMustSignInAgain(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)
	user := runner.signUp(t, "erin", "erin@example.com")

	ts.clock.Advance(2 * time.Hour)

	res, err := runner.run("call", "GET", "/players/me")
	require.Error(t, err)
	assert.Contains(t, res.stderr, "reauth_required")

	// The credential was cleared, so the next run starts over as a guest
	snap := runner.whoami(t)
	assert.Equal(t, "guest", snap.State)
	assert.NotEqual(t, user.Player.ID, snap.Player.ID)
}

func TestCLI_BackendDown(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)
	ts.server.Close()

	_, err := runner.run("whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not establish a session")

	entries, _ := os.ReadDir(runner.stateDir)
	assert.Empty(t, entries)
}

func TestCLI_InvalidArguments(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.apiURL)

	_, err := runner.run("call", "TRACE", "/players/me")
	assert.Error(t, err)

	_, err = runner.run("call", "POST", "/players/me", "--data", "{not json")
	assert.Error(t, err)

	_, err = runner.run("login", "--user", "frank")
	assert.Error(t, err)

	_, err = runner.run("--store", "carrier-pigeon", "whoami")
	assert.Error(t, err)
}
