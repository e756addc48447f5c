// Package session owns the local identity: the current Player and the
// lifecycle state of the session. All identity changes go through Manager.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/jeopardyze-client/internal/credential"
	"github.com/mcoot/jeopardyze-client/internal/model"
	"github.com/mcoot/jeopardyze-client/internal/services/bootstrap"
	"github.com/mcoot/jeopardyze-client/internal/storage"
)

// Bus is the notification channel the manager listens and reports on
type Bus interface {
	Publish(event model.Event)
	Subscribe(fn func(model.Event)) (unsubscribe func())
}

// Snapshot is a consistent view of the session
type Snapshot struct {
	State  model.SessionState `json:"state"`
	Player *model.Player      `json:"player,omitempty"`
	// ExpiresAt is the credential's exp claim, when it carries one
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// ReauthRequired is set when a user credential was rejected and the
	// player has to sign in again. The store is already empty in this state;
	// Player and State still describe the rejected identity until the next
	// transition.
	ReauthRequired bool `json:"reauth_required"`
}

// Manager is the session state machine. Create one per process.
type Manager struct {
	store        storage.CredentialStore
	bootstrapper bootstrap.Bootstrapper
	bus          Bus
	logger       *slog.Logger

	// transition serializes identity changes so the stored credential and
	// Player always move as a pair: the store is written first, memory second
	transition sync.Mutex

	mu             sync.Mutex
	started        bool
	settled        bool
	state          model.SessionState
	player         *model.Player
	expiresAt      *time.Time
	reauthRequired bool
	unsubscribe    func()
}

// New creates a new Manager and subscribes it to bus
func New(store storage.CredentialStore, bootstrapper bootstrap.Bootstrapper, bus Bus, logger *slog.Logger) *Manager {
	m := &Manager{
		store:        store,
		bootstrapper: bootstrapper,
		bus:          bus,
		logger:       logger.With(slog.String("component", "session")),
		state:        model.SessionUninitialized,
	}
	m.unsubscribe = bus.Subscribe(m.handleEvent)
	return m
}

// Initialize establishes the identity for this process: it adopts a usable
// stored credential without any network call, or bootstraps a guest. It runs
// once; later calls return model.ErrAlreadyInitialized.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return model.ErrAlreadyInitialized
	}
	m.started = true
	m.state = model.SessionInitializing
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)

	defer func() {
		m.mu.Lock()
		m.settled = true
		m.mu.Unlock()
	}()

	cred, err := m.store.Load(ctx)
	switch {
	case err == nil:
		claims, parseErr := credential.Parse(cred)
		if parseErr == nil {
			m.logger.Info("restored session",
				slog.Int64("player_id", int64(claims.PlayerID)),
				slog.String("player_type", string(claims.PlayerType)))
			m.adopt(claims)
			return nil
		}
		m.logger.Warn("discarding stored credential", slog.String("error", parseErr.Error()))
		if err := m.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear malformed credential: %w", err)
		}
	case errors.Is(err, model.ErrCredentialNotFound):
	default:
		return fmt.Errorf("load credential: %w", err)
	}

	return m.establishGuest(ctx)
}

// OnLoginSuccess adopts the credential returned by a successful login
func (m *Manager) OnLoginSuccess(ctx context.Context, result *model.AuthResult) error {
	return m.signIn(ctx, result, model.PlayerTypeUser)
}

// OnEmailVerifiedSuccess adopts the credential returned by email verification
func (m *Manager) OnEmailVerifiedSuccess(ctx context.Context, result *model.AuthResult) error {
	return m.signIn(ctx, result, model.PlayerTypeUser)
}

// OnGuestEstablished adopts a guest credential obtained outside the manager
func (m *Manager) OnGuestEstablished(ctx context.Context, result *model.AuthResult) error {
	return m.signIn(ctx, result, model.PlayerTypeGuest)
}

// Logout discards the current identity and starts a fresh guest session. A
// failed bootstrap is returned; the previous identity is not restored.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.checkSettled(); err != nil {
		return err
	}

	m.transition.Lock()
	if err := m.store.Clear(ctx); err != nil {
		m.transition.Unlock()
		return fmt.Errorf("clear credential: %w", err)
	}

	m.mu.Lock()
	previous := m.player
	m.player = nil
	m.expiresAt = nil
	m.reauthRequired = false
	m.state = model.SessionInitializing
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.transition.Unlock()
	m.publish(snap)

	if previous != nil {
		m.logger.Info("logged out", slog.Int64("player_id", int64(previous.ID)))
	}

	return m.establishGuest(ctx)
}

// Teardown detaches the manager from the bus. It is safe to call more than once.
func (m *Manager) Teardown() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns the current lifecycle state
func (m *Manager) State() model.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Player returns the current player, if an identity is established
func (m *Manager) Player() (model.Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.player == nil {
		return model.Player{}, false
	}
	return *m.player, true
}

// Snapshot returns a consistent copy of the session
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:          m.state,
		ReauthRequired: m.reauthRequired,
	}
	if m.player != nil {
		p := *m.player
		snap.Player = &p
	}
	if m.expiresAt != nil {
		t := *m.expiresAt
		snap.ExpiresAt = &t
	}
	return snap
}

func (m *Manager) checkSettled() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.settled {
		return model.ErrNotInitialized
	}
	return nil
}

func (m *Manager) establishGuest(ctx context.Context) error {
	result, err := m.bootstrapper.CreateGuestSession(ctx)
	if err != nil {
		m.logger.Error("guest bootstrap failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", model.ErrBootstrapFailure, err)
	}
	return m.apply(ctx, result, model.PlayerTypeGuest)
}

func (m *Manager) signIn(ctx context.Context, result *model.AuthResult, playerType model.PlayerType) error {
	if err := m.checkSettled(); err != nil {
		return err
	}
	if result == nil || result.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", model.ErrMalformedCredential)
	}
	return m.apply(ctx, result, playerType)
}

// apply stores the credential, then moves Player and state together
func (m *Manager) apply(ctx context.Context, result *model.AuthResult, playerType model.PlayerType) error {
	m.transition.Lock()
	if err := m.store.Save(ctx, result.AccessToken); err != nil {
		m.transition.Unlock()
		return fmt.Errorf("save credential: %w", err)
	}

	player := model.Player{
		ID:          result.PlayerID,
		Type:        playerType,
		DisplayName: result.DisplayName,
	}

	var expiresAt *time.Time
	if claims, err := credential.Parse(result.AccessToken); err == nil {
		expiresAt = claims.ExpiresAt
		// Fill whatever the response body left out from the claims
		if player.ID == 0 {
			player.ID = claims.PlayerID
		}
		if player.DisplayName == "" {
			player.DisplayName = claims.DisplayName
		}
	}

	m.mu.Lock()
	m.player = &player
	m.expiresAt = expiresAt
	m.reauthRequired = false
	m.state = model.StateForType(playerType)
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.transition.Unlock()

	m.logger.Info("session established",
		slog.String("state", snap.State.String()),
		slog.Int64("player_id", int64(player.ID)))

	m.publish(snap)
	return nil
}

// adopt moves to the identity described by claims
func (m *Manager) adopt(claims model.Claims) {
	player := claims.Player()

	m.transition.Lock()
	m.mu.Lock()
	m.player = &player
	m.expiresAt = claims.ExpiresAt
	m.reauthRequired = false
	m.state = model.StateForType(claims.PlayerType)
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.transition.Unlock()

	m.publish(snap)
}

func (m *Manager) handleEvent(e model.Event) {
	switch e.Type {
	case model.EventCredentialUpdated:
		claims, err := credential.Parse(e.Credential)
		if err != nil {
			m.logger.Warn("ignoring unparseable refreshed credential", slog.String("error", err.Error()))
			return
		}
		m.logger.Info("credential refreshed", slog.Int64("player_id", int64(claims.PlayerID)))
		m.adopt(claims)

	case model.EventReauthRequired:
		m.mu.Lock()
		m.reauthRequired = true
		snap := m.snapshotLocked()
		m.mu.Unlock()

		m.logger.Warn("re-authentication required")
		m.publish(snap)
	}
}

func (m *Manager) publish(snap Snapshot) {
	m.bus.Publish(model.Event{
		Type:   model.EventSessionChanged,
		State:  snap.State,
		Player: snap.Player,
	})
}
