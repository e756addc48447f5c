// Package auth holds the development backend's accounts: guests, registered
// users awaiting e-mail verification, and verified users.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/jeopardyze-client/internal/dependencies/clock"
	"github.com/mcoot/jeopardyze-client/internal/dependencies/random"
	"github.com/mcoot/jeopardyze-client/internal/model"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("incorrect username/email or password")
	ErrUsernameExists     = errors.New("username is already registered")
	ErrEmailExists        = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrNotVerified        = errors.New("email is not verified")
	ErrPlayerNotFound     = errors.New("player not found")
)

const (
	guestNameLength = 6
	codeLength      = 6
)

// account is a registered user
type account struct {
	playerID     model.PlayerID
	username     string
	email        string
	passwordHash []byte
	verified     bool

	code          string
	codeExpiresAt time.Time
}

// Registration is a pending account waiting for its verification code
type Registration struct {
	Email string
	Code  string
}

// RegisterInput holds the details of a new account
type RegisterInput struct {
	Username string
	Email    string
	Password string
	// GuestID, when set, converts that guest into the new user
	GuestID *model.PlayerID
}

// Config holds configuration for the auth service
type Config struct {
	CodeTTL    time.Duration
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		CodeTTL:    10 * time.Minute,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service handles accounts and guest identities
type Service struct {
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
	cfg    Config

	mu       sync.RWMutex
	nextID   model.PlayerID
	players  map[model.PlayerID]*model.Player
	accounts map[string]*account // by lowercased email
}

// New creates a new auth service
func New(clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.CodeTTL == 0 {
		cfg.CodeTTL = defaults.CodeTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "auth")),
		cfg:      cfg,
		players:  make(map[model.PlayerID]*model.Player),
		accounts: make(map[string]*account),
	}
}

// CreateGuest creates a new anonymous player
func (s *Service) CreateGuest(ctx context.Context) (*model.Player, error) {
	name := "Guest_" + s.random.String(guestNameLength, random.LowerAlnum)

	s.mu.Lock()
	defer s.mu.Unlock()

	player := s.newPlayerLocked(model.PlayerTypeGuest, name)
	s.logger.Info("created guest", slog.Int64("player_id", int64(player.ID)))
	return clonePlayer(player), nil
}

// Register creates an unverified account and issues a verification code.
// Registering again with the same username and e-mail before verifying
// replaces the password and issues a new code.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Registration, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	code := s.random.String(codeLength, random.Digits)
	emailKey := strings.ToLower(in.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, pending := s.accounts[emailKey]
	if pending && (acct.verified || !strings.EqualFold(acct.username, in.Username)) {
		return nil, ErrEmailExists
	}
	for _, other := range s.accounts {
		if other != acct && strings.EqualFold(other.username, in.Username) {
			return nil, ErrUsernameExists
		}
	}

	if !pending {
		acct = &account{
			playerID: s.claimGuestLocked(in.GuestID),
			username: in.Username,
			email:    in.Email,
		}
		s.accounts[emailKey] = acct
	}
	acct.passwordHash = hash
	acct.code = code
	acct.codeExpiresAt = s.clock.Now().Add(s.cfg.CodeTTL)

	s.logger.Info("verification code issued",
		slog.String("email", in.Email),
		slog.String("code", code),
		slog.Bool("resend", pending))

	return &Registration{Email: in.Email, Code: code}, nil
}

// VerifyEmail confirms a verification code and returns the verified user
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	if acct.code == "" || acct.code != code || s.clock.Now().After(acct.codeExpiresAt) {
		return nil, ErrInvalidCode
	}

	acct.verified = true
	acct.code = ""

	player := s.players[acct.playerID]
	player.Type = model.PlayerTypeUser
	player.DisplayName = acct.username
	return clonePlayer(player), nil
}

// Login authenticates a verified user by username or e-mail
func (s *Service) Login(ctx context.Context, usernameOrEmail, password string) (*model.Player, error) {
	s.mu.RLock()
	acct := s.findAccountLocked(usernameOrEmail)
	s.mu.RUnlock()

	if acct == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acct.verified {
		return nil, ErrNotVerified
	}

	return s.GetPlayer(ctx, acct.playerID)
}

// GetPlayer returns a player by id
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, ok := s.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return clonePlayer(player), nil
}

func (s *Service) findAccountLocked(usernameOrEmail string) *account {
	if acct, ok := s.accounts[strings.ToLower(usernameOrEmail)]; ok {
		return acct
	}
	for _, acct := range s.accounts {
		if strings.EqualFold(acct.username, usernameOrEmail) {
			return acct
		}
	}
	return nil
}

// claimGuestLocked reuses the id of an existing guest, or allocates a new player
func (s *Service) claimGuestLocked(guestID *model.PlayerID) model.PlayerID {
	if guestID != nil {
		if p, ok := s.players[*guestID]; ok && p.IsGuest() && !s.ownedLocked(*guestID) {
			return *guestID
		}
	}
	return s.newPlayerLocked(model.PlayerTypeGuest, "").ID
}

func (s *Service) ownedLocked(id model.PlayerID) bool {
	for _, acct := range s.accounts {
		if acct.playerID == id {
			return true
		}
	}
	return false
}

func (s *Service) newPlayerLocked(playerType model.PlayerType, name string) *model.Player {
	s.nextID++
	player := &model.Player{ID: s.nextID, Type: playerType, DisplayName: name}
	s.players[player.ID] = player
	return player
}

func clonePlayer(p *model.Player) *model.Player {
	c := *p
	return &c
}
