package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mcoot/jeopardyze-client/internal/dependencies/clock"
	"github.com/mcoot/jeopardyze-client/internal/model"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// tokenClaims is the payload of an issued credential
type tokenClaims struct {
	jwt.RegisteredClaims

	PlayerID    string           `json:"player_id"`
	PlayerType  model.PlayerType `json:"player_type"`
	DisplayName string           `json:"display_name"`
}

// Tokens issues and verifies HS256 credentials
type Tokens struct {
	secret   []byte
	clock    clock.Clock
	guestTTL time.Duration
	userTTL  time.Duration
	parser   *jwt.Parser
}

// NewTokens creates a token issuer. Guest and user credentials get separate lifetimes.
func NewTokens(secret []byte, clk clock.Clock, guestTTL, userTTL time.Duration) *Tokens {
	return &Tokens{
		secret:   secret,
		clock:    clk,
		guestTTL: guestTTL,
		userTTL:  userTTL,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(clock.TimeFunc(clk)),
			jwt.WithExpirationRequired(),
		),
	}
}

// Issue mints a credential for player
func (t *Tokens) Issue(player model.Player) (model.Credential, error) {
	now := t.clock.Now()
	ttl := t.userTTL
	if player.IsGuest() {
		ttl = t.guestTTL
	}

	id := player.ID.String()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		PlayerID:    id,
		PlayerType:  player.Type,
		DisplayName: player.DisplayName,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return model.Credential(signed), nil
}

// Verify checks the signature and expiry of cred and returns its player
func (t *Tokens) Verify(cred model.Credential) (*model.Player, error) {
	var claims tokenClaims
	_, err := t.parser.ParseWithClaims(cred.Raw(), &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.PlayerID, 10, 64)
	if err != nil || !claims.PlayerType.Valid() {
		return nil, ErrInvalidToken
	}

	return &model.Player{
		ID:          model.PlayerID(id),
		Type:        claims.PlayerType,
		DisplayName: claims.DisplayName,
	}, nil
}
