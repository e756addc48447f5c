package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/jeopardyze-client/internal/credential"
	"github.com/mcoot/jeopardyze-client/internal/dependencies/mocks"
	"github.com/mcoot/jeopardyze-client/internal/model"
)

func newTestTokens() (*Tokens, *mocks.MockClock) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return NewTokens([]byte("secret"), clk, time.Hour, 24*time.Hour), clk
}

func TestIssuedTokenRoundTrips(t *testing.T) {
	tokens, _ := newTestTokens()
	player := model.Player{ID: 42, Type: model.PlayerTypeUser, DisplayName: "alice"}

	cred, err := tokens.Issue(player)
	require.NoError(t, err)

	verified, err := tokens.Verify(cred)
	require.NoError(t, err)
	assert.Equal(t, player, *verified)
}

func TestIssuedTokenIsReadableByClientParser(t *testing.T) {
	tokens, _ := newTestTokens()

	cred, err := tokens.Issue(model.Player{ID: 7, Type: model.PlayerTypeGuest, DisplayName: "Guest_x"})
	require.NoError(t, err)

	claims, err := credential.Parse(cred)
	require.NoError(t, err)
	assert.Equal(t, model.Player{ID: 7, Type: model.PlayerTypeGuest, DisplayName: "Guest_x"}, claims.Player())
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC), claims.ExpiresAt.UTC())
}

func TestGuestTokenExpiresBeforeUserToken(t *testing.T) {
	tokens, clk := newTestTokens()

	guest, err := tokens.Issue(model.Player{ID: 1, Type: model.PlayerTypeGuest, DisplayName: "Guest_a"})
	require.NoError(t, err)
	user, err := tokens.Issue(model.Player{ID: 2, Type: model.PlayerTypeUser, DisplayName: "bob"})
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)

	_, err = tokens.Verify(guest)
	assert.ErrorIs(t, err, ErrExpiredToken)
	_, err = tokens.Verify(user)
	assert.NoError(t, err)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	tokens, clk := newTestTokens()
	other := NewTokens([]byte("other-secret"), clk, time.Hour, time.Hour)

	cred, err := other.Issue(model.Player{ID: 1, Type: model.PlayerTypeUser, DisplayName: "eve"})
	require.NoError(t, err)

	_, err = tokens.Verify(cred)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens, _ := newTestTokens()

	_, err := tokens.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuedTokensAreUnique(t *testing.T) {
	tokens, _ := newTestTokens()
	player := model.Player{ID: 1, Type: model.PlayerTypeGuest, DisplayName: "Guest_a"}

	first, err := tokens.Issue(player)
	require.NoError(t, err)
	second, err := tokens.Issue(player)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
