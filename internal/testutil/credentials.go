package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/jeopardyze-client/internal/model"
)

// TestSecret signs credentials minted by tests
var TestSecret = []byte("test-secret")

// Credential mints a signed credential for the given identity
func Credential(t testing.TB, id model.PlayerID, playerType model.PlayerType, displayName string) model.Credential {
	t.Helper()
	return CredentialWithClaims(t, jwt.MapClaims{
		"sub":          id.String(),
		"player_id":    id.String(),
		"player_type":  string(playerType),
		"display_name": displayName,
		"exp":          time.Now().Add(time.Hour).Unix(),
	})
}

// CredentialWithClaims mints a signed credential carrying exactly claims
func CredentialWithClaims(t testing.TB, claims jwt.MapClaims) model.Credential {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(TestSecret)
	if err != nil {
		t.Fatalf("sign credential: %v", err)
	}
	return model.Credential(token)
}
