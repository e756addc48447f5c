package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/jeopardyze-client/internal/devserver/apierr"
	"github.com/mcoot/jeopardyze-client/internal/model"
)

type contextKey string

const playerContextKey contextKey = "player"

// TokenVerifier validates bearer credentials
type TokenVerifier interface {
	Verify(cred model.Credential) (*model.Player, error)
}

// PlayerLookup confirms the player named by a credential still exists
type PlayerLookup interface {
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
}

// Auth rejects requests without a valid bearer credential
func Auth(tokens TokenVerifier, players PlayerLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			claimed, err := tokens.Verify(model.Credential(token))
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			player, err := players.GetPlayer(r.Context(), claimed.ID)
			if err != nil {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			// A guest credential stops working once its guest became a user
			if player.Type != claimed.Type {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, player)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetPlayer returns the authenticated player from the request context
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// MustGetPlayer returns the authenticated player or panics
func MustGetPlayer(ctx context.Context) *model.Player {
	player := GetPlayer(ctx)
	if player == nil {
		panic("no player in context - auth middleware not applied?")
	}
	return player
}
