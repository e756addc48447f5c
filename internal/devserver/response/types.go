package response

import "github.com/mcoot/jeopardyze-client/internal/model"

// Token is returned by every endpoint that establishes an identity
type Token struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	PlayerID    model.PlayerID `json:"player_id"`
	DisplayName string         `json:"display_name"`
}

// TokenFor builds a Token response for player
func TokenFor(cred model.Credential, player *model.Player) Token {
	return Token{
		AccessToken: cred.Raw(),
		TokenType:   "bearer",
		PlayerID:    player.ID,
		DisplayName: player.DisplayName,
	}
}

// Registration is returned by POST /auth/register
type Registration struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// Health is returned by GET /health
type Health struct {
	Status string `json:"status"`
}
