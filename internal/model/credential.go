package model

import "time"

// Credential is an opaque bearer token issued by the backend
type Credential string

// String returns a redacted form safe for logs
func (c Credential) String() string {
	if len(c) <= 12 {
		return "[redacted]"
	}
	return string(c[:4]) + "…" + string(c[len(c)-4:])
}

// Raw returns the full token value for use in an Authorization header
func (c Credential) Raw() string {
	return string(c)
}

// Claims are the identity facts embedded in a credential's payload segment.
// They are decoded without signature verification and are informational only.
type Claims struct {
	PlayerID    PlayerID
	PlayerType  PlayerType
	DisplayName string
	ExpiresAt   *time.Time // nil when the credential carries no exp claim
}

// Player projects the claims onto a Player
func (c Claims) Player() Player {
	return Player{
		ID:          c.PlayerID,
		Type:        c.PlayerType,
		DisplayName: c.DisplayName,
	}
}
