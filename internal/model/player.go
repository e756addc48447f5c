package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PlayerID uniquely identifies a player on the backend
type PlayerID int64

// UnmarshalJSON accepts both a JSON integer and a numeral string
func (id *PlayerID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return fmt.Errorf("player id is null")
	}

	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	v, err := json.Number(raw).Int64()
	if err != nil {
		return fmt.Errorf("player id %q is not an integer", raw)
	}
	*id = PlayerID(v)
	return nil
}

// String returns the decimal form of the id
func (id PlayerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// PlayerType distinguishes anonymous guests from registered users
type PlayerType string

const (
	PlayerTypeGuest PlayerType = "guest"
	PlayerTypeUser  PlayerType = "user"
)

// Valid reports whether t is a known player type
func (t PlayerType) Valid() bool {
	return t == PlayerTypeGuest || t == PlayerTypeUser
}

// Player is the in-memory projection of the currently trusted claims
type Player struct {
	ID          PlayerID   `json:"id"`
	Type        PlayerType `json:"type"`
	DisplayName string     `json:"display_name"`
}

// IsGuest reports whether the player is an anonymous guest
func (p Player) IsGuest() bool {
	return p.Type == PlayerTypeGuest
}

// AuthResult is the identity payload returned by the guest, login and
// verify-email endpoints
type AuthResult struct {
	AccessToken Credential `json:"access_token"`
	PlayerID    PlayerID   `json:"player_id"`
	DisplayName string     `json:"display_name"`
}
