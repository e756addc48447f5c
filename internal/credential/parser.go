// Package credential decodes the identity claims carried by a bearer
// credential. Signatures are never verified here: the claims are only used to
// describe the local identity, authorization is decided by the backend.
package credential

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/jeopardyze-client/internal/model"
)

// payload holds the claims the client relies on. Registered claims other than
// exp are not decoded, so foreign or oddly typed ones never fail a credential.
type payload struct {
	PlayerID    *model.PlayerID  `json:"player_id"`
	PlayerType  model.PlayerType `json:"player_type"`
	DisplayName string           `json:"display_name"`
	ExpiresAt   json.RawMessage  `json:"exp"`
}

var segmentDecoder = jwt.NewParser()

// Parse decodes the claims segment of cred. All failures wrap
// model.ErrMalformedCredential.
func Parse(cred model.Credential) (model.Claims, error) {
	parts := strings.Split(string(cred), ".")
	if len(parts) != 3 {
		return model.Claims{}, fmt.Errorf("%w: expected 3 segments, got %d", model.ErrMalformedCredential, len(parts))
	}

	raw, err := segmentDecoder.DecodeSegment(parts[1])
	if err != nil {
		return model.Claims{}, fmt.Errorf("%w: decode payload: %v", model.ErrMalformedCredential, err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Claims{}, fmt.Errorf("%w: parse payload: %v", model.ErrMalformedCredential, err)
	}

	switch {
	case p.PlayerID == nil:
		return model.Claims{}, fmt.Errorf("%w: missing player_id", model.ErrMalformedCredential)
	case p.PlayerType == "":
		return model.Claims{}, fmt.Errorf("%w: missing player_type", model.ErrMalformedCredential)
	case !p.PlayerType.Valid():
		return model.Claims{}, fmt.Errorf("%w: unknown player_type %q", model.ErrMalformedCredential, p.PlayerType)
	case p.DisplayName == "":
		return model.Claims{}, fmt.Errorf("%w: missing display_name", model.ErrMalformedCredential)
	}

	return model.Claims{
		PlayerID:    *p.PlayerID,
		PlayerType:  p.PlayerType,
		DisplayName: p.DisplayName,
		ExpiresAt:   expiry(p.ExpiresAt),
	}, nil
}

// expiry reads exp for display. An exp that is not a NumericDate is treated as absent.
func expiry(raw json.RawMessage) *time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var exp jwt.NumericDate
	if err := json.Unmarshal(raw, &exp); err != nil {
		return nil
	}
	t := exp.Time
	return &t
}
