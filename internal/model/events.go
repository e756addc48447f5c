package model

import "time"

// EventType identifies the type of notification
type EventType string

const (
	// EventCredentialUpdated is published when a refreshed credential was stored
	EventCredentialUpdated EventType = "credential_updated"
	// EventReauthRequired is published when a user credential expired and the
	// player must sign in again
	EventReauthRequired EventType = "reauth_required"
	// EventSessionChanged is published after every session transition
	EventSessionChanged EventType = "session_changed"
)

// Event is a process-wide notification. Only the fields relevant to Type are set.
type Event struct {
	Type      EventType
	Timestamp time.Time

	Credential Credential   // EventCredentialUpdated
	State      SessionState // EventSessionChanged
	Player     *Player      // EventSessionChanged, nil when no identity
}
