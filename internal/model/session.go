package model

// SessionState is the lifecycle state of the local identity
type SessionState int

const (
	SessionUninitialized SessionState = iota
	SessionInitializing
	SessionGuest
	SessionAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionUninitialized:
		return "uninitialized"
	case SessionInitializing:
		return "initializing"
	case SessionGuest:
		return "guest"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON output
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StateForType returns the settled state for a player type
func StateForType(t PlayerType) SessionState {
	if t == PlayerTypeUser {
		return SessionAuthenticated
	}
	return SessionGuest
}
