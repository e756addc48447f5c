package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mcoot/jeopardyze-client/internal/model"
)

// CredentialStore persists the single bearer credential for one backend origin.
// It holds at most one credential and tracks no expiry.
type CredentialStore interface {
	// Load returns the stored credential or model.ErrCredentialNotFound
	Load(ctx context.Context) (model.Credential, error)
	// Save replaces any stored credential
	Save(ctx context.Context, cred model.Credential) error
	// Clear removes the stored credential; clearing an empty store is not an error
	Clear(ctx context.Context) error
}

// OriginKey normalises a backend URL to a key identifying its origin
// (scheme, host and port), e.g. "http_localhost_8000".
func OriginKey(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return "", fmt.Errorf("server url %q must include scheme and host", serverURL)
	}

	scheme := strings.ToLower(u.Scheme)
	port := u.Port()
	if port == "" {
		switch scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}

	host := strings.ToLower(u.Hostname())
	host = strings.NewReplacer(":", "-", "[", "", "]", "").Replace(host)

	return fmt.Sprintf("%s_%s_%s", scheme, host, port), nil
}
