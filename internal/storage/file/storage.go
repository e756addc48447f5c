package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcoot/jeopardyze-client/internal/model"
	"github.com/mcoot/jeopardyze-client/internal/storage"
)

const credentialFileName = "credential"

// Storage keeps the credential in <dir>/<origin>/credential
type Storage struct {
	path string
}

// New creates a file store for the given backend origin under dir
func New(dir, origin string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("state directory is required")
	}
	if origin == "" {
		return nil, errors.New("origin is required")
	}
	return &Storage{path: filepath.Join(dir, origin, credentialFileName)}, nil
}

// DefaultDir returns ~/.jeopardyze, or a relative fallback when there is no home
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jeopardyze"
	}
	return filepath.Join(home, ".jeopardyze")
}

// Ensure Storage implements the interface
var _ storage.CredentialStore = (*Storage)(nil)

// Path returns the credential file location
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) Load(ctx context.Context) (model.Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", model.ErrCredentialNotFound
		}
		return "", fmt.Errorf("read credential: %w", err)
	}

	cred := strings.TrimSpace(string(data))
	if cred == "" {
		return "", model.ErrCredentialNotFound
	}
	return model.Credential(cred), nil
}

func (s *Storage) Save(ctx context.Context, cred model.Credential) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial credential
	tmp, err := os.CreateTemp(dir, credentialFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp credential: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod credential: %w", err)
	}
	if _, err := tmp.WriteString(cred.Raw()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace credential: %w", err)
	}
	return nil
}

func (s *Storage) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}
