package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists a single credential [Bundle] as a JSON blob at a fixed path.
//
// Writes go through a temp file in the same directory followed by a rename,
// so a crash mid-write leaves either the old bundle or the new one, never a
// torn file.
type Store struct {
	path string
}

// NewStore creates a store for the bundle at path. A leading "~/" is
// expanded against the user's home directory.
func NewStore(path string) (*Store, error) {
	if len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	return &Store{path: path}, nil
}

// Path returns the resolved bundle path.
func (s *Store) Path() string { return s.path }

// Load reads the persisted bundle. A missing file is not an error: it
// returns (nil, nil), the absent state.
func (s *Store) Load() (*Bundle, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential bundle: %w", err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse credential bundle: %w", err)
	}

	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	return &bundle, nil
}

// Save atomically writes the bundle to disk with owner-only permissions.
func (s *Store) Save(bundle *Bundle) error {
	if err := bundle.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential bundle: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".bundle-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp bundle file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp bundle file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp bundle file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set bundle permissions: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace credential bundle: %w", err)
	}

	return nil
}

// Clear removes the persisted bundle. Clearing an absent bundle is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential bundle: %w", err)
	}
	return nil
}
