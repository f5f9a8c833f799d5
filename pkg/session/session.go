// Package session persists the platform session credential across runs.
// One durable slot, nothing else: collections and profiles are rebuilt
// from the backend on every start.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// saved is the on-disk shape of the credential slot.
type saved struct {
	Token string `json:"token"`
}

// Path returns the credential file location under the user config dir.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}

	return filepath.Join(dir, "disclosoor", "session.json"), nil
}

// Load returns the stored session token. A missing file is not an error;
// it simply means no session has been saved.
func Load() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("reading session file: %w", err)
	}

	var s saved
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parsing session file: %w", err)
	}

	return strings.TrimSpace(s.Token), nil
}

// Save stores the session token, creating the config directory as needed.
func Save(token string) error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	payload, err := json.MarshalIndent(saved{Token: strings.TrimSpace(token)}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	return nil
}

// Clear removes the stored credential. Clearing an absent slot is a
// no-op.
func Clear() error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}

	return nil
}
