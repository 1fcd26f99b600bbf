package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clinicbook/clinicbook/pkg/client"
)

// defaultSessionPath places the session file under the user config directory,
// falling back to the working directory when none is available.
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".clinicbook-session.json"
	}
	return filepath.Join(dir, "clinicbook", "session.json")
}

// loadSession reads the saved session. A missing file yields a zero session
// and no error.
func loadSession(path string) (client.Session, error) {
	var sess client.Session
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sess, nil
		}
		return sess, fmt.Errorf("read session file: %w", err)
	}
	if err := json.Unmarshal(raw, &sess); err != nil {
		return client.Session{}, fmt.Errorf("parse session file: %w", err)
	}
	return sess, nil
}

// saveSession writes the session with user-only permissions; the token is a
// bearer credential.
func saveSession(path string, sess client.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// clearSession removes the saved session. Missing files are fine.
func clearSession(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
