// ABOUTME: File-backed token tier for session and persistent storage
// ABOUTME: Writes a small JSON record with owner-only permissions

package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type tokenFile struct {
	Token   string    `json:"access_token"`
	SavedAt time.Time `json:"saved_at"`
}

// FileTier keeps the token in a JSON file. A non-zero MaxAge makes the tier
// short-lived: records older than MaxAge are discarded on read.
type FileTier struct {
	name   string
	path   string
	maxAge time.Duration
	now    func() time.Time
}

// NewFileTier returns a tier writing to dir/token.json.
func NewFileTier(name, dir string, maxAge time.Duration) *FileTier {
	return &FileTier{
		name:   name,
		path:   filepath.Join(dir, "token.json"),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// SessionTier is the short-lived tier under the runtime directory.
func SessionTier(dir string, maxAge time.Duration) *FileTier {
	return NewFileTier("session", dir, maxAge)
}

// PersistentTier survives restarts under the user config directory.
func PersistentTier(dir string) *FileTier {
	return NewFileTier("persistent", dir, 0)
}

func (f *FileTier) Name() string { return f.name }

// Path returns the file the tier writes to.
func (f *FileTier) Path() string { return f.path }

func (f *FileTier) Load(_ context.Context) (string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token file %s: %w", f.path, err)
	}

	var rec tokenFile
	if err := json.Unmarshal(b, &rec); err != nil {
		return "", fmt.Errorf("failed to parse token file %s: %w", f.path, err)
	}

	if f.maxAge > 0 && f.now().Sub(rec.SavedAt) > f.maxAge {
		_ = os.Remove(f.path)
		return "", nil
	}
	return strings.TrimSpace(rec.Token), nil
}

func (f *FileTier) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}

	b, err := json.Marshal(tokenFile{Token: token, SavedAt: f.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode token file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

func (f *FileTier) Delete(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
