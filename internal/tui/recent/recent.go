// ABOUTME: Remembers the usernames that recently signed in
// ABOUTME: Stored as JSON in the XDG config directory to prefill the login form

package recent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxUsernames is the maximum number of usernames kept
const MaxUsernames = 5

// Usernames manages the recent login list. Passwords are never stored.
type Usernames struct {
	configDir string
	names     []string
}

type recentData struct {
	Usernames []string `json:"usernames"`
}

// New creates a manager that reads and writes under configDir
func New(configDir string) *Usernames {
	return &Usernames{configDir: configDir}
}

// DefaultConfigDir returns the default config directory following XDG conventions
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "panel-municipal")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "panel-municipal")
}

func (u *Usernames) configFile() string {
	return filepath.Join(u.configDir, "recent.json")
}

// Load reads the list from disk. A missing or corrupt file yields an empty
// list.
func (u *Usernames) Load() ([]string, error) {
	data, err := os.ReadFile(u.configFile())
	if errors.Is(err, os.ErrNotExist) {
		u.names = []string{}
		return u.names, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading recent usernames: %w", err)
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		u.names = []string{}
		return u.names, nil
	}

	u.names = dedupe(recent.Usernames)
	return u.names, nil
}

// Save writes names to disk, keeping at most MaxUsernames.
func (u *Usernames) Save(names []string) error {
	if u.configDir == "" {
		return errors.New("no config directory")
	}
	if err := os.MkdirAll(u.configDir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	names = dedupe(names)
	if len(names) > MaxUsernames {
		names = names[:MaxUsernames]
	}
	u.names = names

	data, err := json.MarshalIndent(recentData{Usernames: names}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(u.configFile(), data, 0o600)
}

// Add moves username to the front of the list.
func (u *Usernames) Add(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}
	if u.names == nil {
		if _, err := u.Load(); err != nil {
			u.names = []string{}
		}
	}
	return u.Save(append([]string{username}, u.names...))
}

// List returns the current list, loading it on first use
func (u *Usernames) List() []string {
	if u.names == nil {
		u.Load()
	}
	return u.names
}

// Last returns the most recent username, or "".
func (u *Usernames) Last() string {
	if names := u.List(); len(names) > 0 {
		return names[0]
	}
	return ""
}

// dedupe drops blanks and case-insensitive repeats, keeping first occurrences.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
