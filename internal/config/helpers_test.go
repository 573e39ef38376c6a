// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"strings"
	"testing"
)

// withCleanPanelEnv unsets every PANEL_* variable for the duration of the
// test, then sets the extra values given. t.Setenv restores the originals.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    withCleanPanelEnv(t, map[string]string{
//	        "PANEL_API_URL": "http://backend:9000",
//	    })
//	}
func withCleanPanelEnv(t *testing.T, extra map[string]string) {
	t.Helper()

	for _, env := range os.Environ() {
		key, _, _ := strings.Cut(env, "=")
		if strings.HasPrefix(key, "PANEL_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}

	for key, value := range extra {
		t.Setenv(key, value)
	}
}

// writeConfigFile writes a YAML config into a temp dir and returns its path.
func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := t.TempDir() + "/panel.yaml"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}
