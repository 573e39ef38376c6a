// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies configuration precedence, client construction and exit codes

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gadibarra/panel-municipal/internal/client"
)

func TestGetAPIURL_Default(t *testing.T) {
	isolate(t)

	url := GetAPIURL()
	if url != "http://localhost:8080" {
		t.Errorf("expected default URL http://localhost:8080, got %s", url)
	}
}

func TestGetAPIURL_FromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("PANEL_API_URL", "http://backend.example.com")

	url := GetAPIURL()
	if url != "http://backend.example.com" {
		t.Errorf("expected http://backend.example.com, got %s", url)
	}
}

func TestGetAPIURL_FromConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "panel.yaml")
	if err := os.WriteFile(path, []byte("api_url: http://yaml.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	configPath = path

	if url := GetAPIURL(); url != "http://yaml.example.com" {
		t.Errorf("expected config file URL, got %s", url)
	}
}

func TestGetAPIURL_FlagOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("PANEL_API_URL", "http://backend.example.com")
	apiURL = "http://flag-override.example.com"

	url := GetAPIURL()
	if url != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env, got %s", url)
	}
}

func TestJSONOutput(t *testing.T) {
	isolate(t)
	jsonOutput = true

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestWithClient_BadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("PANEL_REQUEST_TIMEOUT", "soon")

	code, out := run(t, func(context.Context, io.Writer, *client.Client) int {
		t.Error("fn must not run when configuration fails")
		return 0
	})
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if out == "" {
		t.Error("expected an error message")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		kind client.ErrorKind
		want int
	}{
		{client.KindUnauthorized, 1},
		{client.KindForbidden, 1},
		{client.KindNotFound, 1},
		{client.KindBackend, 1},
		{client.KindValidation, 1},
		{client.KindTimeout, 2},
		{client.KindNetwork, 2},
		{client.KindServer, 2},
		{client.KindDecode, 2},
		{client.KindUnavailable, 2},
		{client.KindUnknown, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := exitCode(tt.kind); got != tt.want {
				t.Errorf("exitCode(%s) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestFormatFields(t *testing.T) {
	got := formatFields("ID", "7", "Descripción", "", "Nombre", "Feria")
	want := "ID:     7\nNombre: Feria"
	if got != want {
		t.Errorf("formatFields() = %q, want %q", got, want)
	}
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"login"}, {"logout"}, {"whoami"}, {"health"}, {"check"}, {"dashboard"},
		{"proyectos", "pending"}, {"proyectos", "approve"}, {"proyectos", "reject"},
		{"proyectos", "create"}, {"requerimientos", "estado"}, {"mensajes", "send"},
		{"mensajes", "read"}, {"ferias", "update"}, {"locales", "delete"},
		{"api"}, {"tui"}, {"serve-dev"},
	} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not found: %v", path, err)
		}
	}

	if cmd, _, _ := rootCmd.Find([]string{"mensajes", "create"}); cmd.Name() == "create" {
		t.Error("mensajes has send instead of create")
	}
}
