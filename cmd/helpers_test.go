// ABOUTME: Shared fixtures for command tests
// ABOUTME: Starts the dev backend and isolates config and token directories per test

package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/config"
	"github.com/gadibarra/panel-municipal/internal/devserver"
	"github.com/gadibarra/panel-municipal/internal/logger"
)

// testBackend starts a dev server and points the CLI configuration at it,
// with token tiers under temporary directories.
func testBackend(t *testing.T) string {
	t.Helper()
	srv, err := devserver.New(config.Defaults().Dev,
		devserver.WithHashCost(bcrypt.MinCost),
		devserver.WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("devserver.New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	isolate(t)
	t.Setenv("PANEL_API_URL", ts.URL)
	return ts.URL
}

// isolate resets global flags and keeps config and tokens out of the
// user's real directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("PANEL_CONFIG", "")
	t.Setenv("PANEL_API_URL", "")
	t.Setenv("PANEL_VALKEY_URI", "")
	t.Setenv("PANEL_TOKEN_DIR", t.TempDir())
	t.Setenv("PANEL_SESSION_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	apiURL, jsonOutput, configPath = "", false, ""
	t.Cleanup(func() { apiURL, jsonOutput, configPath = "", false, "" })
}

// run executes fn with a freshly built client, as a command invocation would.
func run(t *testing.T, fn func(ctx context.Context, w io.Writer, c *client.Client) int) (int, string) {
	t.Helper()
	var buf strings.Builder
	code := withClient(context.Background(), &buf, fn)
	return code, buf.String()
}

func loginAs(t *testing.T, username, password string) {
	t.Helper()
	code, out := run(t, func(ctx context.Context, w io.Writer, c *client.Client) int {
		return runLogin(ctx, w, c, username, password)
	})
	if code != 0 {
		t.Fatalf("login %s exited %d: %s", username, code, out)
	}
}

func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
}
