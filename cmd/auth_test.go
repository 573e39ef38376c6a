// ABOUTME: Tests for the login, logout and whoami commands
// ABOUTME: Runs against the development backend with tokens in temporary directories

package cmd

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gadibarra/panel-municipal/internal/client"
)

func TestLoginThenWhoami(t *testing.T) {
	testBackend(t)

	code, out := run(t, func(ctx context.Context, w io.Writer, c *client.Client) int {
		return runLogin(ctx, w, c, "admin", "admin123")
	})
	if code != 0 {
		t.Fatalf("login exited %d: %s", code, out)
	}
	if !strings.Contains(out, "Sesión iniciada: admin") {
		t.Errorf("expected session line, got:\n%s", out)
	}

	// A second invocation reads the token from the file tiers.
	code, out = run(t, runWhoami)
	if code != 0 {
		t.Fatalf("whoami exited %d: %s", code, out)
	}
	for _, want := range []string{"Usuario:", "admin", "ADMIN", "Estado:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in whoami output:\n%s", want, out)
		}
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	testBackend(t)

	code, out := run(t, func(ctx context.Context, w io.Writer, c *client.Client) int {
		return runLogin(ctx, w, c, "admin", "nope")
	})
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out, "Error:") {
		t.Errorf("expected an error line, got:\n%s", out)
	}
}

func TestLogin_Unreachable(t *testing.T) {
	isolate(t)
	t.Setenv("PANEL_API_URL", "http://127.0.0.1:1")
	t.Setenv("PANEL_LOGIN_TIMEOUT", "2s")

	code, _ := run(t, func(ctx context.Context, w io.Writer, c *client.Client) int {
		return runLogin(ctx, w, c, "admin", "admin123")
	})
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
}

func TestLogin_JSON(t *testing.T) {
	testBackend(t)
	jsonOutput = true

	code, out := run(t, func(ctx context.Context, w io.Writer, c *client.Client) int {
		return runLogin(ctx, w, c, "funcionario", "funcionario123")
	})
	if code != 0 {
		t.Fatalf("login exited %d: %s", code, out)
	}
	var res struct {
		Success bool `json:"success"`
	}
	decodeJSON(t, out, &res)
	if !res.Success {
		t.Errorf("expected success in JSON output:\n%s", out)
	}
}

func TestWhoami_NoSession(t *testing.T) {
	testBackend(t)

	code, out := run(t, runWhoami)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out, "ninguna") {
		t.Errorf("expected no-session text, got:\n%s", out)
	}
}

func TestLogout(t *testing.T) {
	testBackend(t)
	loginAs(t, "admin", "admin123")

	code, out := run(t, runLogout)
	if code != 0 || !strings.Contains(out, "Sesión cerrada.") {
		t.Errorf("logout = %d, %q", code, out)
	}

	code, out = run(t, runLogout)
	if code != 0 || !strings.Contains(out, "No había una sesión activa.") {
		t.Errorf("second logout = %d, %q", code, out)
	}

	if code, _ := run(t, runWhoami); code != 1 {
		t.Errorf("expected whoami to report no session after logout, got %d", code)
	}
}

func TestResolvePassword(t *testing.T) {
	t.Setenv("PANEL_PASSWORD", "from-env")

	if got, err := resolvePassword("from-flag"); err != nil || got != "from-flag" {
		t.Errorf("flag: got %q, %v", got, err)
	}
	if got, err := resolvePassword(""); err != nil || got != "from-env" {
		t.Errorf("env: got %q, %v", got, err)
	}
}

func TestTokenIdentity(t *testing.T) {
	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	tests := []struct {
		name        string
		token       string
		wantSubject string
		wantRole    string
	}{
		{"role string", sign(jwt.MapClaims{"sub": "ana", "role": "ADMIN"}), "ana", "ADMIN"},
		{"rol string", sign(jwt.MapClaims{"sub": "luis", "rol": "USER"}), "luis", "USER"},
		{"authorities list", sign(jwt.MapClaims{"sub": "eva", "authorities": []string{"ADMIN", "USER"}}), "eva", "ADMIN,USER"},
		{"no role", sign(jwt.MapClaims{"sub": "sol"}), "sol", ""},
		{"opaque", "not-a-jwt", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, role := tokenIdentity(tt.token)
			if subject != tt.wantSubject || role != tt.wantRole {
				t.Errorf("tokenIdentity() = (%q, %q), want (%q, %q)", subject, role, tt.wantSubject, tt.wantRole)
			}
		})
	}
}
