package login

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gadibarra/panel-municipal/internal/client"
)

type fakeAuth struct {
	mu        sync.Mutex
	reachable bool
	result    client.LoginResult
	creds     []client.Credentials
	rechecks  int
}

func (f *fakeAuth) Login(_ context.Context, creds client.Credentials) client.LoginResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = append(f.creds, creds)
	return f.result
}

func (f *fakeAuth) Reachable(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reachable
}

func (f *fakeAuth) Recheck(ctx context.Context) bool {
	f.mu.Lock()
	f.rechecks++
	f.mu.Unlock()
	return f.Reachable(ctx)
}

func (f *fakeAuth) setReachable(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reachable = v
}

func TestNew_PrefillsUsername(t *testing.T) {
	m := New(&fakeAuth{}, "http://localhost:8080", "admin")
	if m.username != "admin" {
		t.Errorf("username = %q, want admin", m.username)
	}
	if m.Status() != StatusChecking {
		t.Errorf("Status() = %v, want checking", m.Status())
	}
}

func TestServerStatus(t *testing.T) {
	tests := []struct {
		name      string
		reachable bool
		want      ServerStatus
	}{
		{"reachable", true, StatusConnected},
		{"unreachable", false, StatusDisconnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(&fakeAuth{reachable: tt.reachable}, "http://srv", "")
			msg := m.checkServer()()

			_, cmd := m.Update(msg)
			if m.Status() != tt.want {
				t.Errorf("Status() = %v, want %v", m.Status(), tt.want)
			}
			if cmd == nil {
				t.Error("Expected a scheduled re-check")
			}
		})
	}
}

func TestServerStatus_StaleResultsIgnored(t *testing.T) {
	m := New(&fakeAuth{reachable: true}, "http://srv", "")
	stale := m.checkServer()()
	m.checkServer()

	if _, cmd := m.Update(stale); cmd != nil {
		t.Error("A stale status must not schedule another re-check")
	}
	if m.Status() != StatusChecking {
		t.Errorf("Status() = %v, want checking", m.Status())
	}
}

func TestRecheck(t *testing.T) {
	m := New(&fakeAuth{reachable: true}, "http://srv", "")
	m.Update(m.checkServer()())
	gen := m.gen

	if _, cmd := m.Update(recheckMsg{gen: gen - 1}); cmd != nil {
		t.Error("An old re-check tick must be ignored")
	}

	_, cmd := m.Update(recheckMsg{gen: gen})
	if cmd == nil || m.Status() != StatusChecking {
		t.Fatalf("Expected a new check, status %v", m.Status())
	}
	if m.Update(cmd()); m.Status() != StatusConnected {
		t.Errorf("Status() = %v, want connected", m.Status())
	}
}

func TestRetryKey(t *testing.T) {
	auth := &fakeAuth{reachable: false}
	m := New(auth, "http://srv", "")
	m.Update(m.checkServer()())
	if m.Status() != StatusDisconnected {
		t.Fatalf("Status() = %v", m.Status())
	}
	gen := m.gen

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil || m.gen != gen+1 || m.Status() != StatusChecking {
		t.Fatalf("ctrl+r should start a new check (gen %d -> %d, status %v)", gen, m.gen, m.Status())
	}

	auth.setReachable(true)
	m.Update(cmd())
	if auth.rechecks != 1 {
		t.Errorf("ctrl+r should bypass the cached answer, rechecks = %d", auth.rechecks)
	}
	if m.Status() != StatusConnected {
		t.Errorf("Status() = %v, want connected after retry", m.Status())
	}
}

func TestSubmit_Success(t *testing.T) {
	auth := &fakeAuth{reachable: true, result: client.LoginResult{
		Success: true,
		Token:   "header.payload.signature",
		User:    &client.User{Username: "admin"},
	}}
	m := New(auth, "http://srv", "admin")
	m.password = "admin123"

	done := m.submit()()
	if !m.Submitting() {
		t.Error("Expected submitting while the request is in flight")
	}

	_, cmd := m.Update(done)
	if m.Submitting() {
		t.Error("Expected submitting to end")
	}
	if cmd == nil {
		t.Fatal("Expected a LoggedInMsg command")
	}
	logged, ok := cmd().(LoggedInMsg)
	if !ok || logged.Result.User.Username != "admin" {
		t.Errorf("Unexpected message %#v", cmd())
	}
	if len(auth.creds) != 1 || auth.creds[0] != (client.Credentials{Username: "admin", Password: "admin123"}) {
		t.Errorf("Unexpected credentials %+v", auth.creds)
	}
}

func TestSubmit_FailureKeepsUsername(t *testing.T) {
	auth := &fakeAuth{reachable: true, result: client.LoginResult{
		Kind:    client.KindUnauthorized,
		Status:  401,
		Message: "Credenciales inválidas",
	}}
	m := New(auth, "http://srv", "admin")
	m.password = "wrong"

	m.Update(m.submit()())

	if m.Err() != "Credenciales inválidas" {
		t.Errorf("Err() = %q", m.Err())
	}
	if m.username != "admin" || m.password != "" {
		t.Errorf("Expected username kept and password cleared, got %q / %q", m.username, m.password)
	}
	if !strings.Contains(m.View(), "Credenciales inválidas") {
		t.Error("View should show the failure message")
	}
}

func TestSubmit_UnavailableMarksDisconnected(t *testing.T) {
	auth := &fakeAuth{result: client.LoginResult{Kind: client.KindUnavailable, Message: "No se pudo conectar con el servidor"}}
	m := New(auth, "http://srv", "admin")
	m.status = StatusConnected

	m.Update(m.submit()())
	if m.Status() != StatusDisconnected {
		t.Errorf("Status() = %v, want disconnected", m.Status())
	}
}

func TestKeysIgnoredWhileSubmitting(t *testing.T) {
	m := New(&fakeAuth{}, "http://srv", "")
	m.submit()
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR}); cmd != nil {
		t.Error("Keys should be ignored while submitting")
	}
}

func TestView_ShowsServerStatus(t *testing.T) {
	m := New(&fakeAuth{reachable: true}, "http://localhost:8080", "")
	m.Update(m.checkServer()())

	view := m.View()
	for _, want := range []string{"http://localhost:8080", "Conectado", "Usuario"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestServerStatusString(t *testing.T) {
	for status, want := range map[ServerStatus]string{
		StatusChecking:     "Verificando...",
		StatusConnected:    "Conectado",
		StatusDisconnected: "Sin conexión",
	} {
		if got := status.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
