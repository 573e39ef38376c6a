package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gadibarra/panel-municipal/internal/config"
)

// loginServer answers the root for the prober and dispatches POSTs by path.
// Unknown paths are 404.
func loginServer(rec *recorder, routes map[string]http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if h, ok := routes[r.URL.Path]; ok && r.Method == http.MethodPost {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func status(code int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, code, body)
	}
}

var admin = Credentials{Username: "admin", Password: "admin123"}

func TestLogin_ContinuesPastMissingRoutes(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, loginServer(rec, map[string]http.HandlerFunc{
		"/api/auth/login": status(404, `{"error":"Not Found"}`),
		"/auth/login":     status(405, ``),
		"/login":          status(200, `{"token":"tok-abcdefghijk"}`),
		"/api/login":      status(200, `{"token":"should-not-be-reached"}`),
	}))

	res := c.Login(context.Background(), admin)

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Token != "tok-abcdefghijk" || res.Endpoint != "/login" {
		t.Errorf("unexpected result %+v", res)
	}
	posts := rec.list("POST ")
	want := []string{"POST /api/auth/login", "POST /auth/login", "POST /login"}
	if len(posts) != len(want) {
		t.Fatalf("expected %v, got %v", want, posts)
	}
	for i := range want {
		if posts[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, posts[i], want[i])
		}
	}
}

func TestLogin_AdminScenario(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, loginServer(rec, map[string]http.HandlerFunc{
		"/api/auth/login": status(404, ``),
		"/auth/login":     status(200, `{"jwt":"a.b.c","user":{"username":"admin","role":"ADMIN"}}`),
	}))

	res := c.Login(context.Background(), admin)

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if tok, _ := c.Store().Token(); tok != "a.b.c" {
		t.Errorf("stored token = %q, want a.b.c", tok)
	}
	if res.Token != "a.b.c" {
		t.Errorf("result token = %q", res.Token)
	}
	if res.User == nil || res.User.Role != "ADMIN" || res.User.Username != "admin" {
		t.Errorf("unexpected user %+v", res.User)
	}
	if res.User.Email != "admin@ibarra.gob.ec" {
		t.Errorf("expected synthesized email, got %q", res.User.Email)
	}
	if res.User.ID == "" {
		t.Error("expected synthesized id")
	}
}

func TestLogin_CredentialRejectionStopsProbing(t *testing.T) {
	for _, code := range []int{401, 403} {
		rec := &recorder{}
		c, _ := newTestClient(t, loginServer(rec, map[string]http.HandlerFunc{
			"/api/auth/login": status(code, `{"message":"Bad credentials"}`),
			"/auth/login":     status(200, `{"token":"tok-abcdefghijk"}`),
		}))

		res := c.Login(context.Background(), admin)

		if res.Success {
			t.Fatalf("status %d: expected failure", code)
		}
		if res.Message != msgBadCredentials {
			t.Errorf("status %d: message = %q", code, res.Message)
		}
		if n := rec.count("POST "); n != 1 {
			t.Errorf("status %d: expected exactly one login call, got %d", code, n)
		}
		if !errors.Is(res.Err(), ErrUnauthorized) {
			t.Errorf("status %d: expected ErrUnauthorized, got %v", code, res.Err())
		}
	}
}

func TestLogin_ServerErrorContinues(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, loginServer(rec, map[string]http.HandlerFunc{
		"/api/auth/login": status(502, `{"message":"gateway"}`),
		"/auth/login":     status(200, `{"accessToken":"tok-abcdefghijk"}`),
	}))

	res := c.Login(context.Background(), admin)
	if !res.Success || res.Token != "tok-abcdefghijk" {
		t.Errorf("expected success after transient 5xx, got %+v", res)
	}
}

func TestLogin_AllTransientReturnsLastError(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, loginServer(rec, map[string]http.HandlerFunc{
		"/api/auth/login":    status(500, `{"message":"caído 1"}`),
		"/auth/login":        status(404, ``),
		"/login":             status(503, `{"message":"caído 3"}`),
		"/api/login":         status(404, ``),
		"/api/v1/auth/login": status(404, ``),
	}))

	res := c.Login(context.Background(), admin)

	if res.Success || res.Kind != KindServer {
		t.Fatalf("expected server failure, got %+v", res)
	}
	if res.Message != "caído 3" {
		t.Errorf("expected last transient message, got %q", res.Message)
	}
	if n := rec.count("POST "); n != 5 {
		t.Errorf("expected every candidate tried, got %d", n)
	}
}

func TestLogin_NoEndpoint(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, loginServer(rec, nil))

	res := c.Login(context.Background(), admin)

	if res.Kind != KindNoLoginEndpoint {
		t.Errorf("expected no-login-endpoint, got %+v", res)
	}
	if !errors.Is(res.Err(), ErrNoLoginEndpoint) {
		t.Errorf("expected ErrNoLoginEndpoint, got %v", res.Err())
	}
	if n := rec.count("POST "); n != len(config.DefaultLoginPaths) {
		t.Errorf("expected %d login calls, got %d", len(config.DefaultLoginPaths), n)
	}
}

func TestLogin_OtherRefusalStops(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, loginServer(rec, map[string]http.HandlerFunc{
		"/api/auth/login": status(423, `{"message":"Usuario bloqueado"}`),
		"/auth/login":     status(200, `{"token":"tok-abcdefghijk"}`),
	}))

	res := c.Login(context.Background(), admin)

	if res.Success || res.Kind != KindBackend || res.Message != "Usuario bloqueado" {
		t.Errorf("expected backend refusal passthrough, got %+v", res)
	}
	if n := rec.count("POST "); n != 1 {
		t.Errorf("expected one login call, got %d", n)
	}
}

func TestLogin_TimeoutIsTransient(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, loginServer(rec, map[string]http.HandlerFunc{
		"/api/auth/login": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		},
		"/auth/login": status(200, `{"token":"tok-abcdefghijk"}`),
	}))
	c.cfg.LoginTimeout = config.Duration(40 * time.Millisecond)

	res := c.Login(context.Background(), admin)
	if !res.Success {
		t.Errorf("expected success after a timed-out candidate, got %+v", res)
	}
}

func TestLogin_Validation(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{"empty username", Credentials{Username: "", Password: "admin123"}},
		{"blank password", Credentials{Username: "admin", Password: "   "}},
		{"short username after trim", Credentials{Username: "  ab  ", Password: "admin123"}},
		{"short password", Credentials{Username: "admin", Password: "abc"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			c, _ := newTestClient(t, loginServer(rec, nil))

			res := c.Login(context.Background(), tc.creds)

			if res.Success || res.Kind != KindValidation {
				t.Errorf("expected validation failure, got %+v", res)
			}
			if n := rec.count(""); n != 0 {
				t.Errorf("validation must not touch the network, saw %d requests", n)
			}
		})
	}
}

func TestLogin_UnreachableFailsFast(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := New(url, WithConfig(testConfig()))
	res := c.Login(context.Background(), admin)

	if res.Kind != KindUnavailable {
		t.Errorf("expected unavailable, got %+v", res)
	}
	if !errors.Is(res.Err(), ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", res.Err())
	}
}

func TestLogin_SendsTrimmedCredentialsWithoutAuthHeader(t *testing.T) {
	var (
		got  Credentials
		auth string
	)
	rec := &recorder{}
	c, _ := newTestClient(t, loginServer(rec, map[string]http.HandlerFunc{
		"/api/auth/login": func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&got)
			writeJSON(w, 200, `{"token":"tok-abcdefghijk"}`)
		},
	}))
	c.Store().Set("old-token-0000000")

	c.Login(context.Background(), Credentials{Username: "  admin ", Password: " admin123 "})

	if got.Username != "admin" || got.Password != "admin123" {
		t.Errorf("expected trimmed credentials, got %+v", got)
	}
	if auth != "" {
		t.Errorf("login must not send the previous token, got %q", auth)
	}
}

func TestLogin_TokenFromHeader(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, loginServer(rec, map[string]http.HandlerFunc{
		"/api/auth/login": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Authorization", "Bearer tok-from-header-123")
			writeJSON(w, 200, `{"message":"Bienvenido"}`)
		},
	}))

	res := c.Login(context.Background(), admin)
	if res.Token != "tok-from-header-123" {
		t.Errorf("expected header token, got %q", res.Token)
	}
	if res.Message != "Bienvenido" {
		t.Errorf("expected backend message, got %q", res.Message)
	}
}

func TestLogin_SuccessWithoutToken(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, loginServer(rec, map[string]http.HandlerFunc{
		"/api/auth/login": status(200, `{"username":"admin","id":9}`),
	}))

	res := c.Login(context.Background(), admin)

	if !res.Success {
		t.Fatalf("cookie-style login should succeed, got %+v", res)
	}
	if res.Token != "" {
		t.Errorf("expected no token, got %q", res.Token)
	}
	if _, ok := c.Store().Token(); ok {
		t.Error("store must stay empty when no token was recovered")
	}
	if res.User.ID != "9" {
		t.Errorf("expected id from body, got %q", res.User.ID)
	}
}

func TestDecideStep(t *testing.T) {
	tests := []struct {
		status  int
		step    stepKind
		missing bool
	}{
		{200, stepSucceed, false},
		{201, stepSucceed, false},
		{204, stepSucceed, false},
		{404, stepContinue, true},
		{405, stepContinue, true},
		{500, stepContinue, false},
		{503, stepContinue, false},
		{401, stepFail, false},
		{403, stepFail, false},
		{400, stepFail, false},
		{302, stepFail, false},
	}

	for _, tc := range tests {
		step, missing := decideStep(tc.status)
		if step != tc.step || missing != tc.missing {
			t.Errorf("decideStep(%d) = %s,%v want %s,%v", tc.status, step, missing, tc.step, tc.missing)
		}
	}

	if decideTransportStep(KindTimeout) != stepContinue || decideTransportStep(KindNetwork) != stepContinue {
		t.Error("timeouts and network errors are transient")
	}
	if decideTransportStep(KindCanceled) != stepFail {
		t.Error("caller cancel must stop probing")
	}
}

func TestLogout(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(204)
	}))
	c.Store().Set("tok-abcdefghijk")

	c.Logout(context.Background())

	if _, ok := c.Store().Token(); ok {
		t.Error("expected token cleared")
	}
	if rec.count("POST /auth/logout") != 1 {
		t.Errorf("expected logout call, got %v", rec.list(""))
	}

	c.Logout(context.Background())
	if rec.count("POST /auth/logout") != 1 {
		t.Error("logout without a token must not call the backend")
	}
}
