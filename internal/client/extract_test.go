package client

import (
	"encoding/json"
	"net/http"
	"testing"
)

func decoded(t *testing.T, body string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("bad fixture %q: %v", body, err)
	}
	return v
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		headers map[string]string
		want    string
	}{
		{"jwt beats token", `{"token":"second-choice-1","jwt":"first-choice-1"}`, nil, "first-choice-1"},
		{"field order", `{"access_token":"third-choice-1","accessToken":"second-choice-1"}`, nil, "second-choice-1"},
		{"short named field accepted", `{"jwt":"a.b.c"}`, nil, "a.b.c"},
		{"non-string field skipped", `{"token":12345678901234,"apiToken":"api-token-value"}`, nil, "api-token-value"},
		{"body beats header", `{"sessionToken":"from-body-12345"}`, map[string]string{"Authorization": "Bearer from-header-123"}, "from-body-12345"},
		{"authorization header", `{}`, map[string]string{"Authorization": "Bearer from-header-123"}, "from-header-123"},
		{"lowercase bearer prefix", `{}`, map[string]string{"X-Auth-Token": "bearer from-header-456"}, "from-header-456"},
		{"header order", `{}`, map[string]string{"X-JWT-Token": "last-header-1234", "Access-Token": "mid-header-12345"}, "mid-header-12345"},
		{"short header ignored", `{}`, map[string]string{"Authorization": "Bearer abc"}, ""},
		{"nested scan", `{"data":{"session":{"idToken":"nested-token-123"}}}`, nil, "nested-token-123"},
		{"scan skips short token type", `{"tokenType":"Bearer","auth":{"refreshJwt":"nested-jwt-12345"}}`, nil, "nested-jwt-12345"},
		{"scan depth limit", `{"a":{"b":{"c":{"d":{"e":{"token2":"too-deep-123456"}}}}}}`, nil, ""},
		{"scan at max depth", `{"a":{"b":{"c":{"xtoken":"deep-enough-12345"}}}}`, nil, "deep-enough-12345"},
		{"array body", `[{"token":"in-array-123456"}]`, nil, ""},
		{"nothing", `{"message":"ok"}`, nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tc.headers {
				h.Set(k, v)
			}
			if got := ExtractToken(decoded(t, tc.body), h); got != tc.want {
				t.Errorf("ExtractToken = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractToken_NilInputs(t *testing.T) {
	if got := ExtractToken(nil, nil); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}
}

func TestBuildUser(t *testing.T) {
	tests := []struct {
		name string
		body string
		want User
	}{
		{
			name: "nested user",
			body: `{"jwt":"x","user":{"id":"u-1","username":"maria","email":"maria@example.org","role":"ADMIN","firstName":"María","lastName":"Pérez"}}`,
			want: User{ID: "u-1", Username: "maria", Email: "maria@example.org", Role: "ADMIN", FirstName: "María", LastName: "Pérez"},
		},
		{
			name: "userData with numeric userId",
			body: `{"userData":{"userId":17,"role":"EDITOR"}}`,
			want: User{ID: "17", Username: "admin", Email: "admin@ibarra.gob.ec", Role: "EDITOR"},
		},
		{
			name: "top level fields",
			body: `{"id":"top","username":"jefe","email":"jefe@ibarra.gob.ec"}`,
			want: User{ID: "top", Username: "jefe", Email: "jefe@ibarra.gob.ec", Role: "user"},
		},
		{
			name: "roles array",
			body: `{"user":{"id":"r","roles":["SUPERVISOR","USER"]}}`,
			want: User{ID: "r", Username: "admin", Email: "admin@ibarra.gob.ec", Role: "SUPERVISOR"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildUser(decoded(t, tc.body), "admin", "ibarra.gob.ec")
			if got != tc.want {
				t.Errorf("BuildUser = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestBuildUser_SynthesizesDefaults(t *testing.T) {
	u := BuildUser(nil, "operador", "ibarra.gob.ec")

	if u.ID == "" {
		t.Error("expected generated id")
	}
	if u.Username != "operador" || u.Email != "operador@ibarra.gob.ec" || u.Role != "user" {
		t.Errorf("unexpected defaults %+v", u)
	}

	other := BuildUser(nil, "operador", "ibarra.gob.ec")
	if other.ID == u.ID {
		t.Error("generated ids must differ")
	}
}
