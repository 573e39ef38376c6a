// ABOUTME: Token and user extraction from loosely shaped login responses
// ABOUTME: Pure functions over the decoded body and response headers

package client

import (
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gadibarra/panel-municipal/internal/ids"
)

// minScannedTokenLength rejects short strings found by the header or
// recursive search, which are usually token types such as "Bearer".
const minScannedTokenLength = 11

// maxScanDepth limits the recursive token search.
const maxScanDepth = 3

var tokenFields = []string{
	"jwt",
	"token",
	"accessToken",
	"access_token",
	"authToken",
	"bearerToken",
	"sessionToken",
	"apiToken",
	"authenticationToken",
}

var tokenHeaders = []string{
	"Authorization",
	"X-Auth-Token",
	"Access-Token",
	"X-Access-Token",
	"Bearer",
	"X-JWT-Token",
}

var bearerPrefix = regexp.MustCompile(`(?i)^bearer\s+`)

// ExtractToken finds a bearer token in a login response: named body fields
// first, then response headers, then a bounded recursive scan for keys
// containing "token" or "jwt". Returns "" when nothing usable is found.
func ExtractToken(body any, headers http.Header) string {
	obj, _ := body.(map[string]any)

	for _, field := range tokenFields {
		if s, ok := obj[field].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}

	for _, name := range tokenHeaders {
		v := strings.TrimSpace(bearerPrefix.ReplaceAllString(headers.Get(name), ""))
		if len(v) >= minScannedTokenLength {
			return v
		}
	}

	if obj != nil {
		return scanForToken(obj, 0)
	}
	return ""
}

func scanForToken(obj map[string]any, depth int) string {
	if depth > maxScanDepth {
		return ""
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			lower := strings.ToLower(key)
			if (strings.Contains(lower, "token") || strings.Contains(lower, "jwt")) && len(v) >= minScannedTokenLength {
				return v
			}
		case map[string]any:
			if tok := scanForToken(v, depth+1); tok != "" {
				return tok
			}
		}
	}
	return ""
}

// User is the normalized identity built from a login response.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u User) IsAdmin() bool { return strings.EqualFold(u.Role, "ADMIN") }

// BuildUser derives a User from the login body. Identity comes from a nested
// "user" or "userData" object, else the top level. Missing values fall back
// to a generated id, username@emailDomain and the "user" role.
func BuildUser(body any, username, emailDomain string) User {
	top, _ := body.(map[string]any)
	data := top
	for _, key := range []string{"user", "userData"} {
		if nested, ok := top[key].(map[string]any); ok {
			data = nested
			break
		}
	}

	u := User{
		ID:        firstString(data, "id", "userId"),
		Username:  firstString(data, "username"),
		Email:     firstString(data, "email"),
		Role:      firstString(data, "role"),
		FirstName: firstString(data, "firstName", "first_name"),
		LastName:  firstString(data, "lastName", "last_name"),
	}

	if u.ID == "" {
		u.ID = ids.New()
	}
	if u.Username == "" {
		u.Username = username
	}
	if u.Email == "" && emailDomain != "" {
		u.Email = username + "@" + emailDomain
	}
	if u.Role == "" {
		if roles, ok := data["roles"].([]any); ok && len(roles) > 0 {
			u.Role, _ = roles[0].(string)
		}
	}
	if u.Role == "" {
		u.Role = "user"
	}
	return u
}

// firstString returns the first key holding a string or number.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}
