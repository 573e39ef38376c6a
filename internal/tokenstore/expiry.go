// ABOUTME: JWT payload decoding for client-side expiry checks
// ABOUTME: Reads the exp claim without verifying the signature and fails closed

package tokenstore

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var segmentParser = jwt.NewParser()

// ExpiresAt decodes the middle segment of a JWT-shaped token and returns its
// exp claim. The signature and header are not inspected.
func ExpiresAt(token string) (time.Time, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, false
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether token's exp is at or before at. Tokens whose
// payload cannot be decoded, or that carry no exp, count as expired.
func Expired(token string, at time.Time) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return true
	}
	return !exp.After(at)
}
