// ABOUTME: HTTP middleware for the development backend
// ABOUTME: Request logging with correlation IDs, bearer JWT auth and role gating

package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// logRequest logs each request with timing and a correlation ID. An incoming
// X-Request-ID is kept so client and server logs line up.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		s.logger.Debug("Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		s.logger.Info("Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	})
}

type contextKey string

const userClaimsKey contextKey = "userClaims"

// claimsFrom returns the caller's claims, or nil on unauthenticated routes.
func claimsFrom(r *http.Request) *tokenClaims {
	claims, ok := r.Context().Value(userClaimsKey).(*tokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.logger.Debug("Auth rejected: no token", "path", r.URL.Path)
			writeJSONError(w, "Autenticación requerida", http.StatusUnauthorized)
			return
		}
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			s.logger.Debug("Auth rejected: invalid format", "path", r.URL.Path)
			writeJSONError(w, "Formato de autorización inválido", http.StatusUnauthorized)
			return
		}

		claims, err := s.parseToken(token)
		if err != nil {
			s.logger.Debug("Auth rejected: invalid token", "path", r.URL.Path, "error", err)
			writeJSONError(w, "Token inválido o expirado", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole returns 403 unless the caller holds role. Must run after
// requireAuth.
func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r)
			if claims == nil || !strings.EqualFold(claims.Role, role) {
				callerRole, username := "", ""
				if claims != nil {
					callerRole, username = claims.Role, claims.Subject
				}
				s.logger.Warn("Authorization denied",
					"path", r.URL.Path,
					"method", r.Method,
					"required_role", role,
					"user_role", callerRole,
					"username", username,
				)
				writeJSONError(w, "Acceso denegado", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// errorBody is the JSON shape of every error response. Message duplicates
// Error so clients that read either field get the text.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, errorBody{Error: message, Message: message, Code: code})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
