// ABOUTME: Users, password checks and token issuance for the development backend
// ABOUTME: Passwords are bcrypt hashes; tokens are HS256 JWTs carrying role and expiry

package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Roles understood by the dev backend.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// SeedUser is a login the dev backend accepts.
type SeedUser struct {
	ID        string
	Username  string
	Password  string
	Email     string
	Role      string
	FirstName string
	LastName  string
}

// DefaultUsers are the built-in logins: one administrator and one clerk
// without approval rights.
var DefaultUsers = []SeedUser{
	{ID: "1", Username: "admin", Password: "admin123", Email: "admin@ibarra.gob.ec", Role: RoleAdmin, FirstName: "Administrador", LastName: "Municipal"},
	{ID: "2", Username: "funcionario", Password: "funcionario123", Email: "funcionario@ibarra.gob.ec", Role: RoleUser, FirstName: "María", LastName: "Andrade"},
}

type user struct {
	SeedUser
	hash []byte
}

type tokenClaims struct {
	Role   string `json:"role"`
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

const tokenIssuer = "panel-municipal-dev"

func hashUsers(seed []SeedUser, cost int) (map[string]*user, error) {
	users := make(map[string]*user, len(seed))
	for _, u := range seed {
		h, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hashing password for %s: %w", u.Username, err)
		}
		u.Password = ""
		users[strings.ToLower(u.Username)] = &user{SeedUser: u, hash: h}
	}
	return users, nil
}

func (s *Server) authenticate(username, password string) (*user, bool) {
	u, ok := s.users[strings.ToLower(username)]
	if !ok {
		// Unknown users still pay for a hash comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return nil, false
	}
	return u, true
}

func (s *Server) issueToken(u *user) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.tokenTTL)
	claims := tokenClaims{
		Role:   u.Role,
		UserID: u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *Server) parseToken(token string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      loginUser `json:"user"`
	Message   string    `json:"message"`
}

// Login checks credentials and answers with a signed token and the user.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Cuerpo de solicitud inválido", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeJSONError(w, "Usuario y contraseña son requeridos", http.StatusBadRequest)
		return
	}

	u, ok := s.authenticate(req.Username, req.Password)
	if !ok {
		s.logger.Warn("Authentication failed", "username", req.Username)
		writeJSONError(w, "Credenciales inválidas", http.StatusUnauthorized)
		return
	}

	token, exp, err := s.issueToken(u)
	if err != nil {
		s.logger.Error("Failed to sign token", "error", err)
		writeJSONError(w, "No se pudo emitir el token", http.StatusInternalServerError)
		return
	}

	s.logger.Info("User logged in", "username", u.Username, "role", u.Role)
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: exp,
		User: loginUser{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Role:      u.Role,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		},
		Message: "Inicio de sesión exitoso",
	})
}

// Logout acknowledges a logout. Tokens are stateless, so nothing is revoked.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Sesión cerrada"})
}

var errNoUsers = errors.New("at least one user is required")
