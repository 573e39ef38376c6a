// ABOUTME: Endpoint-probing login over an ordered list of candidate routes
// ABOUTME: Each attempt resolves to continue, succeed or fail; results seed the token store

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gadibarra/panel-municipal/internal/tokenstore"
)

const (
	msgCredentialsRequired = "Usuario y contraseña son requeridos"
	msgBadCredentials      = "Credenciales incorrectas. Verifique su usuario y contraseña."
	msgServerUnavailable   = "No se pudo conectar con el servidor"
	msgNoLoginEndpoint     = "No se encontró un endpoint de login válido en el servidor"
	msgLoginOK             = "Autenticación exitosa"
)

// Credentials are the username and password submitted to the login route.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult reports the outcome of Login. Token is set only when one was
// recovered from the response.
type LoginResult struct {
	Success  bool      `json:"success"`
	Token    string    `json:"token,omitempty"`
	User     *User     `json:"user,omitempty"`
	Message  string    `json:"message,omitempty"`
	Status   int       `json:"status,omitempty"`
	Kind     ErrorKind `json:"kind,omitempty"`
	Endpoint string    `json:"endpoint,omitempty"`
}

// Err returns nil on success and an *APIError otherwise.
func (r LoginResult) Err() error {
	if r.Success {
		return nil
	}
	return newAPIError(r.Kind, r.Status, "", r.Message)
}

func loginFailure(kind ErrorKind, status int, msg string) LoginResult {
	return LoginResult{Success: false, Kind: kind, Status: status, Message: msg}
}

// stepKind is the decision taken after one candidate attempt.
type stepKind int

const (
	stepContinue stepKind = iota
	stepSucceed
	stepFail
)

func (s stepKind) String() string {
	switch s {
	case stepContinue:
		return "continue"
	case stepSucceed:
		return "succeed"
	default:
		return "fail"
	}
}

// attempt is the result of trying one candidate path.
type attempt struct {
	step         stepKind
	routeMissing bool // 404/405: the route does not exist here
	result       LoginResult
}

// decideStep is the probing policy for an HTTP status. 404/405 mean the
// route is absent, 5xx is transient; 401/403 and other refusals end probing.
func decideStep(status int) (step stepKind, routeMissing bool) {
	switch {
	case status == http.StatusNotFound || status == http.StatusMethodNotAllowed:
		return stepContinue, true
	case status >= 200 && status < 300:
		return stepSucceed, false
	case status >= 500:
		return stepContinue, false
	default:
		return stepFail, false
	}
}

// decideTransportStep is the probing policy for a round trip that produced
// no HTTP status. Only a caller cancel ends probing.
func decideTransportStep(kind ErrorKind) stepKind {
	if kind == KindCanceled {
		return stepFail
	}
	return stepContinue
}

// Login validates the credentials, checks reachability, then walks the
// configured login paths until one answers authoritatively.
func (c *Client) Login(ctx context.Context, creds Credentials) LoginResult {
	creds.Username = strings.TrimSpace(creds.Username)
	creds.Password = strings.TrimSpace(creds.Password)
	if res, ok := c.validateCredentials(creds); !ok {
		return res
	}

	if !c.prober.Reachable(ctx) {
		return loginFailure(KindUnavailable, 0, msgServerUnavailable)
	}

	payload, err := json.Marshal(creds)
	if err != nil {
		return loginFailure(KindValidation, 0, fmt.Sprintf("no se pudo codificar la petición: %v", err))
	}

	allMissing := true
	var last LoginResult
	for _, path := range c.cfg.LoginPaths {
		a := c.attemptLogin(ctx, path, creds.Username, payload)
		c.logger.Debug("Login attempt", "path", path, "step", a.step.String(), "status", a.result.Status)

		switch a.step {
		case stepSucceed, stepFail:
			return a.result
		}
		if !a.routeMissing {
			allMissing = false
			last = a.result
		}
	}

	if allMissing {
		c.logger.Warn("No login endpoint answered", "paths", strings.Join(c.cfg.LoginPaths, ","))
		return loginFailure(KindNoLoginEndpoint, 0, msgNoLoginEndpoint)
	}
	return last
}

func (c *Client) validateCredentials(creds Credentials) (LoginResult, bool) {
	if creds.Username == "" || creds.Password == "" {
		return loginFailure(KindValidation, 0, msgCredentialsRequired), false
	}
	if n := c.cfg.MinUsernameLength; len([]rune(creds.Username)) < n {
		return loginFailure(KindValidation, 0, fmt.Sprintf("El usuario debe tener al menos %d caracteres", n)), false
	}
	if n := c.cfg.MinPasswordLength; len([]rune(creds.Password)) < n {
		return loginFailure(KindValidation, 0, fmt.Sprintf("La contraseña debe tener al menos %d caracteres", n)), false
	}
	return LoginResult{}, true
}

func (c *Client) attemptLogin(ctx context.Context, path, username string, payload []byte) attempt {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")

	ex, err := c.send(ctx, http.MethodPost, path, payload, header, time.Duration(c.cfg.LoginTimeout))
	if err != nil {
		failed := transportFailure[struct{}](ctx, err)
		res := loginFailure(failed.Kind, 0, failed.Message)
		switch failed.Kind {
		case KindTimeout:
			res.Message = "Timeout de conexión. Intente nuevamente."
		case KindNetwork, KindPolicy:
			res.Message = "Error de red o de política de conexión. Verifique la conexión."
		case KindUnknown:
			res.Message = failed.Error
		}
		return attempt{step: decideTransportStep(failed.Kind), result: res}
	}

	step, missing := decideStep(ex.status)
	a := attempt{step: step, routeMissing: missing}

	switch {
	case missing:
		a.result = loginFailure(KindNotFound, ex.status, fmt.Sprintf("Endpoint %s no disponible", path))
	case step == stepSucceed:
		a.result = c.loginSuccess(ex, path, username)
	case ex.status == http.StatusUnauthorized || ex.status == http.StatusForbidden:
		a.result = loginFailure(KindUnauthorized, ex.status, msgBadCredentials)
	case ex.status >= 500:
		a.result = loginFailure(KindServer, ex.status, orDefault(ex.body.backendMessage(), fmt.Sprintf("Error del servidor (HTTP %d)", ex.status)))
	default:
		a.result = loginFailure(KindBackend, ex.status, orDefault(ex.body.backendMessage(), fmt.Sprintf("Error HTTP %d", ex.status)))
	}
	return a
}

// loginSuccess extracts the token and identity from a 2xx login response.
// A response without a token still succeeds; the backend may use cookies.
func (c *Client) loginSuccess(ex *exchange, path, username string) LoginResult {
	token := ExtractToken(ex.body.value, ex.header)
	user := BuildUser(ex.body.value, username, c.cfg.EmailDomain)

	res := LoginResult{
		Success:  true,
		User:     &user,
		Status:   ex.status,
		Endpoint: path,
		Message:  msgLoginOK,
	}
	if s, ok := ex.body.object()["message"].(string); ok && s != "" {
		res.Message = s
	}

	if token == "" {
		c.logger.Warn("Login succeeded without a token", "path", path)
		return res
	}

	c.store.Set(token)
	res.Token = token

	if exp, ok := tokenstore.ExpiresAt(token); ok {
		c.logger.Info("Login succeeded", "path", path, "user", user.Username, "expires", exp.Format(time.RFC3339))
	} else {
		c.logger.Info("Login succeeded with a non-JWT token", "path", path, "user", user.Username, "token_prefix", tokenPrefix(token))
	}
	return res
}

// Logout clears the local session and tells the backend when a token exists.
// The backend call is best effort.
func (c *Client) Logout(ctx context.Context) {
	if _, ok := c.store.Token(); ok {
		if _, err := c.send(ctx, http.MethodPost, "/auth/logout", nil, c.Headers(), time.Duration(c.cfg.ProbeTimeout)); err != nil {
			c.logger.Debug("Logout call failed", "error", err)
		}
	}
	c.store.Clear()
}

func tokenPrefix(tok string) string {
	if len(tok) <= 8 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:8] + "..."
}
