// ABOUTME: Session commands for the panel CLI
// ABOUTME: login probes the backend's login routes, logout and whoami inspect the stored token

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Long: `Sign in against the backend. The candidate login routes are tried in order
until one answers; the token is kept for later commands.

The password is read from --password, then PANEL_PASSWORD, then prompted for
when stdin is a terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		password, err := resolvePassword(loginPassword)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
			os.Exit(2)
		}
		runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
			return runLogin(ctx, w, c, loginUsername, password)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the stored token",
	Run: func(cmd *cobra.Command, args []string) {
		runAndExit(cmd, runLogout)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session",
	Long:  `Show whether a session token is stored, who it belongs to and when it expires.`,
	Run: func(cmd *cobra.Command, args []string) {
		runAndExit(cmd, runWhoami)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prefer PANEL_PASSWORD or the prompt)")
}

// resolvePassword picks the flag value, the environment, or an interactive prompt
func resolvePassword(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("PANEL_PASSWORD"); env != "" {
		return env, nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", nil
	}

	var password string
	err := huh.NewInput().
		Title("Contraseña").
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", errors.New("login cancelled")
	}
	return password, err
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, c *client.Client, username, password string) int {
	res := c.Login(ctx, client.Credentials{Username: username, Password: password})

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(res))
	} else if res.Success {
		fmt.Fprintln(w, formatLoginHuman(res))
	} else {
		fmt.Fprintf(w, "Error: %v\n", res.Err())
	}

	if res.Success {
		return 0
	}
	if res.Kind == client.KindNoLoginEndpoint || res.Kind == client.KindUnavailable {
		return 2
	}
	return exitCode(res.Kind)
}

func formatLoginHuman(res client.LoginResult) string {
	who := "?"
	role := ""
	if res.User != nil {
		who = res.User.Username
		role = res.User.Role
	}
	return formatFields(
		"Sesión iniciada", who,
		"Rol", role,
		"Endpoint", res.Endpoint,
	)
}

// runLogout clears the session and returns exit code
func runLogout(ctx context.Context, w io.Writer, c *client.Client) int {
	had := c.Store().IsAuthenticated()
	c.Logout(ctx)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]bool{"success": true, "hadSession": had}))
		return 0
	}
	if had {
		fmt.Fprintln(w, "Sesión cerrada.")
	} else {
		fmt.Fprintln(w, "No había una sesión activa.")
	}
	return 0
}

// sessionInfo is what whoami reports
type sessionInfo struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject,omitempty"`
	Role          string     `json:"role,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Server        string     `json:"server"`
	ServerStatus  string     `json:"serverStatus"`
}

// runWhoami reports the stored session and returns exit code
func runWhoami(ctx context.Context, w io.Writer, c *client.Client) int {
	info := sessionInfo{
		Server:       c.BaseURL(),
		ServerStatus: formatHealthLine(c.HealthCheck(ctx)),
	}
	if c.Store().IsAuthenticated() {
		token, _ := c.Store().Token()
		info.Authenticated = true
		info.Subject, info.Role = tokenIdentity(token)
		if exp, ok := c.Store().ExpiresAt(); ok {
			info.ExpiresAt = &exp
		}
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(info))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(info))
	}
	if !info.Authenticated {
		return 1
	}
	return 0
}

func formatWhoamiHuman(info sessionInfo) string {
	if !info.Authenticated {
		return formatFields("Sesión", "ninguna (ejecute panel login)", "Servidor", info.Server, "Estado", info.ServerStatus)
	}
	expires := ""
	if info.ExpiresAt != nil {
		expires = info.ExpiresAt.Local().Format(time.DateTime) + " (en " + time.Until(*info.ExpiresAt).Round(time.Minute).String() + ")"
	}
	return formatFields(
		"Usuario", info.Subject,
		"Rol", info.Role,
		"Expira", expires,
		"Servidor", info.Server,
		"Estado", info.ServerStatus,
	)
}

// tokenIdentity reads the subject and role claims without verifying the
// signature; the backend does that on every request.
func tokenIdentity(token string) (subject, role string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", ""
	}
	subject, _ = claims.GetSubject()
	for _, key := range []string{"role", "rol", "roles", "authorities"} {
		switch v := claims[key].(type) {
		case string:
			return subject, v
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, fmt.Sprint(p))
			}
			return subject, strings.Join(parts, ",")
		}
	}
	return subject, ""
}
