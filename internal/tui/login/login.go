// ABOUTME: Login screen as a bubbletea model with an embedded huh form
// ABOUTME: Shows live server status, re-checked periodically and on demand

package login

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/tui/debuglog"
	"github.com/gadibarra/panel-municipal/internal/tui/icons"
	"github.com/gadibarra/panel-municipal/internal/tui/styles"
)

// DefaultRecheckInterval is how often the server status refreshes.
const DefaultRecheckInterval = 15 * time.Second

const statusTimeout = 5 * time.Second

// Authenticator is the part of the API client the login screen needs.
type Authenticator interface {
	Login(ctx context.Context, creds client.Credentials) client.LoginResult
	Reachable(ctx context.Context) bool
	Recheck(ctx context.Context) bool
}

// ServerStatus is the connectivity indicator shown above the form.
type ServerStatus int

const (
	StatusChecking ServerStatus = iota
	StatusConnected
	StatusDisconnected
)

func (s ServerStatus) String() string {
	switch s {
	case StatusConnected:
		return "Conectado"
	case StatusDisconnected:
		return "Sin conexión"
	default:
		return "Verificando..."
	}
}

// LoggedInMsg is sent once the backend accepted the credentials.
type LoggedInMsg struct {
	Result client.LoginResult
}

type statusMsg struct {
	gen       int
	reachable bool
}

type recheckMsg struct{ gen int }

type loginDoneMsg struct{ result client.LoginResult }

// Model is the login screen.
type Model struct {
	auth     Authenticator
	baseURL  string
	interval time.Duration

	form     *huh.Form
	username string
	password string

	status     ServerStatus
	gen        int
	submitting bool
	errMsg     string
	spinner    spinner.Model
	width      int
}

// New builds the login screen, prefilling username when known.
func New(auth Authenticator, baseURL, username string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Accent)

	m := &Model{
		auth:     auth,
		baseURL:  baseURL,
		interval: DefaultRecheckInterval,
		username: username,
		spinner:  sp,
	}
	m.form = m.newForm()
	return m
}

// SetRecheckInterval overrides DefaultRecheckInterval.
func (m *Model) SetRecheckInterval(d time.Duration) {
	if d > 0 {
		m.interval = d
	}
}

// SetErr shows msg under the form, e.g. why the previous session ended.
func (m *Model) SetErr(msg string) { m.errMsg = msg }

// SetWidth sets the render width
func (m *Model) SetWidth(width int) { m.width = width }

// Status returns the last known server status.
func (m *Model) Status() ServerStatus { return m.status }

// Submitting reports whether a login request is in flight.
func (m *Model) Submitting() bool { return m.submitting }

// Err returns the message of the last failed attempt.
func (m *Model) Err() string { return m.errMsg }

func (m *Model) newForm() *huh.Form {
	m.password = ""
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Usuario").
				Placeholder("usuario o correo").
				CharLimit(120).
				Value(&m.username).
				Validate(required("El usuario es requerido")),
			huh.NewInput().
				Title("Contraseña").
				EchoMode(huh.EchoModePassword).
				CharLimit(120).
				Value(&m.password).
				Validate(required("La contraseña es requerida")),
		).Title("Iniciar sesión").
			Description("Panel administrativo municipal"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func required(msg string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.spinner.Tick, m.checkServer())
}

func (m *Model) checkServer() tea.Cmd {
	return m.startCheck(m.auth.Reachable)
}

// retryServer ignores any cached answer.
func (m *Model) retryServer() tea.Cmd {
	return m.startCheck(m.auth.Recheck)
}

func (m *Model) startCheck(check func(context.Context) bool) tea.Cmd {
	m.gen++
	m.status = StatusChecking
	gen := m.gen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
		defer cancel()
		return statusMsg{gen: gen, reachable: check(ctx)}
	}
}

func (m *Model) scheduleRecheck() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return recheckMsg{gen: gen} })
}

func (m *Model) submit() tea.Cmd {
	m.submitting = true
	m.errMsg = ""
	creds := client.Credentials{Username: m.username, Password: m.password}
	auth := m.auth
	return func() tea.Msg {
		return loginDoneMsg{result: auth.Login(context.Background(), creds)}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case statusMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.reachable {
			m.status = StatusConnected
		} else {
			m.status = StatusDisconnected
		}
		debuglog.Logger().Debug("Server status", "url", m.baseURL, "status", m.status.String())
		return m, m.scheduleRecheck()

	case recheckMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, m.checkServer()

	case loginDoneMsg:
		m.submitting = false
		if msg.result.Success {
			return m, func() tea.Msg { return LoggedInMsg{Result: msg.result} }
		}
		m.errMsg = msg.result.Message
		debuglog.Logger().Info("Login refused", "kind", msg.result.Kind, "status", msg.result.Status)
		if msg.result.Kind == client.KindUnavailable {
			m.status = StatusDisconnected
		}
		m.form = m.newForm()
		return m, m.form.Init()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+r":
			return m, m.retryServer()
		case "esc":
			return m, tea.Quit
		}
	}

	if m.submitting {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.submit()
	case huh.StateAborted:
		return m, tea.Quit
	}
	return m, cmd
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.App.String() + " Panel Municipal"))
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n\n")

	if m.submitting {
		sb.WriteString(m.spinner.View() + " Autenticando...")
	} else {
		sb.WriteString(m.form.View())
	}

	if m.errMsg != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.ErrorText.Render(icons.Critical.String() + " " + m.errMsg))
	}

	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render(styles.KeyHint("enter", "continuar", "ctrl+r", "reintentar conexión", "esc", "salir")))
	return sb.String()
}

func (m *Model) renderStatus() string {
	var indicator string
	switch m.status {
	case StatusConnected:
		indicator = styles.StatusOK.Render(icons.Connected.String() + " " + m.status.String())
	case StatusDisconnected:
		indicator = styles.StatusCritical.Render(icons.Disconnected.String() + " " + m.status.String())
	default:
		indicator = styles.StatusWarning.Render(m.spinner.View() + m.status.String())
	}
	return lipgloss.NewStyle().Foreground(styles.Muted).Render("Servidor "+m.baseURL+"  ") + indicator
}
