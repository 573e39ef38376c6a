// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Routes between login, menu, dashboard, list and form screens inside a shared frame

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/tui/dashboard"
	"github.com/gadibarra/panel-municipal/internal/tui/debuglog"
	"github.com/gadibarra/panel-municipal/internal/tui/forms"
	"github.com/gadibarra/panel-municipal/internal/tui/icons"
	"github.com/gadibarra/panel-municipal/internal/tui/listview"
	"github.com/gadibarra/panel-municipal/internal/tui/login"
	"github.com/gadibarra/panel-municipal/internal/tui/menu"
	"github.com/gadibarra/panel-municipal/internal/tui/recent"
	"github.com/gadibarra/panel-municipal/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenMenu
	ScreenDashboard
	ScreenList
	ScreenForm
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
	requestTimeout   = 30 * time.Second
)

const sessionExpiredText = "La sesión expiró. Inicie sesión nuevamente."

// summaryLoadedMsg is sent when the dashboard summary arrives
type summaryLoadedMsg struct {
	data *client.DashboardData
	err  error
}

// loggedOutMsg is sent once the session has been closed
type loggedOutMsg struct{}

// createdMsg is sent when a form submission completes
type createdMsg struct {
	notice string
	err    error
}

// App is the root model for the TUI
type App struct {
	client     *client.Client
	recent     *recent.Usernames
	screen     Screen
	width      int
	height     int
	err        error
	user       *client.User
	lastUpdate time.Time

	// Child models
	login     *login.Model
	menu      *menu.Menu
	dashboard *dashboard.Dashboard
	list      *listview.Model
	form      *forms.Form
}

// New creates a new TUI application. names may be nil to skip
// remembering usernames.
func New(apiClient *client.Client, names *recent.Usernames) *App {
	a := &App{
		client: apiClient,
		recent: names,
		screen: ScreenLogin,
	}
	a.login = login.New(apiClient, apiClient.BaseURL(), a.lastUsername())
	return a
}

func (a *App) lastUsername() string {
	if a.recent == nil {
		return ""
	}
	return a.recent.Last()
}

// Screen returns the active screen
func (a *App) Screen() Screen { return a.screen }

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.login.Init()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeChildren()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.updateKeys(msg)

	case login.LoggedInMsg:
		return a.handleLoggedIn(msg.Result)

	case menu.SelectedMsg:
		return a.handleSelection(msg.Section)

	case summaryLoadedMsg:
		return a.handleSummary(msg)

	case listview.BackMsg:
		a.list = nil
		a.screen = ScreenMenu
		return a, a.loadSummary()

	case listview.NewRecordMsg:
		f, ok := forms.New(msg.Section)
		if !ok {
			return a, nil
		}
		f.SetWidth(a.width)
		a.form = f
		a.screen = ScreenForm
		return a, f.Init()

	case listview.SessionExpiredMsg:
		return a.expireSession()

	case forms.SubmittedMsg:
		return a, a.create(msg.Input)

	case forms.CancelledMsg:
		a.form = nil
		a.screen = ScreenList
		return a, nil

	case createdMsg:
		return a.handleCreated(msg)

	case loggedOutMsg:
		return a, a.showLogin("")
	}

	// Anything else belongs to the active child: spinner ticks, async
	// results and huh internals.
	return a.forward(msg)
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenMenu:
		if msg.String() == "q" {
			return a, tea.Quit
		}
	case ScreenDashboard:
		switch msg.String() {
		case "r":
			return a, a.loadSummary()
		case "b", "esc":
			a.screen = ScreenMenu
			return a, nil
		case "q":
			return a, tea.Quit
		}
		return a, nil
	}
	return a.forward(msg)
}

func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		_, cmd = a.login.Update(msg)
	case ScreenMenu:
		_, cmd = a.menu.Update(msg)
	case ScreenList:
		if a.list != nil {
			_, cmd = a.list.Update(msg)
		}
	case ScreenForm:
		if a.form != nil {
			_, cmd = a.form.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) resizeChildren() {
	a.login.SetWidth(a.width)
	if a.dashboard != nil {
		a.dashboard.SetSize(a.dashboardWidth(), a.contentHeight())
	}
	if a.list != nil {
		a.list.SetSize(a.width-panelPadding, a.contentHeight())
	}
	if a.form != nil {
		a.form.SetWidth(a.width)
	}
}

// handleLoggedIn opens the menu for the authenticated user
func (a *App) handleLoggedIn(res client.LoginResult) (tea.Model, tea.Cmd) {
	a.user = res.User
	a.err = nil
	isAdmin := a.user != nil && a.user.IsAdmin()
	if a.user != nil && a.recent != nil {
		if err := a.recent.Add(a.user.Username); err != nil {
			debuglog.Error("save recent username", err)
		}
	}
	debuglog.Logger().Info("Logged in", "endpoint", res.Endpoint, "admin", isAdmin)

	a.menu = menu.New(isAdmin)
	a.dashboard = dashboard.New(nil, a.dashboardWidth(), a.contentHeight())
	a.screen = ScreenMenu
	return a, a.loadSummary()
}

// handleSelection opens the chosen section
func (a *App) handleSelection(section menu.Section) (tea.Model, tea.Cmd) {
	switch section {
	case menu.SectionDashboard:
		a.screen = ScreenDashboard
		return a, a.loadSummary()
	case menu.SectionLogout:
		return a, a.logout()
	}

	spec, ok := listview.For(a.client, section)
	if !ok {
		return a, nil
	}
	a.list = listview.New(spec)
	a.list.SetSize(a.width-panelPadding, a.contentHeight())
	a.screen = ScreenList
	return a, a.list.Init()
}

func (a *App) handleSummary(msg summaryLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		debuglog.Error("summary", msg.err)
		if errors.Is(msg.err, client.ErrUnauthorized) {
			return a.expireSession()
		}
		a.err = msg.err
		return a, nil
	}
	a.err = nil
	a.lastUpdate = time.Now()
	if a.menu != nil {
		a.menu.SetUnread(msg.data.MensajesNoLeidos)
	}
	if a.dashboard != nil {
		a.dashboard.Update(msg.data, a.client.BaseURL(), a.lastUpdate)
	}
	return a, nil
}

func (a *App) handleCreated(msg createdMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil && errors.Is(msg.err, client.ErrUnauthorized) {
		return a.expireSession()
	}
	a.form = nil
	a.screen = ScreenList
	if a.list == nil {
		return a, nil
	}
	if msg.err != nil {
		debuglog.Error("create", msg.err)
		a.list.SetErr(msg.err.Error())
		return a, nil
	}
	a.list.SetNotice(msg.notice)
	return a, a.list.Refresh()
}

// expireSession drops the token and returns to login with an explanation
func (a *App) expireSession() (tea.Model, tea.Cmd) {
	a.client.Store().Clear()
	return a, a.showLogin(sessionExpiredText)
}

func (a *App) showLogin(reason string) tea.Cmd {
	a.user = nil
	a.menu = nil
	a.dashboard = nil
	a.list = nil
	a.form = nil
	a.err = nil
	a.lastUpdate = time.Time{}

	a.login = login.New(a.client, a.client.BaseURL(), a.lastUsername())
	a.login.SetWidth(a.width)
	a.login.SetErr(reason)
	a.screen = ScreenLogin
	return a.login.Init()
}

// loadSummary creates a command to fetch the dashboard summary
func (a *App) loadSummary() tea.Cmd {
	c := a.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res := c.Summary(ctx)
		if err := res.Err(); err != nil {
			return summaryLoadedMsg{err: err}
		}
		data := res.Data
		return summaryLoadedMsg{data: &data}
	}
}

func (a *App) logout() tea.Cmd {
	c := a.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		c.Logout(ctx)
		return loggedOutMsg{}
	}
}

// create submits a form's input to the matching backend operation
func (a *App) create(input any) tea.Cmd {
	c := a.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var err error
		var notice string
		switch in := input.(type) {
		case client.ProyectoInput:
			res := c.CreateProyecto(ctx, in)
			err, notice = res.Err(), "Proyecto creado: "+res.Data.Nombre
		case client.RequerimientoInput:
			res := c.CreateRequerimiento(ctx, in)
			err, notice = res.Err(), "Requerimiento creado: "+res.Data.Titulo
		case client.MensajeInput:
			res := c.SendMensaje(ctx, in)
			err, notice = res.Err(), "Mensaje enviado a "+in.Destinatario
		case client.FeriaInput:
			res := c.CreateFeria(ctx, in)
			err, notice = res.Err(), "Feria creada: "+res.Data.Nombre
		case client.LocalComercialInput:
			res := c.CreateLocal(ctx, in)
			err, notice = res.Err(), "Local creado: "+res.Data.Nombre
		default:
			err = fmt.Errorf("unsupported form input %T", input)
		}
		return createdMsg{notice: notice, err: err}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenMenu:
		content = a.viewMenu()
	case ScreenDashboard:
		content = a.viewDashboard()
	case ScreenList:
		content = a.viewList()
	case ScreenForm:
		content = a.viewForm()
	default:
		content = styles.Panel.Render(a.login.View())
	}

	return a.wrapWithFrame(content)
}

// viewMenu renders the menu with the session pane beside it
func (a *App) viewMenu() string {
	if a.menu == nil {
		return ""
	}
	leftPane := styles.ActivePanel.Width(a.dashboardWidth()).Render(a.menu.View())

	rightContent := styles.Title.Render(icons.User.String()+" Sesión") + "\n\n"
	if a.user != nil {
		rightContent += styles.KeyStyle.Render("Usuario: ") + styles.ValueStyle.Render(a.user.Username) + "\n"
		if a.user.Email != "" {
			rightContent += styles.KeyStyle.Render("Correo:  ") + styles.ValueStyle.Render(a.user.Email) + "\n"
		}
		rightContent += styles.KeyStyle.Render("Rol:     ") + styles.ValueStyle.Render(a.user.Role) + "\n"
	}
	rightContent += styles.KeyStyle.Render("Servidor: ") + styles.ValueStyle.Render(a.client.BaseURL()) + "\n"
	if a.err != nil {
		rightContent += "\n" + styles.ErrorText.Render(a.err.Error())
	}
	rightPane := styles.Panel.Width(a.actionsWidth()).Render(rightContent)

	if a.width < minTerminalWidth {
		return lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

// viewDashboard renders the dashboard with actions pane
func (a *App) viewDashboard() string {
	if a.err != nil {
		return styles.StatusCritical.Render("Error: " + a.err.Error())
	}

	leftPane := ""
	if a.dashboard != nil {
		leftPane = styles.ActivePanel.Width(a.dashboardWidth()).Render(a.dashboard.View())
	} else {
		leftPane = styles.Panel.Width(a.dashboardWidth()).Render("Cargando...")
	}

	rightContent := styles.Title.Render(icons.Info.String()+" Acciones") + "\n\n"
	rightContent += icons.Refresh.String() + " Actualizar resumen\n"
	rightContent += icons.Back.String() + " Volver al menú\n"
	rightContent += icons.Quit.String() + " Salir\n"
	rightPane := styles.Panel.Width(a.actionsWidth()).Render(rightContent)

	if a.width < minTerminalWidth {
		return lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

func (a *App) viewList() string {
	if a.list == nil {
		return ""
	}
	return styles.ActivePanel.Render(a.list.View())
}

func (a *App) viewForm() string {
	if a.form == nil {
		return ""
	}
	return a.form.View()
}

// dashboardWidth calculates the width for the main pane
func (a *App) dashboardWidth() int {
	if a.width < minTerminalWidth {
		return max(0, a.width-panelPadding)
	}
	return (a.width - panelPadding) * 2 / 3
}

// actionsWidth calculates the width for the side pane
func (a *App) actionsWidth() int {
	if a.width < minTerminalWidth {
		return max(0, a.width-panelPadding)
	}
	return a.width - a.dashboardWidth() - 4
}

// contentHeight calculates the height available between header and footer
func (a *App) contentHeight() int {
	// Header, blank line, panel border and padding (4), blank line, footer.
	return a.height - 8
}

// frameWidth leaves the last column free so terminals do not wrap the
// border, and never drops below minTerminalWidth.
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s", icons.App.String(), titleStyle.Render("Panel Municipal"))

	rightText := ""
	if a.user != nil && a.screen != ScreenLogin {
		ctx := a.user.Username
		if a.user.Role != "" {
			ctx += " · " + a.user.Role
		}
		if a.screen == ScreenList && a.list != nil {
			ctx = a.list.Section().Title() + " │ " + ctx
		}
		rightText = contextStyle.Render(ctx) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := max(0, width-4-leftWidth-rightWidth) // -4 for ╭─ and ─╮

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Enter Ingresar", "ctrl+r Reintentar", "Esc Salir"}
	case ScreenMenu:
		shortcuts = []string{"↑↓ Navegar", "Enter Abrir", "q Salir"}
	case ScreenDashboard:
		shortcuts = []string{"r Actualizar", "b Volver", "q Salir"}
	case ScreenList:
		shortcuts = []string{"↑↓ Navegar", "f Filtrar", "/ Buscar", "b Volver"}
	case ScreenForm:
		shortcuts = []string{"Tab Siguiente", "Enter Confirmar", "Esc Cancelar"}
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}

	leftText := " " + strings.Join(styled, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText, rightPlainText := "", ""
	if !a.lastUpdate.IsZero() && (a.screen == ScreenDashboard || a.screen == ScreenMenu) {
		elapsed := a.formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render("Actualizado "+elapsed) + " "
		rightPlainText = "Actualizado " + elapsed + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftPlainText)-lipgloss.Width(rightPlainText)) // -4 for ╰─ and ─╯

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// formatTimeSince formats a duration since the given time in human-readable form
func (a *App) formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "recién"
		}
		return fmt.Sprintf("hace %ds", secs)
	}
	if d < time.Hour {
		return fmt.Sprintf("hace %dm", int(d.Minutes()))
	}
	return fmt.Sprintf("hace %dh", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Options configures Run
type Options struct {
	// DebugDir receives tui-debug.log when set.
	DebugDir   string
	DebugLevel string
	// RecentDir stores remembered usernames; empty uses the user config dir.
	RecentDir string
}

// Run starts the TUI
func Run(apiClient *client.Client, opts Options) error {
	if err := debuglog.Init(opts.DebugDir, opts.DebugLevel); err != nil {
		return err
	}
	defer debuglog.Close()

	dir := opts.RecentDir
	if dir == "" {
		dir = recent.DefaultConfigDir()
	}

	app := New(apiClient, recent.New(dir))
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
