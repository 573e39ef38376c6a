// ABOUTME: Paginated table screen shared by every record section
// ABOUTME: bubbles table with estado filter, search, refresh and row actions

package listview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/tui/debuglog"
	"github.com/gadibarra/panel-municipal/internal/tui/menu"
	"github.com/gadibarra/panel-municipal/internal/tui/styles"
)

// DefaultPageSize is the number of rows requested per page.
const DefaultPageSize = 10

// requestTimeout bounds every load and action issued from the screen.
const requestTimeout = 30 * time.Second

// Row is one record as displayed.
type Row struct {
	ID     client.ID
	Cells  []string
	Estado string
	Detail string
}

// Page is one loaded page of rows.
type Page struct {
	Rows       []Row
	Total      int
	TotalPages int
}

// Action is a keyed operation on the selected row.
type Action struct {
	Key     string
	Label   string
	Confirm bool
	// Applies reports whether the action makes sense for the row.
	Applies func(Row) bool
	Run     func(ctx context.Context, row Row) (string, error)
}

// Spec describes a section: what to load and what can be done with rows.
type Spec struct {
	Section   menu.Section
	Columns   []table.Column
	Estados   []string // filter cycle; the empty string means all
	Creatable bool
	Load      func(ctx context.Context, opts client.ListOptions) (Page, error)
	Actions   []Action
}

// BackMsg asks the app to return to the menu.
type BackMsg struct{}

// NewRecordMsg asks the app to open the create form for a section.
type NewRecordMsg struct {
	Section menu.Section
}

// SessionExpiredMsg reports that the backend no longer accepts the token.
type SessionExpiredMsg struct{}

type loadedMsg struct {
	gen  int
	page Page
	err  error
}

type actionDoneMsg struct {
	notice string
	err    error
}

// Model is the list screen for one section.
type Model struct {
	spec  Spec
	table table.Model

	rows       []Row
	page       int
	size       int
	total      int
	totalPages int
	estadoIdx  int
	search     string

	searching bool
	input     textinput.Model
	confirm   *Action

	loading bool
	gen     int
	spinner spinner.Model
	err     string
	notice  string
	detail  bool
	width   int
	height  int
}

// New builds the list screen for spec.
func New(spec Spec) *Model {
	t := table.New(
		table.WithColumns(spec.Columns),
		table.WithFocused(true),
		table.WithHeight(DefaultPageSize+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)
	t.SetStyles(s)

	in := textinput.New()
	in.Placeholder = "texto a buscar"
	in.Prompt = "/ "
	in.CharLimit = 80
	in.Cursor.SetMode(cursor.CursorStatic)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		spec:    spec,
		table:   t,
		size:    DefaultPageSize,
		input:   in,
		spinner: sp,
	}
}

// Section returns the section this screen lists.
func (m *Model) Section() menu.Section { return m.spec.Section }

// Rows returns the rows of the current page.
func (m *Model) Rows() []Row { return m.rows }

// Estado returns the active filter, or "" for all.
func (m *Model) Estado() string {
	if len(m.spec.Estados) == 0 {
		return ""
	}
	return m.spec.Estados[m.estadoIdx]
}

// Notice returns the last success message.
func (m *Model) Notice() string { return m.notice }

// SetNotice shows a success message until the next key press.
func (m *Model) SetNotice(s string) { m.notice = s }

// SetErr shows an error until the next key press.
func (m *Model) SetErr(s string) { m.err = s }

// Err returns the last error shown.
func (m *Model) Err() string { return m.err }

// SetSize adapts the table to the available area
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.table.SetWidth(max(40, width-2))
	m.table.SetHeight(max(5, min(DefaultPageSize+1, height-10)))
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// Refresh reloads the current page
func (m *Model) Refresh() tea.Cmd { return m.load() }

func (m *Model) load() tea.Cmd {
	m.gen++
	m.loading = true
	gen := m.gen
	opts := client.ListOptions{Page: m.page, Size: m.size, Estado: m.Estado(), Search: m.search}
	load := m.spec.Load
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := load(ctx, opts)
		return loadedMsg{gen: gen, page: page, err: err}
	}
}

func (m *Model) selected() (Row, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[i], true
}

func (m *Model) runAction(a Action, row Row) tea.Cmd {
	m.loading = true
	run := a.Run
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		notice, err := run(ctx, row)
		return actionDoneMsg{notice: notice, err: err}
	}
}

func (m *Model) fail(op string, err error) tea.Cmd {
	debuglog.Error(m.spec.Section.String()+" "+op, err)
	if errors.Is(err, client.ErrUnauthorized) {
		return func() tea.Msg { return SessionExpiredMsg{} }
	}
	m.err = err.Error()
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case loadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			return m, m.fail("load", msg.err)
		}
		if tp := msg.page.TotalPages; tp > 0 && m.page >= tp {
			// The last page vanished, usually after a delete.
			m.page = tp - 1
			return m, m.load()
		}
		m.applyPage(msg.page)
		return m, nil

	case actionDoneMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.fail("action", msg.err)
		}
		m.notice = msg.notice
		return m, m.load()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) applyPage(p Page) {
	m.rows = p.Rows
	m.total = p.Total
	m.totalPages = p.TotalPages

	rows := make([]table.Row, 0, len(p.Rows))
	for _, r := range p.Rows {
		rows = append(rows, table.Row(r.Cells))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = ""
	key := msg.String()

	switch key {
	case "esc", "b":
		return m, func() tea.Msg { return BackMsg{} }
	case "r":
		m.notice = ""
		return m, m.load()
	case "n", "right", "l":
		if key == "n" && m.spec.Creatable {
			return m, func() tea.Msg { return NewRecordMsg{Section: m.spec.Section} }
		}
		if m.page+1 < m.totalPages {
			m.page++
			return m, m.load()
		}
		return m, nil
	case "p", "left", "h":
		if m.page > 0 {
			m.page--
			return m, m.load()
		}
		return m, nil
	case "f":
		if len(m.spec.Estados) == 0 {
			return m, nil
		}
		m.estadoIdx = (m.estadoIdx + 1) % len(m.spec.Estados)
		m.page = 0
		return m, m.load()
	case "/":
		m.searching = true
		m.input.SetValue(m.search)
		return m, m.input.Focus()
	case "enter":
		m.detail = !m.detail
		return m, nil
	}

	for i := range m.spec.Actions {
		a := m.spec.Actions[i]
		if a.Key != key {
			continue
		}
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		if a.Applies != nil && !a.Applies(row) {
			m.err = fmt.Sprintf("%s no aplica al registro %s", a.Label, row.ID)
			return m, nil
		}
		if a.Confirm {
			m.confirm = &a
			return m, nil
		}
		return m, m.runAction(a, row)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.input.Blur()
		m.search = strings.TrimSpace(m.input.Value())
		m.page = 0
		return m, m.load()
	case "esc":
		m.searching = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := *m.confirm
	m.confirm = nil
	if msg.String() != "y" && msg.String() != "s" {
		return m, nil
	}
	row, ok := m.selected()
	if !ok {
		return m, nil
	}
	return m, m.runAction(a, row)
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	title := m.spec.Section.Icon().String() + " " + m.spec.Section.Title()
	sb.WriteString(styles.Title.Render(title))
	sb.WriteString("\n")
	sb.WriteString(m.renderStatusLine())
	sb.WriteString("\n\n")

	if len(m.rows) == 0 && !m.loading {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("No hay registros"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
	}

	if m.detail {
		if row, ok := m.selected(); ok && row.Detail != "" {
			sb.WriteString(styles.Panel.Render(row.Detail))
			sb.WriteString("\n")
		}
	}

	switch {
	case m.searching:
		sb.WriteString(m.input.View() + "\n")
	case m.confirm != nil:
		row, _ := m.selected()
		sb.WriteString(styles.StatusWarning.Render(fmt.Sprintf("¿%s el registro %s? (s/n)", m.confirm.Label, row.ID)) + "\n")
	}

	if m.err != "" {
		sb.WriteString(styles.ErrorText.Render(m.err) + "\n")
	}
	if m.notice != "" {
		sb.WriteString(styles.NoticeText.Render(m.notice) + "\n")
	}

	sb.WriteString(styles.Help.Render(m.helpLine()))
	return sb.String()
}

func (m *Model) renderStatusLine() string {
	pages := max(1, m.totalPages)
	parts := []string{fmt.Sprintf("Página %d de %d", m.page+1, pages), fmt.Sprintf("%d registros", m.total)}
	if e := m.Estado(); e != "" {
		parts = append(parts, "estado: "+client.EstadoLabel(e))
	}
	if m.search != "" {
		parts = append(parts, fmt.Sprintf("búsqueda: %q", m.search))
	}
	line := lipgloss.NewStyle().Foreground(styles.Muted).Render(strings.Join(parts, " · "))
	if m.loading {
		line = m.spinner.View() + " " + line
	}
	return line
}

func (m *Model) helpLine() string {
	pairs := []string{"↑/↓", "mover", "p/←→", "página", "r", "refrescar"}
	if len(m.spec.Estados) > 0 {
		pairs = append(pairs, "f", "filtrar")
	}
	pairs = append(pairs, "/", "buscar", "enter", "detalle")
	if m.spec.Creatable {
		pairs = append(pairs, "n", "nuevo")
	}
	for _, a := range m.spec.Actions {
		pairs = append(pairs, a.Key, strings.ToLower(a.Label))
	}
	pairs = append(pairs, "b", "volver")
	return styles.KeyHint(pairs...)
}
