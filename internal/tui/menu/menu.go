// ABOUTME: Section menu shown after login
// ABOUTME: Cursor list of panel sections; approvals are disabled for non-admins

package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gadibarra/panel-municipal/internal/tui/icons"
	"github.com/gadibarra/panel-municipal/internal/tui/styles"
)

// Section is a top-level area of the panel
type Section int

const (
	SectionDashboard Section = iota
	SectionProyectos
	SectionAprobaciones
	SectionRequerimientos
	SectionMensajes
	SectionFerias
	SectionLocales
	SectionLogout
)

// String returns the stable identifier of a section
func (s Section) String() string {
	switch s {
	case SectionDashboard:
		return "dashboard"
	case SectionProyectos:
		return "proyectos"
	case SectionAprobaciones:
		return "aprobaciones"
	case SectionRequerimientos:
		return "requerimientos"
	case SectionMensajes:
		return "mensajes"
	case SectionFerias:
		return "ferias"
	case SectionLocales:
		return "locales"
	case SectionLogout:
		return "logout"
	default:
		return "unknown"
	}
}

// Title is the heading shown for a section
func (s Section) Title() string {
	switch s {
	case SectionDashboard:
		return "Dashboard"
	case SectionProyectos:
		return "Proyectos"
	case SectionAprobaciones:
		return "Aprobaciones"
	case SectionRequerimientos:
		return "Requerimientos"
	case SectionMensajes:
		return "Mensajes"
	case SectionFerias:
		return "Ferias"
	case SectionLocales:
		return "Locales comerciales"
	case SectionLogout:
		return "Cerrar sesión"
	default:
		return "Desconocido"
	}
}

// Icon returns the section icon
func (s Section) Icon() icons.Icon {
	switch s {
	case SectionDashboard:
		return icons.Dashboard
	case SectionProyectos:
		return icons.Proyecto
	case SectionAprobaciones:
		return icons.Aprobacion
	case SectionRequerimientos:
		return icons.Requerimiento
	case SectionMensajes:
		return icons.Mensaje
	case SectionFerias:
		return icons.Feria
	case SectionLocales:
		return icons.Local
	case SectionLogout:
		return icons.Logout
	default:
		return icons.Info
	}
}

// SelectedMsg is sent when an enabled section is chosen
type SelectedMsg struct {
	Section Section
}

type option struct {
	section Section
	enabled bool
}

// Menu is the section selection model
type Menu struct {
	options []option
	cursor  int
	err     string
	unread  int
}

// New creates the menu. Approvals are only enabled for administrators.
func New(isAdmin bool) *Menu {
	sections := []Section{
		SectionDashboard,
		SectionProyectos,
		SectionAprobaciones,
		SectionRequerimientos,
		SectionMensajes,
		SectionFerias,
		SectionLocales,
		SectionLogout,
	}
	m := &Menu{options: make([]option, 0, len(sections))}
	for _, s := range sections {
		m.options = append(m.options, option{section: s, enabled: s != SectionAprobaciones || isAdmin})
	}
	return m
}

// SetUnread sets the unread message count shown next to Mensajes.
func (m *Menu) SetUnread(n int) { m.unread = n }

// Cursor returns the highlighted section
func (m *Menu) Cursor() Section { return m.options[m.cursor].section }

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd { return nil }

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.err = ""

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.options) - 1
	case "enter":
		opt := m.options[m.cursor]
		if !opt.enabled {
			m.err = fmt.Sprintf("%s requiere rol de administrador", opt.section.Title())
			return m, nil
		}
		return m, func() tea.Msg { return SelectedMsg{Section: opt.section} }
	default:
		// Digit shortcuts 1..n jump to and select a section
		if s := key.String(); len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(m.options) {
			m.cursor = int(s[0] - '1')
			return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		}
	}
	return m, nil
}

// View implements tea.Model
func (m *Menu) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Menú principal"))
	sb.WriteString("\n")

	disabled := lipgloss.NewStyle().Foreground(styles.Muted)
	for i, opt := range m.options {
		label := fmt.Sprintf("%d. %s %s", i+1, opt.section.Icon().String(), opt.section.Title())
		if opt.section == SectionMensajes && m.unread > 0 {
			label += fmt.Sprintf(" (%d sin leer)", m.unread)
		}
		if !opt.enabled {
			label += " (solo administradores)"
		}

		switch {
		case i == m.cursor:
			sb.WriteString(styles.Selected.Render("> " + label))
		case !opt.enabled:
			sb.WriteString(disabled.Render("  " + label))
		default:
			sb.WriteString("  " + label)
		}
		sb.WriteString("\n")
	}

	if m.err != "" {
		sb.WriteString("\n" + styles.ErrorText.Render(m.err) + "\n")
	}
	return sb.String()
}
