// ABOUTME: Status badge widgets for estados and priorities
// ABOUTME: Maps backend estado strings onto colored inline badges

package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/tui/icons"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := levelColors(level)
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

func levelColors(level StatusLevel) (bg, fg lipgloss.Color) {
	switch level {
	case StatusOK:
		return BadgeOKBg, BadgeOKFg
	case StatusWarning:
		return BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		return BadgeCritBg, BadgeCritFg
	case StatusInfo:
		return BadgeInfoBg, BadgeInfoFg
	default:
		return BadgeNeutralBg, BadgeNeutralFg
	}
}

// EstadoLevel classifies an estado. Unknown values are neutral.
func EstadoLevel(estado string) StatusLevel {
	switch client.NormalizeEstado(estado) {
	case client.EstadoPendiente:
		return StatusWarning
	case client.EstadoAprobado, client.EstadoCompletado, client.EstadoActivo, client.EstadoActiva:
		return StatusOK
	case client.EstadoRechazado, client.EstadoSuspendido:
		return StatusCritical
	case client.EstadoPlanificacion, client.EstadoProgramada, client.EstadoEnProgreso:
		return StatusInfo
	default:
		return StatusNeutral
	}
}

// EstadoBadge renders the display label of an estado in its level color.
func EstadoBadge(estado string) string {
	return Badge(client.EstadoLabel(estado), EstadoLevel(estado))
}

// PrioridadBadge renders a requerimiento priority.
func PrioridadBadge(prioridad string) string {
	switch prioridad {
	case client.PrioridadAlta:
		return Badge("Alta", StatusCritical)
	case client.PrioridadMedia:
		return Badge("Media", StatusWarning)
	case client.PrioridadBaja:
		return Badge("Baja", StatusInfo)
	default:
		return Badge("--", StatusNeutral)
	}
}

// StatusIcon returns the icon for a status level
func StatusIcon(level StatusLevel) icons.Icon {
	switch level {
	case StatusOK:
		return icons.CheckOK
	case StatusWarning:
		return icons.Warning
	case StatusCritical:
		return icons.Critical
	default:
		return icons.Info
	}
}

// StatusText renders text in the foreground color of a level, with its icon.
func StatusText(text string, level StatusLevel) string {
	bg, _ := levelColors(level)
	return lipgloss.NewStyle().Foreground(bg).Render(StatusIcon(level).String() + " " + text)
}
