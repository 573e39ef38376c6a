// ABOUTME: Dashboard view of the panel summary
// ABOUTME: Count cards, per-estado bars and the latest requerimientos

package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/tui/icons"
	"github.com/gadibarra/panel-municipal/internal/tui/styles"
	"github.com/gadibarra/panel-municipal/internal/tui/widgets"
)

// barWidth is the longest per-estado bar.
const barWidth = 16

// Dashboard renders a DashboardData summary
type Dashboard struct {
	data      *client.DashboardData
	source    string
	updatedAt time.Time
	width     int
	height    int
}

// New creates a dashboard; data may be nil while loading.
func New(data *client.DashboardData, width, height int) *Dashboard {
	return &Dashboard{data: data, width: width, height: height}
}

// Update replaces the summary. source describes where it came from.
func (d *Dashboard) Update(data *client.DashboardData, source string, at time.Time) {
	d.data = data
	d.source = source
	d.updatedAt = at
}

// Data returns the summary shown, or nil
func (d *Dashboard) Data() *client.DashboardData { return d.data }

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.data == nil {
		return styles.Panel.Render("Cargando resumen...")
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Dashboard.String() + " Resumen general"))
	sb.WriteString("\n")
	if d.source != "" {
		sb.WriteString(styles.Subtitle.Render(d.source))
		sb.WriteString("\n")
	}

	sb.WriteString(d.renderCards())
	sb.WriteString("\n\n")

	stats := d.data.Estadisticas
	sb.WriteString(joinColumns(
		section("Proyectos por estado", widgets.EstadoBars(stats.ProyectosPorEstado, barWidth)),
		section("Requerimientos por estado", widgets.EstadoBars(stats.RequerimientosPorEstado, barWidth)),
		d.columnWidth(),
	))
	sb.WriteString("\n")
	sb.WriteString(d.renderRecent())

	return lipgloss.NewStyle().Width(d.width).Render(sb.String())
}

func (d *Dashboard) renderCards() string {
	cfg := widgets.DefaultMetricBlockConfig()
	cards := []string{
		widgets.CountBlock(icons.Proyecto, "Proyectos", d.data.TotalProyectos, "registrados", cfg),
		widgets.CountBlock(icons.Requerimiento, "Requerimientos", d.data.TotalRequerimientos, "registrados", cfg),
		widgets.CountBlock(icons.Feria, "Ferias", d.data.TotalFerias, "registradas", cfg),
		widgets.CountBlock(icons.Local, "Locales", d.data.TotalLocalesComerciales, "comerciales", cfg),
		widgets.CountBlock(icons.Mensaje, "Mensajes", d.data.MensajesNoLeidos, "sin leer", cfg),
	}

	// Wrap cards into rows that fit the width.
	perRow := max(1, d.width/(cfg.Width+1))
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(len(cards), i+perRow)
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, spaced(cards[i:end])...))
	}
	return strings.Join(rows, "\n")
}

func spaced(blocks []string) []string {
	out := make([]string, 0, 2*len(blocks))
	for i, b := range blocks {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, b)
	}
	return out
}

func (d *Dashboard) renderRecent() string {
	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render("Requerimientos recientes"))
	sb.WriteString("\n")

	if len(d.data.RequerimientosRecientes) == 0 {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("  Sin requerimientos recientes"))
		return sb.String()
	}
	for _, r := range d.data.RequerimientosRecientes {
		date := r.FechaCreacion
		if len(date) > 10 {
			date = date[:10]
		}
		sb.WriteString(fmt.Sprintf("  %-10s %s %s\n", date, widgets.EstadoBadge(r.Estado), r.Titulo))
	}
	if !d.updatedAt.IsZero() {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("  Actualizado " + d.updatedAt.Format("15:04:05")))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (d *Dashboard) columnWidth() int {
	return max(30, (d.width-4)/2)
}

func section(title, body string) string {
	return styles.Subtitle.Render(title) + "\n" + body
}

// joinColumns lays two blocks side by side, or stacks them when the
// terminal is too narrow for both.
func joinColumns(left, right string, colWidth int) string {
	leftLines := strings.Split(left, "\n")
	rightLines := strings.Split(right, "\n")
	n := max(len(leftLines), len(rightLines))

	var sb strings.Builder
	for i := 0; i < n; i++ {
		l, r := "", ""
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(rightLines) {
			r = rightLines[i]
		}
		pad := max(0, colWidth-lipgloss.Width(l))
		sb.WriteString(l + strings.Repeat(" ", pad) + "  " + r + "\n")
	}
	return sb.String()
}
