// ABOUTME: Dashboard command for the panel CLI
// ABOUTME: Prints totals, per-estado counts and the latest requerimientos

package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"summary"},
	Short:   "Show the panel summary",
	Long: `Show the dashboard summary. When the backend has no /api/dashboard endpoint
the totals are aggregated from the listings.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runAndExit(cmd, runDashboard)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// runDashboard fetches the summary and returns exit code
func runDashboard(ctx context.Context, w io.Writer, c *client.Client) int {
	return report(w, c.Summary(ctx), formatDashboardHuman)
}

func formatDashboardHuman(d client.DashboardData) string {
	var sb strings.Builder
	sb.WriteString(formatFields(
		"Proyectos", strconv.Itoa(d.TotalProyectos),
		"Requerimientos", strconv.Itoa(d.TotalRequerimientos),
		"Ferias", strconv.Itoa(d.TotalFerias),
		"Locales", strconv.Itoa(d.TotalLocalesComerciales),
		"Sin leer", strconv.Itoa(d.MensajesNoLeidos),
	))

	for _, group := range []struct {
		title  string
		counts map[string]int
	}{
		{"Proyectos por estado", d.Estadisticas.ProyectosPorEstado},
		{"Requerimientos por estado", d.Estadisticas.RequerimientosPorEstado},
	} {
		if len(group.counts) == 0 {
			continue
		}
		sb.WriteString("\n\n" + group.title + "\n")
		sb.WriteString(renderTable([]string{"Estado", "Total"}, estadoRows(group.counts)))
	}

	if len(d.RequerimientosRecientes) > 0 {
		sb.WriteString("\n\nRequerimientos recientes\n")
		rows := make([][]string, 0, len(d.RequerimientosRecientes))
		for _, r := range d.RequerimientosRecientes {
			rows = append(rows, requerimientos.row(r))
		}
		sb.WriteString(renderTable(requerimientos.headers, rows))
	}
	return sb.String()
}

// estadoRows sorts counts by estado for stable output
func estadoRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{client.EstadoLabel(k), fmt.Sprint(counts[k])})
	}
	return rows
}
