// ABOUTME: Check command for the panel CLI
// ABOUTME: Fails when the approval queue, open requerimientos or unread messages exceed limits

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
)

// thresholds are the limits check enforces
type thresholds struct {
	pendingProyectos      int
	pendingRequerimientos int
	unread                int
}

var checkLimits thresholds

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check backlog thresholds",
	Long: `Check the backlog against thresholds and exit non-zero if any is exceeded.
Meant for scheduled jobs that alert when approvals or requests pile up.

Exit codes:
  0 - All checks passed
  1 - One or more thresholds exceeded, or the backend refused the summary
  2 - Error (connectivity, invalid thresholds)`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
			return runCheck(ctx, w, c, checkLimits)
		})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVar(&checkLimits.pendingProyectos, "max-pending-proyectos", 10, "Projects awaiting approval")
	checkCmd.Flags().IntVar(&checkLimits.pendingRequerimientos, "max-pending-requerimientos", 25, "Requerimientos in estado pendiente")
	checkCmd.Flags().IntVar(&checkLimits.unread, "max-unread", 50, "Unread messages")
}

// checkResult represents the result of a single threshold check
type checkResult struct {
	Name      string `json:"name"`
	Value     int    `json:"value"`
	Threshold int    `json:"threshold"`
	Passed    bool   `json:"passed"`
}

// runCheck executes the threshold checks and returns exit code
func runCheck(ctx context.Context, w io.Writer, c *client.Client, limits thresholds) int {
	if err := limits.validate(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	res := c.Summary(ctx)
	if !res.Success {
		fmt.Fprintf(w, "Error: %v\n", res.Err())
		return exitCode(res.Kind)
	}

	results := performChecks(res.Data, limits)
	if IsJSONOutput() {
		fmt.Fprintln(w, formatCheckJSON(results))
	} else {
		fmt.Fprintln(w, formatCheckHuman(results))
	}

	if _, failed := countResults(results); failed > 0 {
		return 1
	}
	return 0
}

// validate rejects negative limits
func (t thresholds) validate() error {
	if t.pendingProyectos < 0 {
		return fmt.Errorf("--max-pending-proyectos cannot be negative")
	}
	if t.pendingRequerimientos < 0 {
		return fmt.Errorf("--max-pending-requerimientos cannot be negative")
	}
	if t.unread < 0 {
		return fmt.Errorf("--max-unread cannot be negative")
	}
	return nil
}

// performChecks compares the summary against every limit
func performChecks(d client.DashboardData, limits thresholds) []checkResult {
	check := func(name string, value, threshold int) checkResult {
		return checkResult{Name: name, Value: value, Threshold: threshold, Passed: value <= threshold}
	}
	return []checkResult{
		check("Proyectos pendientes", d.Estadisticas.ProyectosPorEstado[client.EstadoPendiente], limits.pendingProyectos),
		check("Requerimientos pendientes", d.Estadisticas.RequerimientosPorEstado[client.EstadoPendiente], limits.pendingRequerimientos),
		check("Mensajes sin leer", d.MensajesNoLeidos, limits.unread),
	}
}

// countResults returns the count of passed and failed checks
func countResults(results []checkResult) (passed, failed int) {
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return
}

// formatCheckHuman formats check results for human readability
func formatCheckHuman(results []checkResult) string {
	var output string
	for _, r := range results {
		symbol := "✓"
		if !r.Passed {
			symbol = "✗"
		}
		output += fmt.Sprintf("%s %s: %d (límite: %d)\n", symbol, r.Name, r.Value, r.Threshold)
	}

	passed, failed := countResults(results)
	if failed > 0 {
		output += fmt.Sprintf("\nFALLÓ: %d control(es) superaron el límite", failed)
	} else {
		output += fmt.Sprintf("\nOK: los %d controles están dentro del límite", passed)
	}
	return output
}

// formatCheckJSON formats check results as JSON
func formatCheckJSON(results []checkResult) string {
	status := "passed"
	if _, failed := countResults(results); failed > 0 {
		status = "failed"
	}
	return formatJSON(struct {
		Status string        `json:"status"`
		Checks []checkResult `json:"checks"`
	}{status, results})
}
