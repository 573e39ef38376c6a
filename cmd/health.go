// ABOUTME: Health command for the panel CLI
// ABOUTME: Checks backend reachability and the health-family endpoints

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long: `Check connectivity to the municipal backend and report its health.

The root URL is probed first (HEAD, GET, OPTIONS); then /health, /actuator/health,
/api/health and /status are tried in order.`,
	Run: func(cmd *cobra.Command, args []string) {
		runAndExit(cmd, runHealth)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer, c *client.Client) int {
	return report(w, c.HealthCheck(ctx), func(h client.HealthStatus) string {
		return formatHealthHuman(c.BaseURL(), h)
	})
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, h client.HealthStatus) string {
	path := h.Path
	if path == "" {
		path = "(ninguna, solo la raíz responde)"
	}
	return formatFields(
		"Backend", url,
		"Estado", h.Status,
		"Endpoint", path,
		"Versión", h.Version,
		"Fecha", h.Timestamp,
	)
}

// formatHealthLine is the one-line form used by whoami
func formatHealthLine(res client.Response[client.HealthStatus]) string {
	if !res.Success {
		return fmt.Sprintf("no disponible (%s)", res.Kind)
	}
	return res.Data.Status
}
