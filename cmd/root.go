// ABOUTME: Root command for the panel CLI
// ABOUTME: Handles global flags, configuration and client construction

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/config"
	"github.com/gadibarra/panel-municipal/internal/logger"
	"github.com/gadibarra/panel-municipal/internal/tokenstore"
)

var (
	apiURL     string
	jsonOutput bool
	configPath string
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "panel",
	Short: "CLI for the Panel Municipal backend",
	Long: `panel is a command-line client for the municipal administrative backend.

It manages locales comerciales, ferias, proyectos, requerimientos and mensajes,
runs the project approval workflow and opens an interactive dashboard (panel tui).

Exit codes:
  0 - Success
  1 - The backend refused the operation (credentials, permissions, validation, not found)
  2 - Connectivity, configuration or unexpected errors

Environment Variables:
  PANEL_API_URL     Backend API URL (default: http://localhost:8080)
  PANEL_CONFIG      YAML configuration file
  PANEL_VALKEY_URI  Share the session token through Valkey
  LOG_LEVEL         debug, info, warn, error (default: warn)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides PANEL_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (overrides PANEL_CONFIG)")
}

// loadConfig reads configuration and applies the --api-url flag last
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	return cfg, nil
}

// GetAPIURL returns the API URL from flag, env, config file or default (in priority order)
func GetAPIURL() string {
	cfg, err := loadConfig()
	if err != nil {
		if apiURL != "" {
			return apiURL
		}
		return config.DefaultAPIURL
	}
	return cfg.APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newClient builds a client whose token survives between invocations: a
// short-lived session tier, the persistent tier and, when configured, Valkey.
// The returned func releases the Valkey connection.
func newClient() (*client.Client, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	log := logger.Init(os.Stderr)

	tiers := []tokenstore.Tier{
		tokenstore.SessionTier(cfg.SessionDir, time.Duration(cfg.SessionTTL)),
		tokenstore.PersistentTier(cfg.TokenDir),
	}
	release := func() {}
	if cfg.ValkeyURI != "" {
		tier, err := valkeyTier(cfg, log)
		if err != nil {
			// The file tiers still work, so a missing Valkey is not fatal.
			log.Warn("Valkey token tier disabled", "error", err)
		} else {
			tiers = append(tiers, tier)
			release = tier.Close
		}
	}

	store := tokenstore.New(
		tokenstore.WithTiers(tiers...),
		tokenstore.WithMargin(time.Duration(cfg.ExpiryMargin)),
		tokenstore.WithLogger(log),
	)
	c := client.New(cfg.APIURL,
		client.WithConfig(cfg),
		client.WithStore(store),
		client.WithLogger(log),
	)
	return c, release, nil
}

func valkeyTier(cfg *config.Config, log *slog.Logger) (*tokenstore.ValkeyTier, error) {
	vc, err := tokenstore.NewValkeyClient(cfg.ValkeyURI)
	if err != nil {
		return nil, err
	}
	log.Debug("Valkey token tier enabled")
	return tokenstore.NewValkeyTier(vc, tokenstore.DefaultValkeyKey, int64(time.Duration(cfg.SessionTTL).Seconds())), nil
}

// withClient builds the client, runs fn and reports construction errors
// with the connectivity/configuration exit code.
func withClient(ctx context.Context, w io.Writer, fn func(ctx context.Context, w io.Writer, c *client.Client) int) int {
	c, release, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer release()
	return fn(ctx, w, c)
}

// runAndExit wires signal cancellation around fn and exits with its code.
func runAndExit(cmd *cobra.Command, fn func(ctx context.Context, w io.Writer, c *client.Client) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	code := withClient(ctx, cmd.OutOrStdout(), fn)
	if code != 0 {
		cancel()
		os.Exit(code)
	}
}
