// ABOUTME: serve-dev command for the panel CLI
// ABOUTME: Runs the in-memory development backend until interrupted

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/devserver"
	"github.com/gadibarra/panel-municipal/internal/logger"
)

var (
	serveAddr       string
	serveLoginPath  string
	serveLoginLimit int
)

var serveCmd = &cobra.Command{
	Use:   "serve-dev",
	Short: "Run the development backend",
	Long: `Run an in-memory backend that speaks the municipal REST contract, seeded with
sample records. Users: admin/admin123 (administrator) and
funcionario/funcionario123.

The login route defaults to /auth/login, so clients first probe past
/api/auth/login. Login attempts are limited per client IP per minute.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides PANEL_DEV_ADDR, default :8080)")
	serveCmd.Flags().StringVar(&serveLoginPath, "login-path", "", "Login route (overrides PANEL_DEV_LOGIN_PATH)")
	serveCmd.Flags().IntVar(&serveLoginLimit, "login-limit", -1, "Login attempts per IP per minute, 0 disables (overrides PANEL_DEV_LOGIN_LIMIT)")
}

// runServe starts the dev backend and blocks until ctx is canceled
func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if serveAddr != "" {
		cfg.Dev.Addr = serveAddr
	}
	if serveLoginPath != "" {
		cfg.Dev.LoginPath = serveLoginPath
	}
	if serveLoginLimit >= 0 {
		cfg.Dev.LoginLimit = serveLoginLimit
	}

	// The server is a long-running process, so it logs at info unless told otherwise.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	log := logger.New(os.Stderr, level, os.Getenv("LOG_FORMAT"))

	srv, err := devserver.New(cfg.Dev, devserver.WithLogger(log))
	if err != nil {
		return fmt.Errorf("starting dev server: %w", err)
	}
	return srv.Run(ctx)
}
