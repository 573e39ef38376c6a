// ABOUTME: TUI command for the panel CLI
// ABOUTME: Opens the interactive terminal dashboard with the shared session store

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/tui"
)

var tuiDebugDir string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long: `Open the terminal dashboard: login with live server status, the menu of
sections, record lists with filters and paging, creation forms and the approval
queue for administrators.

Logs go to tui-debug.log in --debug-dir (or PANEL_TUI_DEBUG_DIR) so they do not
corrupt the screen; LOG_LEVEL sets the level.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, release, err := newClient()
		if err != nil {
			return err
		}
		defer release()

		dir := tuiDebugDir
		if dir == "" {
			dir = os.Getenv("PANEL_TUI_DEBUG_DIR")
		}
		if err := tui.Run(c, tui.Options{DebugDir: dir, DebugLevel: os.Getenv("LOG_LEVEL")}); err != nil {
			return fmt.Errorf("running tui: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiDebugDir, "debug-dir", "", "Directory for tui-debug.log (disabled when empty)")
}
