// ABOUTME: Raw API command for the panel CLI
// ABOUTME: Sends an authenticated request to any backend path and prints the envelope

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
)

var apiData string

var apiCmd = &cobra.Command{
	Use:   "api METHOD PATH",
	Short: "Send a raw authenticated request",
	Long: `Send a request through the same executor as every other command: stored
token, timeouts and error classification included. The response envelope is
printed as JSON.

Example:
  panel api GET /api/proyectos?page=0&size=5
  panel api PATCH /api/requerimientos/3 --data '{"estado":"completado"}'
  panel api POST /api/mensajes --data @mensaje.json`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		body, err := readData(apiData)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
			os.Exit(2)
		}
		runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
			return runAPI(ctx, w, c, args[0], args[1], body)
		})
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVarP(&apiData, "data", "d", "", "JSON body, or @file to read it from a file")
}

// readData returns the request body; "" means none
func readData(data string) (json.RawMessage, error) {
	if data == "" {
		return nil, nil
	}
	raw := []byte(data)
	if strings.HasPrefix(data, "@") {
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		raw = b
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

// runAPI sends the request and returns exit code
func runAPI(ctx context.Context, w io.Writer, c *client.Client, method, path string, body json.RawMessage) int {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	// A nil RawMessage inside an interface would be sent as "null".
	var payload any
	if body != nil {
		payload = body
	}

	var res client.Response[json.RawMessage]
	switch strings.ToUpper(method) {
	case http.MethodGet:
		res = c.Get(ctx, path)
	case http.MethodPost:
		res = c.Post(ctx, path, payload)
	case http.MethodPut:
		res = c.Put(ctx, path, payload)
	case http.MethodPatch:
		res = c.Patch(ctx, path, payload)
	case http.MethodDelete:
		res = c.Delete(ctx, path)
	default:
		fmt.Fprintf(w, "Error: unsupported method %q\n", method)
		return 2
	}

	fmt.Fprintln(w, formatJSON(res))
	if res.Success {
		return 0
	}
	return exitCode(res.Kind)
}
