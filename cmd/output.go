// ABOUTME: Shared output helpers for panel commands
// ABOUTME: JSON envelopes, lipgloss tables, key/value detail blocks and exit codes

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gadibarra/panel-municipal/internal/client"
)

// exitCode maps a failure kind onto the CLI contract: 1 when the backend
// answered and refused, 2 when it could not be reached or understood.
func exitCode(kind client.ErrorKind) int {
	switch kind {
	case client.KindUnauthorized, client.KindForbidden, client.KindNotFound,
		client.KindBackend, client.KindValidation:
		return 1
	default:
		return 2
	}
}

// report prints res and returns its exit code. human renders the data of a
// successful response.
func report[T any](w io.Writer, res client.Response[T], human func(T) string) int {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(res))
	} else if res.Success {
		fmt.Fprintln(w, human(res.Data))
	} else {
		fmt.Fprintf(w, "Error: %v\n", res.Err())
	}

	if res.Success {
		return 0
	}
	return exitCode(res.Kind)
}

// formatJSON indents v for output
func formatJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success": false, "error": %q}`, err.Error())
	}
	return string(data)
}

// renderTable draws rows under headers with a plain border
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Faint(true)).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			return s
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

// formatPage renders a listing with its paging footer
func formatPage[T any](p client.Page[T], headers []string, row func(T) []string) string {
	if len(p.Content) == 0 {
		return "Sin registros."
	}
	rows := make([][]string, 0, len(p.Content))
	for _, item := range p.Content {
		rows = append(rows, row(item))
	}
	pages := max(p.TotalPages, 1)
	return fmt.Sprintf("%s\nPágina %d de %d (%d registros)",
		renderTable(headers, rows), p.Pageable.PageNumber+1, pages, max(p.TotalElements, len(p.Content)))
}

// formatFields aligns label/value pairs, skipping empty values
func formatFields(pairs ...string) string {
	width := 0
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			width = max(width, len([]rune(pairs[i])))
		}
	}

	var sb strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		label, value := pairs[i], pairs[i+1]
		if value == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		pad := width - len([]rune(label))
		sb.WriteString(label + ":" + strings.Repeat(" ", pad+1) + value)
	}
	return sb.String()
}

// money formats an amount with two decimals, or "" when zero
func money(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("$%.2f", v)
}

// percent formats progress as a whole percentage
func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}
