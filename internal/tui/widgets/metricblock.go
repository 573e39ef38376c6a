// ABOUTME: Compact metric block widget for dashboard displays
// ABOUTME: Bordered card with an icon title, a count and a subtitle

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gadibarra/panel-municipal/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       24,
		BorderColor: lipgloss.Color("#6B7280"),
		TitleColor:  lipgloss.Color("#3B82F6"),
		ValueColor:  lipgloss.Color("#F9FAFB"),
	}
}

// MetricBlock renders a compact metric display block. Every line has the
// configured display width.
func MetricBlock(icon icons.Icon, title, value, subtitle string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 24
	}
	innerWidth := config.Width - 4

	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), innerWidth-1)
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)

	// ┌─ title ───┐ : 3 cells before the title, one space after, then fill.
	fill := max(0, config.Width-5-lipgloss.Width(titleStr))
	top := borderStyle.Render("┌─ ") + titleStyle.Render(titleStr) + borderStyle.Render(" "+strings.Repeat("─", fill)+"┐")

	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	return strings.Join([]string{
		top,
		boxLine(valueStyle.Render(truncate(value, innerWidth)), innerWidth, borderStyle),
		boxLine(subtitleStyle.Render(truncate(subtitle, innerWidth)), innerWidth, borderStyle),
		borderStyle.Render("└" + strings.Repeat("─", config.Width-2) + "┘"),
	}, "\n")
}

// CountBlock renders a count metric such as a record total.
func CountBlock(icon icons.Icon, title string, count int, label string, config MetricBlockConfig) string {
	return MetricBlock(icon, title, fmt.Sprintf("%d", count), label, config)
}

// boxLine pads styled content to innerWidth display cells between borders.
func boxLine(content string, innerWidth int, border lipgloss.Style) string {
	pad := max(0, innerWidth-lipgloss.Width(content))
	return border.Render("│ ") + " " + content + strings.Repeat(" ", pad) + border.Render("│")
}

// truncate shortens s to maxLen runes with an ellipsis if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(0, maxLen)])
	}
	return string(r[:maxLen-3]) + "..."
}
