// ABOUTME: Progress bar for project completion
// ABOUTME: Colors by how far along a project is and caps the fill at 100%

package widgets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gadibarra/panel-municipal/internal/client"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width      int
	LowColor   lipgloss.Color // below MidThreshold
	MidColor   lipgloss.Color
	DoneColor  lipgloss.Color // at 100%
	EmptyColor lipgloss.Color

	MidThreshold float64
}

// DefaultProgressBarConfig returns sensible defaults
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:        20,
		LowColor:     lipgloss.Color("#F59E0B"),
		MidColor:     lipgloss.Color("#3B82F6"),
		DoneColor:    lipgloss.Color("#10B981"),
		EmptyColor:   lipgloss.Color("#374151"),
		MidThreshold: 40,
	}
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ProgressBar renders a bar for percent, which is clamped to [0, 100].
func ProgressBar(percent float64, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}
	percent = clampPercent(percent)
	filled := int(percent / 100.0 * float64(config.Width))

	color := config.LowColor
	switch {
	case percent >= 100:
		color = config.DoneColor
	case percent >= config.MidThreshold:
		color = config.MidColor
	}

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(config.EmptyColor).Render(strings.Repeat("░", config.Width-filled))
}

// ProgressBarWithLabel appends the percentage to the bar.
func ProgressBarWithLabel(percent float64, config ProgressBarConfig) string {
	return fmt.Sprintf("%s %3.0f%%", ProgressBar(percent, config), clampPercent(percent))
}

// EstadoBars renders one horizontal bar per estado, scaled to the largest
// count and sorted by estado.
func EstadoBars(counts map[string]int, width int) string {
	if len(counts) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Render("Sin datos")
	}
	if width <= 0 {
		width = 20
	}

	keys := make([]string, 0, len(counts))
	peak, labelWidth := 0, 0
	for k, n := range counts {
		keys = append(keys, k)
		peak = max(peak, n)
		labelWidth = max(labelWidth, lipgloss.Width(client.EstadoLabel(k)))
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		n := counts[k]
		filled := 0
		if peak > 0 {
			filled = n * width / peak
		}
		if n > 0 && filled == 0 {
			filled = 1
		}
		bg, _ := levelColors(EstadoLevel(k))
		bar := lipgloss.NewStyle().Foreground(bg).Render(strings.Repeat("▇", filled))
		label := client.EstadoLabel(k)
		lines = append(lines, fmt.Sprintf("%s%s %s %d",
			label, strings.Repeat(" ", labelWidth-lipgloss.Width(label)), bar, n))
	}
	return strings.Join(lines, "\n")
}
