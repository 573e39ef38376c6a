// ABOUTME: huh form theme in the panel palette
// ABOUTME: Shared by the login screen and the record forms

package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// FormTheme returns the huh theme used by every embedded form.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	light := lipgloss.Color("#93C5FD")
	gray := lipgloss.Color("#9CA3AF")
	text := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Accent)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(light).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(Accent).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(text)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
	t.Focused.NextIndicator = lipgloss.NewStyle().
		Foreground(Accent).
		MarginLeft(1).
		SetString("→")
	t.Focused.PrevIndicator = lipgloss.NewStyle().
		Foreground(Accent).
		MarginRight(1).
		SetString("←")

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(Accent)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(Accent)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(text)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(Primary).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(Surface).
		Padding(0, 2).
		MarginRight(1)

	// Blurred fields inherit the focused look with muted colors
	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}
