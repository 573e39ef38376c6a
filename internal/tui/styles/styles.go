// ABOUTME: Shared lipgloss styles for the municipal panel TUI
// ABOUTME: Palette, frame borders, status and table styles used across screens

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Core palette
	Primary   = lipgloss.Color("#1D4ED8") // Municipal blue
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	BgDark    = lipgloss.Color("#1F2937") // Dark gray

	Accent  = lipgloss.Color("#3B82F6")
	Surface = lipgloss.Color("#374151")
	Info    = lipgloss.Color("#0EA5E9")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Accent).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Error banner shown under a screen after a failed operation
	ErrorText = lipgloss.NewStyle().
			Foreground(Danger)

	// Flash message after a successful operation
	NoticeText = lipgloss.NewStyle().
			Foreground(Secondary)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(1, 2)

	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Frame styles for header/footer
	HeaderStyle = lipgloss.NewStyle().
			Border(lipgloss.Border{
			Top:   "─",
			Left:  "╭",
			Right: "╮",
		}).
		BorderForeground(Muted).
		Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Border(lipgloss.Border{
			Bottom: "─",
			Left:   "╰",
			Right:  "╯",
		}).
		BorderForeground(Muted).
		Padding(0, 1)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	// Selected row in menus and lists
	Selected = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Bold(true)
)

// KeyHint renders "key action" pairs for footers and help lines.
func KeyHint(pairs ...string) string {
	out := ""
	for i := 0; i+1 < len(pairs); i += 2 {
		if out != "" {
			out += "  "
		}
		out += KeyStyle.Render(pairs[i]) + " " + pairs[i+1]
	}
	return out
}
