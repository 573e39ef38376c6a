// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides section, status and action icons for the panel TUI

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// nerdFontTerminals usually ship with a patched font.
var nerdFontTerminals = []string{
	"iTerm.app",
	"alacritty",
	"WezTerm",
	"kitty",
	"ghostty",
}

func detectNerdFonts() bool {
	if env := os.Getenv("PANEL_NERD_FONTS"); env != "" {
		return env == "1" || strings.EqualFold(env, "true")
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")
	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	return os.Getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	// Sections
	Dashboard     = Icon{"󰕮", "◈"} // nf-md-view_dashboard
	Proyecto      = Icon{"󰉋", "▣"} // nf-md-folder
	Aprobacion    = Icon{"󰄲", "☑"} // nf-md-checkbox_marked
	Requerimiento = Icon{"󰈙", "≡"} // nf-md-file_document
	Mensaje       = Icon{"󰇮", "✉"} // nf-md-email
	Feria         = Icon{"󰃭", "◷"} // nf-md-calendar
	Local         = Icon{"󰓜", "⌂"} // nf-md-store

	// Status indicators
	CheckOK  = Icon{"", "✓"}
	Warning  = Icon{"", "⚠"}
	Critical = Icon{"", "✗"}
	Info     = Icon{"", "ℹ"}

	// Server status on the login screen
	Connected    = Icon{"󰒍", "●"}
	Disconnected = Icon{"󰒎", "○"}
	Checking     = Icon{"󰔟", "◌"}

	// Actions
	Approve = Icon{"󰄬", "✔"}
	Reject  = Icon{"󰅖", "✘"}
	Refresh = Icon{"󰑓", "↻"}
	New     = Icon{"󰐕", "+"}
	Back    = Icon{"󰁍", "←"}
	Logout  = Icon{"󰍃", "⏻"}
	Quit    = Icon{"󰗼", "×"}

	App  = Icon{"󰠥", "◈"} // nf-md-city
	User = Icon{"󰀄", "☺"}
)
