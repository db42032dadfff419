// Package render is the outer collaborator spec.md reserves for turning
// Session values and []Finding into bytes: the core never emits output
// itself (spec §6). It renders terminal tables and JSON, and offers an
// interactive fuzzy session picker for `list sessions --pick`.
package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	dark "github.com/thiagokokada/dark-mode-go"
	"github.com/muesli/termenv"
)

// InitColorProfile configures lipgloss's color profile from the
// environment, the same detection ladder the teacher's cmd/agent-deck
// main.go uses: an explicit AGENTAUDIT_COLOR override first, then
// COLORTERM, then a table of known TrueColor-capable TERM values, then
// common terminal-emulator env vars, falling back to ANSI256.
func InitColorProfile() {
	if colorEnv := os.Getenv("AGENTAUDIT_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	if colorTerm := os.Getenv("COLORTERM"); colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	term := os.Getenv("TERM")
	trueColorTerms := []string{
		"xterm-256color", "screen-256color", "tmux-256color",
		"xterm-direct", "alacritty", "kitty", "wezterm",
	}
	for _, t := range trueColorTerms {
		if strings.Contains(term, t) || term == t {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	if os.Getenv("WT_SESSION") != "" ||
		os.Getenv("ITERM_SESSION_ID") != "" ||
		os.Getenv("TERMINAL_EMULATOR") != "" ||
		os.Getenv("KONSOLE_VERSION") != "" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	lipgloss.SetColorProfile(termenv.ANSI256)
}

// Theme is the resolved terminal color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ResolveTheme resolves a configured theme ("dark", "light", or "system")
// to a concrete Theme. "system" asks the OS for its dark-mode setting,
// falling back to dark on any detection failure — the same fallback the
// teacher's ResolveTheme uses.
func ResolveTheme(configured string) Theme {
	switch configured {
	case "light":
		return ThemeLight
	case "dark":
		return ThemeDark
	}

	isDark, err := dark.IsDarkMode()
	if err != nil {
		return ThemeDark
	}
	if isDark {
		return ThemeDark
	}
	return ThemeLight
}

// palette holds the handful of semantic colors a table/finding renderer
// needs, split by theme like the teacher's darkColors/lightColors tables.
type palette struct {
	Border, Text, TextDim, Accent, Red, Yellow, Green lipgloss.Color
}

var darkPalette = palette{
	Border:  lipgloss.Color("#414868"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Red:     lipgloss.Color("#f7768e"),
	Yellow:  lipgloss.Color("#e0af68"),
	Green:   lipgloss.Color("#9ece6a"),
}

var lightPalette = palette{
	Border:  lipgloss.Color("#9699a3"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Red:     lipgloss.Color("#8c4351"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Green:   lipgloss.Color("#485e30"),
}

func paletteFor(theme Theme) palette {
	if theme == ThemeLight {
		return lightPalette
	}
	return darkPalette
}
