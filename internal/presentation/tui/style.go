package tui

import (
	"io"

	"github.com/muesli/termenv"
)

// Styler colors report words. Non-terminal writers get plain text.
type Styler struct {
	profile termenv.Profile
}

// NewStyler picks the color profile of w.
func NewStyler(w io.Writer) Styler {
	if !IsTerminal(w) {
		return Styler{profile: termenv.Ascii}
	}
	return Styler{profile: termenv.NewOutput(w).ColorProfile()}
}

// Plain returns a Styler that never colors.
func Plain() Styler { return Styler{profile: termenv.Ascii} }

func (s Styler) paint(text, hex string) string {
	return s.profile.String(text).Foreground(s.profile.Color(hex)).String()
}

// Pass colors success.
func (s Styler) Pass(text string) string { return s.paint(text, "#22c55e") }

// Fail colors failures.
func (s Styler) Fail(text string) string { return s.paint(text, "#ef4444") }

// Warn colors partial outcomes.
func (s Styler) Warn(text string) string { return s.paint(text, "#f59e0b") }

// Faint dims secondary details.
func (s Styler) Faint(text string) string {
	return s.profile.String(text).Faint().String()
}
