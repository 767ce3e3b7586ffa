package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the stagegen banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.Ascii
	if IsTerminal(w) {
		p = termenv.NewOutput(w).ColorProfile()
	}
	// Teal to indigo
	lines := []struct{ text, hex string }{
		{"     _                               ", "#2dd4bf"},
		{" ___| |_ __ _  __ _  ___  __ _  ___ _ __ ", "#38bdf8"},
		{"/ __| __/ _` |/ _` |/ _ \\/ _` |/ _ \\ '_ \\", "#60a5fa"},
		{"\\__ \\ || (_| | (_| |  __/ (_| |  __/ | | |", "#818cf8"},
		{"|___/\\__\\__,_|\\__, |\\___|\\__, |\\___|_| |_|", "#a78bfa"},
		{"              |___/      |___/          ", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.hex)))
	}
	fmt.Fprintln(w)
}
