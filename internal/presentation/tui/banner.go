package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner and the version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"  ___  __ _ ___  ___| |", "#818cf8"},
		{" / _ \\/ _` / __|/ _ \\ |", "#a78bfa"},
		{"|  __/ (_| \\__ \\  __/ |", "#c084fc"},
		{" \\___|\\__,_|___/\\___|_|", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}

// Status colors a one-line verdict: green when ok, red otherwise.
func Status(ok bool, msg string) string {
	p := termenv.ColorProfile()
	color := "#22c55e"
	if !ok {
		color = "#ef4444"
	}
	return termenv.String(msg).Foreground(p.Color(color)).Bold().String()
}
