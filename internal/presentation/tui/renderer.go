package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWidth = 100

// NewRenderer returns a function that renders markdown using glamour.
// Output is wrapped to the terminal width; when stdout is not a terminal it
// is rendered without styling so pipes get plain text.
func NewRenderer() func(string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(TerminalWidth())}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}

	r, err := glamour.NewTermRenderer(opts...)
	return func(markdown string) (string, error) {
		if err != nil {
			return "", err
		}
		return r.Render(markdown)
	}
}

// TerminalWidth returns the width of stdout, or a default when it is not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}
