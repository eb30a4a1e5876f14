package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns an answer into terminal output.
type Renderer func(string) (string, error)

// Plain returns text unchanged apart from a trailing newline.
func Plain(text string) (string, error) {
	return strings.TrimRight(text, "\n") + "\n", nil
}

// NewRenderer returns a glamour markdown renderer when f is a terminal, Plain otherwise.
func NewRenderer(f *os.File) Renderer {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return Plain
	}
	width := 80
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 20 {
		width = w - 4
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Plain
	}
	return r.Render
}
