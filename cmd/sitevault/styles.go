package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// styledLabel styles a field label, falling back to plain text on
// terminals without color support.
func styledLabel(s string) string {
	if termenv.EnvColorProfile() == termenv.Ascii {
		return s
	}
	return labelStyle.Render(s)
}
