package main

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed overview.md
var overviewDoc string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Explain how the store and its safety protocol work",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print(renderMarkdown(overviewDoc))
		return nil
	},
}

// renderMarkdown converts markdown to terminal output, falling back to
// the plain text when rendering is unavailable.
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
