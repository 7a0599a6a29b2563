package cliui

import (
	"github.com/charmbracelet/glamour"
)

const markdownWrap = 80

// RenderMarkdown renders an answer for the terminal with glamour. On failure
// the content comes back unchanged alongside the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}
