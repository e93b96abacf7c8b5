package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

const (
	autoMarkdownStyle  = "auto"
	plainMarkdownStyle = styles.NoTTYStyle
	markdownWidth      = 80
)

var markdownStyle = autoMarkdownStyle

// Markdown renders md for the terminal, falling back to the source text when
// rendering fails.
func Markdown(md string, width int) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if markdownStyle == autoMarkdownStyle {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(markdownStyle))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
