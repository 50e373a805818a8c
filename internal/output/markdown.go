package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWrap is the column notes are wrapped at.
const DefaultWrap = 80

// Markdown renders notes as terminal markdown. Rendering failures fall back
// to the raw text, indented.
func Markdown(src string, wrap int) string {
	style := glamour.WithAutoStyle()
	if !colorEnabled {
		style = glamour.WithStandardStyle("notty")
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err == nil {
		if out, err := r.Render(src); err == nil {
			return out
		}
	}

	var b strings.Builder
	for _, line := range strings.Split(src, "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
