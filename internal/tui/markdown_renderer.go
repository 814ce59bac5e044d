package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/evanschultz/tavla/internal/domain"
)

// markdownRenderer renders project descriptions and keeps one glamour renderer
// per wrap width.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown into styled terminal text. Renderer failures fall
// back to the raw source.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrap := max(24, width)
	if r.renderer == nil || r.width != wrap {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrap
	}
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}

// itemMarkdown lays out an item as a small markdown document.
func itemMarkdown(item domain.Item, history []domain.ChangeEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", item.Title)
	fmt.Fprintf(&b, "**%s** · %s\n\n", item.Status.Label(), item.PeopleLabel())
	b.WriteString(item.Description)
	b.WriteString("\n")
	if len(history) > 0 {
		b.WriteString("\n## History\n\n")
		for _, ev := range history {
			fmt.Fprintf(&b, "- `%s` %s\n", formatActivityTimestamp(ev.OccurredAt), ev.Summary())
		}
	}
	return b.String()
}
