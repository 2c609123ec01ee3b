package term

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"

	"ddlcal/internal/calendar"
)

var (
	rendererMu sync.Mutex
	renderers  = map[int]*glamour.TermRenderer{}
)

// OverlayMarkdown formats the detail overlay as markdown.
func OverlayMarkdown(ov calendar.Overlay) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", ov.Title)
	if ov.Placeholder != "" {
		b.WriteString(ov.Placeholder)
		b.WriteString("\n")
		return b.String()
	}
	for _, it := range ov.Items {
		fields := []string{it.Type}
		if it.Time != "" {
			fields = append(fields, it.Time)
		}
		if it.NotifyText != "" {
			fields = append(fields, it.NotifyText)
		}
		status := "open"
		if it.Completed {
			status = "completed"
		}
		fmt.Fprintf(&b, "- **%s** (%s)\n  %s · id `%s`\n", it.Title, status, strings.Join(fields, " · "), it.ID)
	}
	return b.String()
}

// RenderOverlay renders the overlay for a terminal of the given width.
// Rendering failures fall back to the raw markdown.
func RenderOverlay(ov calendar.Overlay, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	value := OverlayMarkdown(ov)
	rendered := value
	if r := markdownRenderer(width); r != nil {
		if formatted, err := r.Render(value); err == nil {
			rendered = formatted
		}
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}

func markdownRenderer(width int) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}
