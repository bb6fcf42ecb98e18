package notepress

import (
	"github.com/ysenda/go-notepress/internal/render"
)

// RenderHTML converts raw Markdown straight into the platform's sanitized
// HTML subset, bypassing the document reader. Use Publish for anything that
// should actually land on the platform; this is for callers that only need
// the HTML body (previews, diffing against an existing draft).
func RenderHTML(markdown string) string {
	return render.NewRenderer().RenderMarkdown(markdown)
}
