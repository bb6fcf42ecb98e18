// Package render converts the document IR into the sanitized HTML subset
// the platform's write API accepts, and keeps a legacy direct path from raw
// Markdown for callers that bypass the reader. The platform exposes only
// two heading tiers: source levels 1 and 2 collapse into the major heading
// element, level 3 becomes the minor one.
package render

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ysenda/go-notepress/internal/document"
)

// Platform heading tiers.
const (
	majorHeadingTag = "h3"
	minorHeadingTag = "h4"
)

// Renderer converts IR nodes into sanitized HTML. Rendering is pure and
// side-effect free; only the per-element identifiers vary between runs.
type Renderer struct {
	newID func() string
}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{newID: uuid.NewString}
}

// Render converts a document into one sanitized HTML string.
func (r *Renderer) Render(doc *document.Document) string {
	var b strings.Builder
	for _, n := range doc.Nodes {
		r.renderNode(&b, n)
	}
	return Sanitize(b.String())
}

func (r *Renderer) renderNode(b *strings.Builder, n *document.Node) {
	switch n.Type {
	case document.Heading:
		tag := majorHeadingTag
		if n.Level == 3 {
			tag = minorHeadingTag
		}
		r.writeElement(b, tag, renderSpans(n.Spans))

	case document.Paragraph:
		r.writeElement(b, "p", renderSpans(n.Spans))

	case document.BulletList:
		r.renderList(b, "ul", n.Children, noItemPrefix)

	case document.NumberedList:
		r.renderList(b, "ol", n.Children, noItemPrefix)

	case document.TodoList:
		// The platform has no checkbox element; items carry a glyph.
		r.renderList(b, "ul", n.Children, func(item *document.Node) string {
			if item.Checked {
				return "☑ "
			}
			return "☐ "
		})

	case document.Code:
		body := escapeText(n.Text())
		r.writeElement(b, "pre", "<code>"+body+"</code>")

	case document.Quote:
		r.writeElement(b, "blockquote", renderSpans(n.Spans))

	case document.Callout:
		content := renderSpans(n.Spans)
		if n.Icon != "" {
			content = escapeText(n.Icon) + " " + content
		}
		r.writeElement(b, "blockquote", content)

	case document.Divider:
		b.WriteString(fmt.Sprintf("<hr %s/>\n", r.idPair()))

	case document.Image:
		b.WriteString(fmt.Sprintf("<img %s src=%q alt=%q/>\n",
			r.idPair(), n.Source, n.Caption))
		if n.Caption != "" {
			r.writeElement(b, "p", escapeText(n.Caption))
		}

	case document.Table:
		r.renderTable(b, n)

	case document.Bookmark, document.Embed:
		r.writeElement(b, "p", fmt.Sprintf("<a href=%q>%s</a>", n.URL, escapeText(n.URL)))

	case document.Unsupported:
		r.writeElement(b, "p", escapeText(n.Placeholder))
	}
}

func noItemPrefix(*document.Node) string { return "" }

func (r *Renderer) renderList(b *strings.Builder, tag string, items []*document.Node, prefix func(*document.Node) string) {
	b.WriteString(fmt.Sprintf("<%s %s>", tag, r.idPair()))
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(prefix(item))
		b.WriteString(renderSpans(item.Spans))
		b.WriteString("</li>")
	}
	b.WriteString(fmt.Sprintf("</%s>\n", tag))
}

func (r *Renderer) renderTable(b *strings.Builder, table *document.Node) {
	b.WriteString(fmt.Sprintf("<table %s>", r.idPair()))
	for _, row := range table.Children {
		if row.Type != document.TableRow {
			continue
		}
		b.WriteString("<tr>")
		for _, cell := range row.Children {
			b.WriteString("<td>")
			b.WriteString(renderSpans(cell.Spans))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>\n")
}

// writeElement emits one block element with its identifier pair.
func (r *Renderer) writeElement(b *strings.Builder, tag, inner string) {
	b.WriteString(fmt.Sprintf("<%s %s>%s</%s>\n", tag, r.idPair(), inner, tag))
}

// idPair returns the platform's opaque per-element bookkeeping attributes.
// Both are freshly generated on every render.
func (r *Renderer) idPair() string {
	return fmt.Sprintf("id=%q name=%q", r.newID(), r.newID())
}
