package render

import (
	"fmt"
	"strings"

	"github.com/ysenda/go-notepress/internal/document"
)

// renderSpans renders inline spans with the fixed annotation precedence:
// bold innermost, then italic, strikethrough, underline, code, with the
// link wrapping everything last. Intra-paragraph line breaks in span text
// become <br> elements.
func renderSpans(spans []document.Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(renderSpan(s))
	}
	return b.String()
}

func renderSpan(s document.Span) string {
	out := escapeText(s.Text)
	out = strings.ReplaceAll(out, "\n", "<br>")

	if s.Bold {
		out = "<b>" + out + "</b>"
	}
	if s.Italic {
		out = "<i>" + out + "</i>"
	}
	if s.Strikethrough {
		out = "<s>" + out + "</s>"
	}
	if s.Underline {
		out = "<u>" + out + "</u>"
	}
	if s.Code {
		out = "<code>" + out + "</code>"
	}
	if s.Href != "" {
		out = fmt.Sprintf("<a href=%q>%s</a>", s.Href, out)
	}
	return out
}

// escapeText strips disallowed markup from literal text and escapes the
// remainder. Disallowed content is removed, never escaped-and-kept: raw
// "<script>" in author text must not survive in any form.
func escapeText(text string) string {
	text = stripDisallowed(text)
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(text)
}
