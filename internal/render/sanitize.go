package render

import "regexp"

// The platform's write API refuses these outright; the sanitizer removes
// them rather than relying on the remote side to do it.
var (
	// Paired disallowed elements are removed with their content.
	pairedDisallowed = regexp.MustCompile(`(?is)<(script|iframe|object|embed|form)\b[^>]*>.*?</\s*(script|iframe|object|embed|form)\s*>`)

	// Stray open, close, or self-closing disallowed tags.
	strayDisallowed = regexp.MustCompile(`(?i)</?\s*(script|iframe|object|embed|form|input|button)\b[^>]*/?>`)

	// An event-handler attribute in any quoting style, or bare. The
	// leading group pins the match to attribute position inside a tag,
	// so text like "?online=1" in an attribute value is left alone.
	eventAttr = regexp.MustCompile(`(?i)(<[a-z][^>]*?)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]*)`)
)

// Sanitize strips disallowed tags and event-handler attributes from an
// HTML fragment.
func Sanitize(html string) string {
	html = pairedDisallowed.ReplaceAllString(html, "")
	html = strayDisallowed.ReplaceAllString(html, "")
	return stripEventHandlers(html)
}

// stripDisallowed removes disallowed markup from literal text before it is
// escaped for output. Applying the same rules as Sanitize here keeps
// displayed text free of the stripped constructs instead of preserving
// them in escaped form.
func stripDisallowed(text string) string {
	text = pairedDisallowed.ReplaceAllString(text, "")
	text = strayDisallowed.ReplaceAllString(text, "")
	return stripEventHandlers(text)
}

// stripEventHandlers runs eventAttr to a fixpoint; one pass removes one
// handler per tag, and tags can carry several.
func stripEventHandlers(s string) string {
	for {
		out := eventAttr.ReplaceAllString(s, "$1")
		if out == s {
			return out
		}
		s = out
	}
}
