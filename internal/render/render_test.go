package render

import (
	"regexp"
	"strings"
	"testing"

	"github.com/ysenda/go-notepress/internal/document"
)

// idAttrs matches the per-element identifier pair for comparisons that
// must ignore it.
var idAttrs = regexp.MustCompile(` id="[^"]*" name="[^"]*"`)

func stripIDs(html string) string {
	return idAttrs.ReplaceAllString(html, " ")
}

func renderNodes(nodes ...*document.Node) string {
	return NewRenderer().Render(&document.Document{Nodes: nodes})
}

func TestRenderHeadingCollapse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level int
		want  string
	}{
		{name: "level 1 is major", level: 1, want: "<h3 >text</h3>"},
		{name: "level 2 is major", level: 2, want: "<h3 >text</h3>"},
		{name: "level 3 is minor", level: 3, want: "<h4 >text</h4>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := stripIDs(renderNodes(&document.Node{
				Type:  document.Heading,
				Level: tt.level,
				Spans: document.PlainSpans("text"),
			}))
			if strings.TrimSpace(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderNeverEmitsNativeH1H2(t *testing.T) {
	t.Parallel()

	var nodes []*document.Node
	for lvl := 1; lvl <= 3; lvl++ {
		nodes = append(nodes, &document.Node{
			Type: document.Heading, Level: lvl, Spans: document.PlainSpans("h"),
		})
	}
	got := renderNodes(nodes...)
	for _, banned := range []string{"<h1", "<h2", "<h5", "<h6"} {
		if strings.Contains(got, banned) {
			t.Errorf("output contains %q: %s", banned, got)
		}
	}
}

func TestRenderSpanPrecedence(t *testing.T) {
	t.Parallel()

	got := stripIDs(renderNodes(&document.Node{
		Type: document.Paragraph,
		Spans: []document.Span{{
			Text: "x", Bold: true, Italic: true, Strikethrough: true,
			Underline: true, Code: true, Href: "https://example.com",
		}},
	}))
	want := `<p ><a href="https://example.com"><code><u><s><i><b>x</b></i></s></u></code></a></p>`
	if strings.TrimSpace(got) != want {
		t.Errorf("annotation nesting order wrong:\ngot  %q\nwant %q", got, want)
	}
}

func TestRenderParagraphLineBreaks(t *testing.T) {
	t.Parallel()

	got := stripIDs(renderNodes(&document.Node{
		Type:  document.Paragraph,
		Spans: document.PlainSpans("本文1\n本文2"),
	}))
	if strings.TrimSpace(got) != "<p >本文1<br>本文2</p>" {
		t.Errorf("intra-paragraph line break must become <br>, got %q", got)
	}
}

func TestRenderSanitizerStrips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node *document.Node
	}{
		{
			name: "script in paragraph text",
			node: &document.Node{Type: document.Paragraph,
				Spans: document.PlainSpans(`before <script>alert(1)</script> after`)},
		},
		{
			name: "iframe in quote",
			node: &document.Node{Type: document.Quote,
				Spans: document.PlainSpans(`<iframe src="https://evil.example"></iframe>`)},
		},
		{
			name: "event handler in code body",
			node: &document.Node{Type: document.Code,
				Spans: document.PlainSpans(`<img onerror="steal()">`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := renderNodes(tt.node)
			lower := strings.ToLower(got)
			if strings.Contains(lower, "<script") || strings.Contains(lower, "<iframe") {
				t.Errorf("disallowed tag survived: %s", got)
			}
			if regexp.MustCompile(`on[a-z]+=`).MatchString(lower) {
				t.Errorf("event handler attribute survived: %s", got)
			}
			// Stripped means gone entirely, not escaped-and-kept.
			if strings.Contains(lower, "&lt;script") || strings.Contains(lower, "&lt;iframe") {
				t.Errorf("disallowed tag was escaped instead of stripped: %s", got)
			}
		})
	}
}

func TestSanitizeLeavesAttributeValuesAlone(t *testing.T) {
	t.Parallel()

	got := Sanitize(`<a href="https://example.com/?online=1" onclick="steal()">リンク</a>`)
	if !strings.Contains(got, "online=1") {
		t.Errorf("attribute value was mangled: %s", got)
	}
	if strings.Contains(strings.ToLower(got), "onclick") {
		t.Errorf("event handler survived: %s", got)
	}

	// The same stripping runs on literal text before escaping; prose that
	// merely contains an on-word must come through unchanged.
	text := renderNodes(&document.Node{Type: document.Paragraph,
		Spans: document.PlainSpans("申し込みは online=1 を付ける")})
	if !strings.Contains(text, "online=1") {
		t.Errorf("plain text was mangled: %s", text)
	}
}

func TestSanitizeStripsStackedEventHandlers(t *testing.T) {
	t.Parallel()

	got := Sanitize(`<div onclick="a()" onmouseover="b()">x</div>`)
	if regexp.MustCompile(`(?i)on[a-z]+=`).MatchString(got) {
		t.Errorf("event handler survived: %s", got)
	}
	if !strings.Contains(got, ">x</div>") {
		t.Errorf("element body lost: %s", got)
	}
}

func TestRenderIdempotentModuloIDs(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Nodes: []*document.Node{
		{Type: document.Heading, Level: 2, Spans: document.PlainSpans("title")},
		{Type: document.BulletList, Children: []*document.Node{
			{Type: document.Paragraph, Spans: document.PlainSpans("a")},
			{Type: document.Paragraph, Spans: document.PlainSpans("b")},
		}},
		{Type: document.Divider},
	}}

	r := NewRenderer()
	first, second := r.Render(doc), r.Render(doc)
	if first == second {
		t.Error("identifiers must differ between runs")
	}
	if stripIDs(first) != stripIDs(second) {
		t.Errorf("output differs beyond identifiers:\n%s\n%s", stripIDs(first), stripIDs(second))
	}
}

func TestRenderDegrades(t *testing.T) {
	t.Parallel()

	got := stripIDs(renderNodes(
		&document.Node{Type: document.TodoList, Children: []*document.Node{
			{Type: document.Paragraph, Spans: document.PlainSpans("done"), Checked: true},
			{Type: document.Paragraph, Spans: document.PlainSpans("open")},
		}},
		&document.Node{Type: document.Callout, Icon: "💡", Spans: document.PlainSpans("tip")},
		&document.Node{Type: document.Bookmark, URL: "https://example.com/x"},
		&document.Node{Type: document.Unsupported, Placeholder: "[unsupported block: synced_block]"},
	))

	for _, want := range []string{
		"<li>☑ done</li>", "<li>☐ open</li>",
		"<blockquote >💡 tip</blockquote>",
		`<a href="https://example.com/x">https://example.com/x</a>`,
		"[unsupported block: synced_block]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	got := stripIDs(renderNodes(&document.Node{
		Type: document.Table,
		Children: []*document.Node{
			{Type: document.TableRow, Children: []*document.Node{
				{Type: document.TableCell, Spans: document.PlainSpans("a")},
				{Type: document.TableCell, Spans: document.PlainSpans("b")},
			}},
		},
	}))
	if !strings.Contains(got, "<table ><tr><td>a</td><td>b</td></tr></table>") {
		t.Errorf("table markup wrong: %s", got)
	}
}

func TestRenderMarkdownLegacyPath(t *testing.T) {
	t.Parallel()

	src := "## Title\npara1\npara2\n\n- one\n- two\n\n> quoted\n\n```\n<script>x</script>\n```"
	got := stripIDs(NewRenderer().RenderMarkdown(src))

	for _, want := range []string{
		"<h3 >Title</h3>",
		"<ul ><li>one</li><li>two</li></ul>",
		"<blockquote >quoted</blockquote>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(strings.ToLower(got), "<script") {
		t.Errorf("script survived the code fence: %s", got)
	}
}

func TestRenderMarkdownHeadingDegrade(t *testing.T) {
	t.Parallel()

	got := stripIDs(NewRenderer().RenderMarkdown("#### Deep\n\n###### Deeper"))
	if !strings.Contains(got, "<p ><b>Deep</b></p>") || !strings.Contains(got, "<p ><b>Deeper</b></p>") {
		t.Errorf("levels 4-6 must render as bold paragraphs, got:\n%s", got)
	}
	if strings.Contains(got, "<h") {
		t.Errorf("no native heading allowed for levels 4-6: %s", got)
	}
}

func TestRenderMarkdownPlainParagraphJoins(t *testing.T) {
	t.Parallel()

	got := stripIDs(NewRenderer().RenderMarkdown("line one\nline two"))
	if strings.TrimSpace(got) != "<p >line one<br>line two</p>" {
		t.Errorf("plain lines must join with <br> in one paragraph, got %q", got)
	}
}

func TestRenderMarkdownListInterruption(t *testing.T) {
	t.Parallel()

	// The block chunk mixes list kinds and a heading: the state machine
	// must flush each container at the boundary.
	got := stripIDs(NewRenderer().RenderMarkdown("- a\n- b\n### H\n1. x\n2. y"))
	wantOrder := []string{"<ul ", "</ul>", "<h4 ", "<ol ", "</ol>"}
	pos := 0
	for _, marker := range wantOrder {
		i := strings.Index(got[pos:], marker)
		if i < 0 {
			t.Fatalf("marker %q missing or out of order in:\n%s", marker, got)
		}
		pos += i
	}
}

func TestRenderMarkdownInlineCodeProtected(t *testing.T) {
	t.Parallel()

	got := stripIDs(NewRenderer().RenderMarkdown("use `**raw**` here"))
	if !strings.Contains(got, "<code>**raw**</code>") {
		t.Errorf("code span content must stay verbatim, got %q", got)
	}
	if strings.Contains(got, "<code><b>") {
		t.Errorf("inline markup leaked into code span: %q", got)
	}
}
