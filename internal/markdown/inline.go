package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/ysenda/go-notepress/internal/document"
)

// inlineParser extracts canonical spans from inline Markdown using the
// goldmark parser, so nested emphasis, code spans, links, and GFM
// strikethrough are never hand-parsed. Raw inline HTML is dropped: it
// would only be stripped again by the sanitizer downstream.
type inlineParser struct {
	p gmparser.Parser
}

func newInlineParser() *inlineParser {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough),
	)
	return &inlineParser{p: md.Parser()}
}

// Parse converts one logical block of text (lines joined with \n) into
// spans. Intra-block line breaks survive as \n inside span text.
func (ip *inlineParser) Parse(src string) []document.Span {
	if src == "" {
		return nil
	}

	source := []byte(src)
	root := ip.p.Parse(text.NewReader(source))

	var spans []document.Span
	for block := root.FirstChild(); block != nil; block = block.NextSibling() {
		collectInline(source, block, document.Span{}, &spans)
		if block.NextSibling() != nil {
			spans = append(spans, document.Span{Text: "\n"})
		}
	}
	return mergeSpans(spans)
}

func collectInline(source []byte, n ast.Node, style document.Span, out *[]document.Span) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			s := style
			s.Text = string(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				s.Text += "\n"
			}
			if s.Text != "" {
				*out = append(*out, s)
			}
		case *ast.String:
			s := style
			s.Text = string(t.Value)
			if s.Text != "" {
				*out = append(*out, s)
			}
		case *ast.Emphasis:
			s := style
			if t.Level >= 2 {
				s.Bold = true
			} else {
				s.Italic = true
			}
			collectInline(source, c, s, out)
		case *east.Strikethrough:
			s := style
			s.Strikethrough = true
			collectInline(source, c, s, out)
		case *ast.CodeSpan:
			s := style
			s.Code = true
			s.Text = codeSpanText(source, c)
			if s.Text != "" {
				*out = append(*out, s)
			}
		case *ast.Link:
			s := style
			s.Href = string(t.Destination)
			collectInline(source, c, s, out)
		case *ast.AutoLink:
			s := style
			s.Href = string(t.URL(source))
			s.Text = string(t.Label(source))
			*out = append(*out, s)
		case *ast.RawHTML:
			// dropped
		default:
			collectInline(source, c, style, out)
		}
	}
}

func codeSpanText(source []byte, n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		}
	}
	return b.String()
}

// mergeSpans joins adjacent spans whose annotations match, compensating
// for goldmark's segment splits.
func mergeSpans(spans []document.Span) []document.Span {
	if len(spans) < 2 {
		return spans
	}
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if sameStyle(*last, s) {
			last.Text += s.Text
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func sameStyle(a, b document.Span) bool {
	return a.Bold == b.Bold &&
		a.Italic == b.Italic &&
		a.Strikethrough == b.Strikethrough &&
		a.Underline == b.Underline &&
		a.Code == b.Code &&
		a.Href == b.Href
}
