// Package document defines the intermediate representation shared by the
// block reader, the markdown reader, and both delivery paths. A document is
// an ordered tree of typed nodes; nodes are built once by a reader and never
// mutated afterwards.
package document

import (
	"errors"
	"fmt"
	"strings"
)

// ErrImageSourceMissing indicates an image node with no resolvable source.
// Conversion must stop before any network or automation activity starts.
var ErrImageSourceMissing = errors.New("image node has no resolvable source")

// NodeType identifies the kind of a document node.
type NodeType string

// Node types produced by the readers.
const (
	Heading      NodeType = "heading"
	Paragraph    NodeType = "paragraph"
	BulletList   NodeType = "bulletList"
	NumberedList NodeType = "numberedList"
	TodoList     NodeType = "todoList"
	Code         NodeType = "code"
	Quote        NodeType = "quote"
	Callout      NodeType = "callout"
	Divider      NodeType = "divider"
	Image        NodeType = "image"
	Table        NodeType = "table"
	TableRow     NodeType = "tableRow"
	TableCell    NodeType = "tableCell"
	Bookmark     NodeType = "bookmark"
	Embed        NodeType = "embed"
	Unsupported  NodeType = "unsupported"
)

// Span is one run of inline text. Annotation flags nest in a fixed order
// when rendered: bold innermost, then italic, strikethrough, underline,
// code, with the link wrapping everything last.
type Span struct {
	Text          string
	Bold          bool
	Italic        bool
	Strikethrough bool
	Underline     bool
	Code          bool
	Href          string
}

// Node is one block of a document. Exactly one Type applies; the attribute
// fields below Spans are meaningful only for the types named in their
// comments. List and table containers hold homogeneous children: a
// bulletList never contains numberedList items.
type Node struct {
	Type     NodeType
	Spans    []Span
	Children []*Node

	Level       int    // heading: 1-3
	Checked     bool   // todoList item
	Language    string // code
	Source      string // image: local path or remote URL
	Caption     string // image
	Icon        string // callout
	URL         string // bookmark, embed
	Placeholder string // unsupported: human-readable marker
}

// Document is a fully read input document ready for conversion.
type Document struct {
	Title string
	Cover string // explicit cover source (front matter or caller), may be empty
	Tags  []string
	Nodes []*Node
}

// PlainSpan wraps text in a single span with every annotation off.
func PlainSpan(text string) Span {
	return Span{Text: text}
}

// PlainSpans wraps text in a one-element span list.
func PlainSpans(text string) []Span {
	return []Span{{Text: text}}
}

// Text concatenates the node's span text without annotations.
func (n *Node) Text() string {
	if len(n.Spans) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range n.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// HasImages reports whether any node in the document is an image.
// The publisher uses this to route between the API and UI delivery paths.
func (d *Document) HasImages() bool {
	return anyNode(d.Nodes, func(n *Node) bool { return n.Type == Image })
}

// Validate checks structural invariants that must hold before conversion:
// every image node carries a source, and heading levels stay within the
// platform's representable range.
func (d *Document) Validate() error {
	var walk func(nodes []*Node) error
	walk = func(nodes []*Node) error {
		for _, n := range nodes {
			switch n.Type {
			case Image:
				if strings.TrimSpace(n.Source) == "" {
					return ErrImageSourceMissing
				}
			case Heading:
				if n.Level < 1 || n.Level > 3 {
					return fmt.Errorf("heading level %d out of range 1-3", n.Level)
				}
			}
			if err := walk(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(d.Nodes)
}

func anyNode(nodes []*Node, pred func(*Node) bool) bool {
	for _, n := range nodes {
		if pred(n) {
			return true
		}
		if anyNode(n.Children, pred) {
			return true
		}
	}
	return false
}
