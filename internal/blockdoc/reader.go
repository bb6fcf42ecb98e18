package blockdoc

import (
	"fmt"
	"log/slog"

	"github.com/ysenda/go-notepress/internal/document"
)

// Reader maps a remote block list into the document IR. Reading never
// fails: unknown block kinds become unsupported placeholder nodes, with an
// optional warning through the configured logger.
type Reader struct {
	warnUnknown bool
	log         *slog.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithWarnUnknown enables a warning log line for every block kind the
// reader does not recognize.
func WithWarnUnknown() ReaderOption {
	return func(r *Reader) { r.warnUnknown = true }
}

// WithLogger sets the logger used for unknown-kind warnings.
func WithLogger(log *slog.Logger) ReaderOption {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReader creates a Reader.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read converts a block list into IR nodes in a single left-to-right scan.
// Consecutive blocks of the same list-item kind are grouped greedily into
// one list container whose children are the parsed items.
func (r *Reader) Read(title string, blocks []Block) *document.Document {
	return &document.Document{
		Title: title,
		Nodes: r.readBlocks(blocks),
	}
}

func (r *Reader) readBlocks(blocks []Block) []*document.Node {
	nodes := make([]*document.Node, 0, len(blocks))

	for i := 0; i < len(blocks); {
		kind, ok := listKind(blocks[i].Type)
		if !ok {
			nodes = append(nodes, r.readBlock(blocks[i]))
			i++
			continue
		}

		// Look-ahead grouping: consume while the next block keeps the
		// same list kind, stop and start a new group on mismatch.
		container := &document.Node{Type: kind}
		for i < len(blocks) {
			next, nextOK := listKind(blocks[i].Type)
			if !nextOK || next != kind {
				break
			}
			container.Children = append(container.Children, r.readListItem(blocks[i]))
			i++
		}
		nodes = append(nodes, container)
	}

	return nodes
}

// listKind maps a list-item block type to its container node type.
func listKind(blockType string) (document.NodeType, bool) {
	switch blockType {
	case KindBulletedListItem:
		return document.BulletList, true
	case KindNumberedListItem:
		return document.NumberedList, true
	case KindToDo:
		return document.TodoList, true
	}
	return "", false
}

// readListItem parses one list-item block into a paragraph-shaped child of
// the list container, carrying the checked flag for to-do items.
func (r *Reader) readListItem(b Block) *document.Node {
	item := &document.Node{Type: document.Paragraph}
	switch b.Type {
	case KindBulletedListItem:
		if b.BulletedListItem != nil {
			item.Spans = normalizeRichText(b.BulletedListItem.RichText)
		}
	case KindNumberedListItem:
		if b.NumberedListItem != nil {
			item.Spans = normalizeRichText(b.NumberedListItem.RichText)
		}
	case KindToDo:
		if b.ToDo != nil {
			item.Spans = normalizeRichText(b.ToDo.RichText)
			item.Checked = b.ToDo.Checked
		}
	}
	if len(b.Children) > 0 {
		item.Children = r.readBlocks(b.Children)
	}
	return item
}

func (r *Reader) readBlock(b Block) *document.Node {
	var node *document.Node

	switch b.Type {
	case KindParagraph:
		node = &document.Node{Type: document.Paragraph, Spans: payloadSpans(b.Paragraph)}
	case KindHeading1:
		node = &document.Node{Type: document.Heading, Level: 1, Spans: payloadSpans(b.Heading1)}
	case KindHeading2:
		node = &document.Node{Type: document.Heading, Level: 2, Spans: payloadSpans(b.Heading2)}
	case KindHeading3:
		node = &document.Node{Type: document.Heading, Level: 3, Spans: payloadSpans(b.Heading3)}
	case KindCode:
		node = &document.Node{Type: document.Code}
		if b.Code != nil {
			node.Spans = document.PlainSpans(plainText(b.Code.RichText))
			node.Language = b.Code.Language
		}
	case KindQuote:
		node = &document.Node{Type: document.Quote, Spans: payloadSpans(b.Quote)}
	case KindCallout:
		node = &document.Node{Type: document.Callout}
		if b.Callout != nil {
			node.Spans = normalizeRichText(b.Callout.RichText)
			if b.Callout.Icon != nil {
				node.Icon = b.Callout.Icon.Emoji
			}
		}
	case KindDivider:
		node = &document.Node{Type: document.Divider}
	case KindImage:
		node = &document.Node{Type: document.Image}
		if b.Image != nil {
			node.Source = b.Image.URL()
			node.Caption = plainText(b.Image.Caption)
		}
	case KindBookmark:
		node = &document.Node{Type: document.Bookmark}
		if b.Bookmark != nil {
			node.URL = b.Bookmark.URL
			node.Spans = normalizeRichText(b.Bookmark.Caption)
		}
	case KindEmbed:
		node = &document.Node{Type: document.Embed}
		if b.Embed != nil {
			node.URL = b.Embed.URL
			node.Spans = normalizeRichText(b.Embed.Caption)
		}
	case KindTable:
		node = &document.Node{Type: document.Table}
	case KindTableRow:
		node = &document.Node{Type: document.TableRow}
		if b.TableRow != nil {
			for _, cell := range b.TableRow.Cells {
				node.Children = append(node.Children, &document.Node{
					Type:  document.TableCell,
					Spans: normalizeRichText(cell),
				})
			}
		}
	default:
		if r.warnUnknown {
			r.log.Warn("unsupported block kind", "kind", b.Type, "block_id", b.ID)
		}
		node = &document.Node{
			Type:        document.Unsupported,
			Placeholder: fmt.Sprintf("[unsupported block: %s]", b.Type),
		}
	}

	// Table rows already consumed their payload as cells; every other
	// container keeps nested blocks as regular children.
	if len(b.Children) > 0 && b.Type != KindTableRow {
		node.Children = append(node.Children, r.readBlocks(b.Children)...)
	}
	return node
}

func payloadSpans(p *TextPayload) []document.Span {
	if p == nil {
		return nil
	}
	return normalizeRichText(p.RichText)
}

// normalizeRichText converts the remote span format into the canonical
// span shape, defaulting every annotation flag to false when absent.
func normalizeRichText(rts []RichText) []document.Span {
	if len(rts) == 0 {
		return nil
	}
	spans := make([]document.Span, 0, len(rts))
	for _, rt := range rts {
		s := document.Span{Text: rt.PlainText}
		if rt.Annotations != nil {
			s.Bold = rt.Annotations.Bold
			s.Italic = rt.Annotations.Italic
			s.Strikethrough = rt.Annotations.Strikethrough
			s.Underline = rt.Annotations.Underline
			s.Code = rt.Annotations.Code
		}
		if rt.Href != nil {
			s.Href = *rt.Href
		}
		spans = append(spans, s)
	}
	return spans
}

func plainText(rts []RichText) string {
	var out string
	for _, rt := range rts {
		out += rt.PlainText
	}
	return out
}
