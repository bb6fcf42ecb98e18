package actions

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/ysenda/go-notepress/internal/document"
)

// Compile walks the document in order and emits the editor action stream.
// The first image node is hoisted out of the stream as the cover image; if
// it carried a caption, a leading paragraph for that caption opens the
// stream. Every later image stays inline.
func Compile(doc *document.Document) *Compiled {
	c := &compiler{}
	c.compileNodes(doc.Nodes)

	out := &Compiled{
		CoverPath:    c.coverPath,
		CoverCaption: c.coverCaption,
		CoverIndex:   c.coverIndex,
		Actions:      c.actions,
	}
	if c.coverCaption != "" {
		out.Actions = append([]Action{{Type: InsertParagraph, Text: c.coverCaption}}, out.Actions...)
	}
	return out
}

type compiler struct {
	actions      []Action
	seenCover    bool
	coverPath    string
	coverCaption string
	coverIndex   int
}

func (c *compiler) emit(a Action) {
	c.actions = append(c.actions, a)
}

func (c *compiler) compileNodes(nodes []*document.Node) {
	for _, n := range nodes {
		c.compileNode(n)
	}
}

func (c *compiler) compileNode(n *document.Node) {
	switch n.Type {
	case document.Heading:
		c.emit(Action{Type: InsertHeading, Level: collapseLevel(n.Level), Text: n.Text()})

	case document.Paragraph:
		c.emit(Action{Type: InsertParagraph, Text: n.Text()})

	case document.BulletList:
		c.emit(Action{Type: InsertList, Kind: ListBullet, Items: itemTexts(n.Children, noPrefix)})

	case document.NumberedList:
		c.emit(Action{Type: InsertList, Kind: ListNumbered, Items: itemTexts(n.Children, noPrefix)})

	case document.TodoList:
		c.emit(Action{Type: InsertList, Kind: ListBullet, Items: itemTexts(n.Children, todoPrefix)})

	case document.Quote:
		c.emit(Action{Type: InsertQuote, Lines: strings.Split(n.Text(), "\n")})

	case document.Callout:
		lines := strings.Split(n.Text(), "\n")
		if n.Icon != "" && len(lines) > 0 {
			lines[0] = n.Icon + " " + lines[0]
		}
		c.emit(Action{Type: InsertQuote, Lines: lines})

	case document.Code:
		c.emit(Action{Type: InsertCode, Text: n.Text(), Language: NormalizeLanguage(n.Language)})

	case document.Divider:
		c.emit(Action{Type: InsertRule})

	case document.Image:
		c.compileImage(n)

	case document.Table:
		// The editor has no table surface; each row degrades to one
		// paragraph of cells joined with " | ".
		for _, row := range n.Children {
			if row.Type != document.TableRow {
				continue
			}
			cells := itemTexts(row.Children, noPrefix)
			c.emit(Action{Type: InsertParagraph, Text: strings.Join(cells, " | ")})
		}

	case document.Bookmark, document.Embed:
		// The platform unfurls a URL pasted on its own paragraph.
		c.emit(Action{Type: InsertParagraph, Text: n.URL})

	case document.Unsupported:
		c.emit(Action{Type: InsertParagraph, Text: n.Placeholder})
	}
}

// compileImage hoists the first image to the cover; later images produce
// an insert action immediately followed by its caption action, if any.
func (c *compiler) compileImage(n *document.Node) {
	if !c.seenCover {
		c.seenCover = true
		c.coverPath = n.Source
		c.coverCaption = n.Caption
		c.coverIndex = len(c.actions)
		return
	}
	c.emit(Action{Type: InsertImage, Path: n.Source})
	if n.Caption != "" {
		c.emit(Action{Type: SetCaption, Text: n.Caption})
	}
}

// collapseLevel maps the IR heading level onto the platform's two tiers:
// source levels 1 and 2 are the major heading, level 3 the minor one.
func collapseLevel(level int) int {
	if level <= 2 {
		return 1
	}
	return 2
}

func noPrefix(*document.Node) string { return "" }

func todoPrefix(item *document.Node) string {
	if item.Checked {
		return "☑ "
	}
	return "☐ "
}

func itemTexts(items []*document.Node, prefix func(*document.Node) string) []string {
	texts := make([]string, 0, len(items))
	for _, item := range items {
		texts = append(texts, prefix(item)+item.Text())
	}
	return texts
}

// NormalizeLanguage resolves a code language tag through the lexer
// registry so aliases and casing collapse onto one canonical tag the
// editor's language picker understands. Unknown tags pass through
// lowercased.
func NormalizeLanguage(tag string) string {
	if tag == "" {
		return ""
	}
	lexer := lexers.Get(tag)
	if lexer == nil {
		return strings.ToLower(tag)
	}
	cfg := lexer.Config()
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0]
	}
	return strings.ToLower(cfg.Name)
}
