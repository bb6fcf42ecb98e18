package markdown

import (
	"regexp"
	"strings"

	"github.com/ysenda/go-notepress/internal/document"
)

// Block-level line patterns, in the priority order the parser applies
// them. The comment-delimited image block outranks generic image parsing.
var (
	imageBlockStart = regexp.MustCompile(`^<!--\s*image:([\w-]+)\s*-->\s*$`)
	imageBlockEnd   = regexp.MustCompile(`^<!--\s*/image:([\w-]+)\s*-->\s*$`)
	commentLine     = regexp.MustCompile(`^<!--.*-->\s*$`)
	fenceLine       = regexp.MustCompile("^(```|~~~)\\s*([A-Za-z0-9+#._-]*)\\s*$")
	headingLine     = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)
	ruleLine        = regexp.MustCompile(`^(-{3,}|\*{3,})\s*$`)
	bulletItem      = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	numberedItem    = regexp.MustCompile(`^[0-9]+\.\s+(.*)$`)
	bracketImage    = regexp.MustCompile(`^!\[[^\]]*\]\(([^)]+?)(?:\s+"[^"]*")?\)\s*$`)
	wikiImage       = regexp.MustCompile(`^\[\[([^\]]+)\]\]\s*$`)
	italicLine      = regexp.MustCompile(`^[*_]([^*_].*?)[*_]\s*$`)
)

// parser walks the body line by line with explicit lookahead.
type parser struct {
	lines  []string
	pos    int
	inline *inlineParser
}

func newParser(body string, inline *inlineParser) *parser {
	return &parser{lines: strings.Split(body, "\n"), inline: inline}
}

func (p *parser) parse() []*document.Node {
	var nodes []*document.Node
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		switch {
		case isBlank(line):
			p.pos++
		case imageBlockStart.MatchString(line):
			if n, ok := p.parseImageBlock(); ok {
				nodes = append(nodes, n)
			}
		case commentLine.MatchString(line):
			p.pos++
		case fenceLine.MatchString(line):
			nodes = append(nodes, p.parseCode())
		case headingLine.MatchString(line):
			nodes = append(nodes, p.parseHeading())
		case ruleLine.MatchString(line):
			nodes = append(nodes, &document.Node{Type: document.Divider})
			p.pos++
		case strings.HasPrefix(line, ">"):
			nodes = append(nodes, p.parseQuote())
		case bulletItem.MatchString(line):
			nodes = append(nodes, p.parseList(document.BulletList, bulletItem))
		case numberedItem.MatchString(line):
			nodes = append(nodes, p.parseList(document.NumberedList, numberedItem))
		case isImageLine(line):
			nodes = append(nodes, p.parseImage())
		default:
			nodes = append(nodes, p.parseParagraph())
		}
	}
	return nodes
}

// parseImageBlock consumes a paired marker region and yields one atomic
// image element from the image reference and italic caption inside it. An
// unclosed start marker degrades to a plain comment.
func (p *parser) parseImageBlock() (*document.Node, bool) {
	id := imageBlockStart.FindStringSubmatch(p.lines[p.pos])[1]

	end := -1
	for i := p.pos + 1; i < len(p.lines); i++ {
		if m := imageBlockEnd.FindStringSubmatch(p.lines[i]); m != nil && m[1] == id {
			end = i
			break
		}
	}
	if end < 0 {
		p.pos++
		return nil, false
	}

	node := &document.Node{Type: document.Image}
	for _, line := range p.lines[p.pos+1 : end] {
		if path, ok := imagePath(line); ok && node.Source == "" {
			node.Source = path
			continue
		}
		if m := italicLine.FindStringSubmatch(line); m != nil && node.Caption == "" {
			node.Caption = strings.TrimSpace(m[1])
		}
	}
	p.pos = end + 1

	if node.Source == "" {
		return nil, false
	}
	return node, true
}

func (p *parser) parseCode() *document.Node {
	m := fenceLine.FindStringSubmatch(p.lines[p.pos])
	fence, lang := m[1], m[2]
	p.pos++

	var body []string
	for p.pos < len(p.lines) {
		if isClosingFence(p.lines[p.pos], fence) {
			p.pos++
			break
		}
		body = append(body, p.lines[p.pos])
		p.pos++
	}

	return &document.Node{
		Type:     document.Code,
		Language: lang,
		Spans:    document.PlainSpans(strings.Join(body, "\n")),
	}
}

func (p *parser) parseHeading() *document.Node {
	m := headingLine.FindStringSubmatch(p.lines[p.pos])
	p.pos++
	level, text := len(m[1]), m[2]

	if level <= 3 {
		return &document.Node{Type: document.Heading, Level: level, Spans: p.inline.Parse(text)}
	}

	// Levels 4-6 degrade to an all-bold paragraph: the platform exposes
	// only two heading tiers.
	spans := p.inline.Parse(text)
	for i := range spans {
		spans[i].Bold = true
	}
	return &document.Node{Type: document.Paragraph, Spans: spans}
}

func (p *parser) parseQuote() *document.Node {
	var lines []string
	for p.pos < len(p.lines) && strings.HasPrefix(p.lines[p.pos], ">") {
		l := strings.TrimPrefix(p.lines[p.pos], ">")
		l = strings.TrimPrefix(l, " ")
		lines = append(lines, l)
		p.pos++
	}
	return &document.Node{Type: document.Quote, Spans: p.inline.Parse(strings.Join(lines, "\n"))}
}

func (p *parser) parseList(kind document.NodeType, item *regexp.Regexp) *document.Node {
	container := &document.Node{Type: kind}
	for p.pos < len(p.lines) {
		m := item.FindStringSubmatch(p.lines[p.pos])
		if m == nil {
			break
		}
		container.Children = append(container.Children, &document.Node{
			Type:  document.Paragraph,
			Spans: p.inline.Parse(m[1]),
		})
		p.pos++
	}
	return container
}

// parseImage consumes an image reference line plus, tolerating zero or one
// blank line, a following plain-text caption line.
func (p *parser) parseImage() *document.Node {
	path, _ := imagePath(p.lines[p.pos])
	p.pos++
	node := &document.Node{Type: document.Image, Source: path}

	look := p.pos
	if look < len(p.lines) && isBlank(p.lines[look]) {
		look++
	}
	if look < len(p.lines) {
		cand := p.lines[look]
		if !isBlank(cand) && !isBlockLine(cand) {
			node.Caption = strings.TrimSpace(cand)
			p.pos = look + 1
		}
	}
	return node
}

func (p *parser) parseParagraph() *document.Node {
	start := p.pos
	for p.pos < len(p.lines) && !isBlank(p.lines[p.pos]) && !isBlockLine(p.lines[p.pos]) {
		p.pos++
	}
	text := strings.Join(p.lines[start:p.pos], "\n")
	return &document.Node{Type: document.Paragraph, Spans: p.inline.Parse(text)}
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// isBlockLine reports whether the line opens any non-paragraph block.
// Paragraph accumulation and caption lookahead both stop on these.
func isBlockLine(line string) bool {
	return fenceLine.MatchString(line) ||
		headingLine.MatchString(line) ||
		ruleLine.MatchString(line) ||
		strings.HasPrefix(line, ">") ||
		bulletItem.MatchString(line) ||
		numberedItem.MatchString(line) ||
		isImageLine(line) ||
		commentLine.MatchString(line)
}

func isImageLine(line string) bool {
	return bracketImage.MatchString(line) || wikiImage.MatchString(line)
}

// imagePath extracts the source path from either image reference form.
func imagePath(line string) (string, bool) {
	if m := bracketImage.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := wikiImage.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func isClosingFence(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(fence) {
		return false
	}
	return strings.Trim(trimmed, fence[:1]) == ""
}
