package markdown

import (
	"github.com/ysenda/go-notepress/internal/document"
)

// Read parses UTF-8 Markdown into a document. A leading front-matter block
// and a leading "# " title line are stripped before the body is parsed.
// Title resolution order: front matter title, then the title line; callers
// with an explicit title override the result afterwards.
func Read(src string) (*document.Document, error) {
	meta, body, err := stripFrontMatter(src)
	if err != nil {
		return nil, err
	}

	title, body := extractTitle(body)
	if meta.Title != "" {
		title = meta.Title
	}

	body = preprocess(body)
	nodes := newParser(body, newInlineParser()).parse()

	return &document.Document{
		Title: title,
		Cover: meta.Cover,
		Tags:  meta.Tags,
		Nodes: nodes,
	}, nil
}
