// Package markdown reads UTF-8 Markdown text into the document IR through
// a line-oriented parser with explicit lookahead. An optional front-matter
// block and a leading title line are stripped before parsing.
package markdown

import "regexp"

// Precompiled patterns shared by preprocessing and the line parser.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress runs of blank lines to at most two. Two must survive: one
	// blank line after an image still binds a caption, two break the bond.
	multipleBlankLines = regexp.MustCompile(`\n{4,}`)
)

// preprocess normalizes raw Markdown before line parsing. Order matters:
// line endings first so every later pattern can assume \n.
func preprocess(content string) string {
	content = normalizeLineEndings(content)
	content = compressBlankLines(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n\n")
}
