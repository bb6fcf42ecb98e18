package markdown

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
)

// ErrFrontMatter indicates a present but unparseable front-matter block.
var ErrFrontMatter = errors.New("invalid front matter")

// frontMatter is the metadata a document may carry ahead of its body.
type frontMatter struct {
	Title string   `yaml:"title"`
	Cover string   `yaml:"cover"`
	Tags  []string `yaml:"tags"`
}

var titleLine = regexp.MustCompile(`^#\s+(.+?)\s*$`)

// stripFrontMatter parses and removes a leading front-matter block. Content
// without one is returned unchanged.
func stripFrontMatter(src string) (frontMatter, string, error) {
	var meta frontMatter
	rest, err := frontmatter.Parse(strings.NewReader(src), &meta)
	if err != nil {
		return frontMatter{}, "", fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	return meta, string(rest), nil
}

// extractTitle removes a leading "# ..." line and returns it as the title.
// Blank lines before it are tolerated; anything else means no title line.
func extractTitle(body string) (string, string) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := titleLine.FindStringSubmatch(line); m != nil {
			return m[1], strings.Join(lines[i+1:], "\n")
		}
		break
	}
	return "", body
}
