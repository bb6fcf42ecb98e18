package render

import (
	"fmt"
	"regexp"
	"strings"
)

// Code placeholders use Unicode Private Use Area characters so protected
// regions pass through inline-markup processing unchanged and are restored
// verbatim afterwards.
const (
	codeBlockPlaceholder = ""
	codeSpanStart        = ""
	codeSpanEnd          = ""
)

// Line patterns for the legacy renderer.
var (
	legacyHeading  = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)
	legacyRule     = regexp.MustCompile(`^(-{3,}|\*{3,})\s*$`)
	legacyBullet   = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	legacyNumbered = regexp.MustCompile(`^[0-9]+\.\s+(.*)$`)
	legacyFence    = regexp.MustCompile("(?ms)^```([A-Za-z0-9+#._-]*)\\n(.*?)^```\\s*$")

	inlineCodeSpan = regexp.MustCompile("`([^`]+)`")
	inlineBold     = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	inlineItalic   = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	inlineStrike   = regexp.MustCompile(`~~(.+?)~~`)
	inlineLink     = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// lineState names the renderer's live accumulation state.
type lineState int

const (
	stateText lineState = iota
	stateBulletList
	stateNumberedList
	stateQuote
)

// lineClass classifies one input line for the transition table.
type lineClass int

const (
	classPlain lineClass = iota
	classHeading
	classRule
	classBullet
	classNumbered
	classQuote
	classCode
	classBlank
)

// transition describes what a line class does in a given state: whether the
// accumulated container flushes first, and which state the renderer enters.
// "What closes a list" is this table, not scattered conditionals.
type transition struct {
	flush bool
	next  lineState
}

var transitions = map[lineState]map[lineClass]transition{
	stateText: {
		classPlain:    {next: stateText},
		classHeading:  {next: stateText},
		classRule:     {next: stateText},
		classBullet:   {next: stateBulletList},
		classNumbered: {next: stateNumberedList},
		classQuote:    {next: stateQuote},
		classCode:     {next: stateText},
		classBlank:    {next: stateText},
	},
	stateBulletList: {
		classPlain:    {flush: true, next: stateText},
		classHeading:  {flush: true, next: stateText},
		classRule:     {flush: true, next: stateText},
		classBullet:   {next: stateBulletList},
		classNumbered: {flush: true, next: stateNumberedList},
		classQuote:    {flush: true, next: stateQuote},
		classCode:     {flush: true, next: stateText},
		classBlank:    {flush: true, next: stateText},
	},
	stateNumberedList: {
		classPlain:    {flush: true, next: stateText},
		classHeading:  {flush: true, next: stateText},
		classRule:     {flush: true, next: stateText},
		classBullet:   {flush: true, next: stateBulletList},
		classNumbered: {next: stateNumberedList},
		classQuote:    {flush: true, next: stateQuote},
		classCode:     {flush: true, next: stateText},
		classBlank:    {flush: true, next: stateText},
	},
	stateQuote: {
		classPlain:    {flush: true, next: stateText},
		classHeading:  {flush: true, next: stateText},
		classRule:     {flush: true, next: stateText},
		classBullet:   {flush: true, next: stateBulletList},
		classNumbered: {flush: true, next: stateNumberedList},
		classQuote:    {next: stateQuote},
		classCode:     {flush: true, next: stateText},
		classBlank:    {flush: true, next: stateText},
	},
}

// RenderMarkdown converts raw Markdown directly into sanitized HTML. This
// is the legacy path for callers that skip the reader; the IR path through
// Render is preferred.
func (r *Renderer) RenderMarkdown(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")

	// Fenced code bodies come out first so blank lines inside them never
	// split paragraphs and their text skips inline processing.
	var codeBlocks []string
	src = legacyFence.ReplaceAllStringFunc(src, func(m string) string {
		sub := legacyFence.FindStringSubmatch(m)
		body := strings.TrimSuffix(sub[2], "\n")
		codeBlocks = append(codeBlocks, body)
		return codeBlockPlaceholder
	})

	var b strings.Builder
	for _, para := range strings.Split(src, "\n\n") {
		para = strings.Trim(para, "\n")
		if strings.TrimSpace(para) == "" {
			continue
		}
		r.renderLegacyParagraph(&b, para, &codeBlocks)
	}
	return Sanitize(b.String())
}

// renderLegacyParagraph emits one blank-line-delimited chunk. Chunks with
// no block-level line join their lines with <br> in a single paragraph;
// anything else is reprocessed line by line through the state machine.
func (r *Renderer) renderLegacyParagraph(b *strings.Builder, para string, codeBlocks *[]string) {
	lines := strings.Split(para, "\n")

	hasBlock := false
	for _, line := range lines {
		if c := classify(line); c != classPlain && c != classBlank {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		r.writeElement(b, "p", renderInlineMarkdown(strings.Join(lines, "\n")))
		return
	}

	m := &legacyMachine{r: r, out: b, codeBlocks: codeBlocks}
	for _, line := range lines {
		m.feed(line)
	}
	m.finish()
}

// legacyMachine runs the transition table over one chunk of lines.
type legacyMachine struct {
	r          *Renderer
	out        *strings.Builder
	codeBlocks *[]string

	state lineState
	items []string // accumulated list items or quote lines
	plain []string // accumulated plain lines inside stateText
}

func (m *legacyMachine) feed(line string) {
	class := classify(line)
	t := transitions[m.state][class]

	if t.flush {
		m.flushContainer()
	}
	if class != classPlain && len(m.plain) > 0 {
		m.flushPlain()
	}
	m.state = t.next

	switch class {
	case classHeading:
		sub := legacyHeading.FindStringSubmatch(line)
		m.r.writeLegacyHeading(m.out, len(sub[1]), sub[2])
	case classRule:
		m.out.WriteString(fmt.Sprintf("<hr %s/>\n", m.r.idPair()))
	case classBullet:
		m.items = append(m.items, legacyBullet.FindStringSubmatch(line)[1])
	case classNumbered:
		m.items = append(m.items, legacyNumbered.FindStringSubmatch(line)[1])
	case classQuote:
		l := strings.TrimPrefix(line, ">")
		m.items = append(m.items, strings.TrimPrefix(l, " "))
	case classCode:
		m.emitCodeBlock()
	case classPlain:
		if strings.TrimSpace(line) != "" {
			m.plain = append(m.plain, line)
		}
	}
}

func (m *legacyMachine) finish() {
	m.flushContainer()
	m.flushPlain()
}

// flushContainer closes the live list or quote accumulation, if any.
func (m *legacyMachine) flushContainer() {
	if len(m.items) == 0 {
		m.state = stateText
		return
	}
	switch m.state {
	case stateBulletList:
		m.writeLegacyList("ul")
	case stateNumberedList:
		m.writeLegacyList("ol")
	case stateQuote:
		rendered := make([]string, len(m.items))
		for i, l := range m.items {
			rendered[i] = renderInlineMarkdown(l)
		}
		m.r.writeElement(m.out, "blockquote", strings.Join(rendered, "<br>"))
	}
	m.items = nil
	m.state = stateText
}

func (m *legacyMachine) writeLegacyList(tag string) {
	m.out.WriteString(fmt.Sprintf("<%s %s>", tag, m.r.idPair()))
	for _, item := range m.items {
		m.out.WriteString("<li>" + renderInlineMarkdown(item) + "</li>")
	}
	m.out.WriteString(fmt.Sprintf("</%s>\n", tag))
}

func (m *legacyMachine) flushPlain() {
	if len(m.plain) == 0 {
		return
	}
	m.r.writeElement(m.out, "p", renderInlineMarkdown(strings.Join(m.plain, "\n")))
	m.plain = nil
}

func (m *legacyMachine) emitCodeBlock() {
	if len(*m.codeBlocks) == 0 {
		return
	}
	body := (*m.codeBlocks)[0]
	*m.codeBlocks = (*m.codeBlocks)[1:]
	m.r.writeElement(m.out, "pre", "<code>"+escapeText(body)+"</code>")
}

func classify(line string) lineClass {
	switch {
	case strings.TrimSpace(line) == "":
		return classBlank
	case strings.TrimSpace(line) == codeBlockPlaceholder:
		return classCode
	case legacyHeading.MatchString(line):
		return classHeading
	case legacyRule.MatchString(line):
		return classRule
	case legacyBullet.MatchString(line):
		return classBullet
	case legacyNumbered.MatchString(line):
		return classNumbered
	case strings.HasPrefix(line, ">"):
		return classQuote
	}
	return classPlain
}

// writeLegacyHeading applies the platform's heading collapse: levels 1 and
// 2 render as the major heading, 3 as the minor one, 4-6 as a bold
// paragraph.
func (r *Renderer) writeLegacyHeading(b *strings.Builder, level int, text string) {
	inner := renderInlineMarkdown(text)
	switch {
	case level <= 2:
		r.writeElement(b, majorHeadingTag, inner)
	case level == 3:
		r.writeElement(b, minorHeadingTag, inner)
	default:
		r.writeElement(b, "p", "<b>"+inner+"</b>")
	}
}

// renderInlineMarkdown applies inline markup to one logical text block.
// Code spans are protected by placeholders first and restored verbatim
// after every other pattern ran.
func renderInlineMarkdown(text string) string {
	var codeSpans []string
	text = inlineCodeSpan.ReplaceAllStringFunc(text, func(m string) string {
		codeSpans = append(codeSpans, inlineCodeSpan.FindStringSubmatch(m)[1])
		return codeSpanStart + codeSpanEnd
	})

	text = escapeText(text)
	text = strings.ReplaceAll(text, "\n", "<br>")

	text = inlineBold.ReplaceAllString(text, "<b>$1$2</b>")
	text = inlineItalic.ReplaceAllString(text, "<i>$1$2</i>")
	text = inlineStrike.ReplaceAllString(text, "<s>$1</s>")
	text = inlineLink.ReplaceAllString(text, `<a href="$2">$1</a>`)

	for _, span := range codeSpans {
		text = strings.Replace(text, codeSpanStart+codeSpanEnd,
			"<code>"+escapeText(span)+"</code>", 1)
	}
	return text
}
