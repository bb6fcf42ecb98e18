// Package actions compiles the document IR into the ordered list of
// abstract editor actions the automation executor replays. Actions carry
// literal payloads only; nothing in this package touches a browser.
package actions

// Type identifies one kind of editor action.
type Type string

// Editor action types, in the vocabulary of the platform's insert menu.
const (
	InsertHeading   Type = "insert-heading"
	InsertParagraph Type = "insert-paragraph"
	InsertList      Type = "insert-list"
	InsertQuote     Type = "insert-quote"
	InsertCode      Type = "insert-code"
	InsertImage     Type = "insert-image"
	SetCaption      Type = "set-caption"
	InsertRule      Type = "insert-hr"
)

// List kinds for InsertList.
const (
	ListBullet   = "bullet"
	ListNumbered = "numbered"
)

// Action is one unit of replayable editor automation. The payload fields
// used depend on Type; the rest stay zero.
type Action struct {
	Type     Type
	Level    int      // InsertHeading: collapsed platform level (1 or 2)
	Text     string   // InsertHeading, InsertParagraph, SetCaption, InsertCode
	Kind     string   // InsertList: ListBullet or ListNumbered
	Items    []string // InsertList
	Lines    []string // InsertQuote
	Language string   // InsertCode, normalized tag; empty for plain blocks
	Path     string   // InsertImage: resolved local path or URL
}

// Compiled is the full output of one compilation: the inline action stream
// plus the hoisted cover image, if the document had any image at all.
type Compiled struct {
	// CoverPath is the source of the first image encountered in document
	// order, hoisted out of the stream as the cover. Empty when the
	// document carries no image.
	CoverPath string

	// CoverCaption is the hoisted image's caption. When set, the action
	// stream opens with a paragraph carrying it.
	CoverCaption string

	// CoverIndex is where the hoisted image sat in Actions, not counting
	// the caption paragraph prepended for CoverCaption. Callers that put
	// the image back inline splice it in at this position.
	CoverIndex int

	Actions []Action
}
