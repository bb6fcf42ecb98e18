// Package blockdoc reads a remote block-document service's block tree and
// maps it into the document IR. The wire types mirror the service's JSON:
// one envelope per block with a per-type payload field, plus a normalized
// rich-text span format.
package blockdoc

// Block kind strings used by the remote service.
const (
	KindParagraph        = "paragraph"
	KindHeading1         = "heading_1"
	KindHeading2         = "heading_2"
	KindHeading3         = "heading_3"
	KindBulletedListItem = "bulleted_list_item"
	KindNumberedListItem = "numbered_list_item"
	KindToDo             = "to_do"
	KindCode             = "code"
	KindQuote            = "quote"
	KindCallout          = "callout"
	KindDivider          = "divider"
	KindImage            = "image"
	KindBookmark         = "bookmark"
	KindEmbed            = "embed"
	KindTable            = "table"
	KindTableRow         = "table_row"
)

// Block is one element of the remote block list. Exactly one payload field
// matching Type is populated; the rest stay nil.
type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children,omitempty"`

	Paragraph        *TextPayload     `json:"paragraph,omitempty"`
	Heading1         *TextPayload     `json:"heading_1,omitempty"`
	Heading2         *TextPayload     `json:"heading_2,omitempty"`
	Heading3         *TextPayload     `json:"heading_3,omitempty"`
	BulletedListItem *TextPayload     `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextPayload     `json:"numbered_list_item,omitempty"`
	ToDo             *TodoPayload     `json:"to_do,omitempty"`
	Code             *CodePayload     `json:"code,omitempty"`
	Quote            *TextPayload     `json:"quote,omitempty"`
	Callout          *CalloutPayload  `json:"callout,omitempty"`
	Divider          *struct{}        `json:"divider,omitempty"`
	Image            *FilePayload     `json:"image,omitempty"`
	Bookmark         *LinkPayload     `json:"bookmark,omitempty"`
	Embed            *LinkPayload     `json:"embed,omitempty"`
	Table            *TablePayload    `json:"table,omitempty"`
	TableRow         *TableRowPayload `json:"table_row,omitempty"`

	// Children carries nested blocks once fetched; the list endpoint
	// returns only has_children and the client resolves them separately.
	Children []Block `json:"children,omitempty"`
}

// RichText is the service's inline span format.
type RichText struct {
	PlainText   string       `json:"plain_text"`
	Href        *string      `json:"href,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// Annotations holds the inline style flags. A nil Annotations means every
// flag defaults to false.
type Annotations struct {
	Bold          bool `json:"bold"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Underline     bool `json:"underline"`
	Code          bool `json:"code"`
}

// TextPayload is the common rich-text payload shared by paragraphs,
// headings, list items, and quotes.
type TextPayload struct {
	RichText []RichText `json:"rich_text"`
}

// TodoPayload extends the text payload with the checked flag.
type TodoPayload struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// CodePayload carries a fenced code body and its language tag.
type CodePayload struct {
	RichText []RichText `json:"rich_text"`
	Caption  []RichText `json:"caption,omitempty"`
	Language string     `json:"language,omitempty"`
}

// CalloutPayload carries callout text plus an optional icon.
type CalloutPayload struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

// Icon is a callout icon; only emoji icons are representable downstream.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// FilePayload is an image source: either a service-hosted file with an
// expiring URL or an external URL.
type FilePayload struct {
	Type     string        `json:"type"`
	File     *HostedFile   `json:"file,omitempty"`
	External *ExternalFile `json:"external,omitempty"`
	Caption  []RichText    `json:"caption,omitempty"`
}

// HostedFile is a file stored by the service.
type HostedFile struct {
	URL string `json:"url"`
}

// ExternalFile is a file referenced by URL.
type ExternalFile struct {
	URL string `json:"url"`
}

// LinkPayload is a bookmark or embed target.
type LinkPayload struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

// TablePayload describes a table container; rows arrive as child blocks.
type TablePayload struct {
	TableWidth      int  `json:"table_width,omitempty"`
	HasColumnHeader bool `json:"has_column_header,omitempty"`
	HasRowHeader    bool `json:"has_row_header,omitempty"`
}

// TableRowPayload is one table row: a cell list of span lists.
type TableRowPayload struct {
	Cells [][]RichText `json:"cells"`
}

// URL returns the image source URL regardless of hosting type.
func (p *FilePayload) URL() string {
	switch {
	case p == nil:
		return ""
	case p.File != nil:
		return p.File.URL
	case p.External != nil:
		return p.External.URL
	}
	return ""
}
