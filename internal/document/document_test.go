package document

import (
	"errors"
	"testing"
)

func TestNodeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		node     *Node
		expected string
	}{
		{
			name:     "no spans",
			node:     &Node{Type: Paragraph},
			expected: "",
		},
		{
			name:     "single span",
			node:     &Node{Type: Paragraph, Spans: PlainSpans("hello")},
			expected: "hello",
		},
		{
			name: "concatenates spans ignoring annotations",
			node: &Node{Type: Paragraph, Spans: []Span{
				{Text: "bold", Bold: true},
				{Text: " and "},
				{Text: "code", Code: true},
			}},
			expected: "bold and code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.node.Text(); got != tt.expected {
				t.Errorf("Text() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDocumentHasImages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      *Document
		expected bool
	}{
		{
			name:     "empty document",
			doc:      &Document{},
			expected: false,
		},
		{
			name: "text only",
			doc: &Document{Nodes: []*Node{
				{Type: Heading, Level: 2, Spans: PlainSpans("title")},
				{Type: Paragraph, Spans: PlainSpans("body")},
			}},
			expected: false,
		},
		{
			name: "top-level image",
			doc: &Document{Nodes: []*Node{
				{Type: Image, Source: "cover.png"},
			}},
			expected: true,
		},
		{
			name: "image nested in a list item",
			doc: &Document{Nodes: []*Node{
				{Type: BulletList, Children: []*Node{
					{Type: Paragraph, Spans: PlainSpans("item"), Children: []*Node{
						{Type: Image, Source: "nested.png"},
					}},
				}},
			}},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.doc.HasImages(); got != tt.expected {
				t.Errorf("HasImages() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDocumentValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{Nodes: []*Node{
				{Type: Heading, Level: 2, Spans: PlainSpans("h")},
				{Type: Image, Source: "https://example.com/a.png", Caption: "cap"},
			}},
		},
		{
			name: "image without source",
			doc: &Document{Nodes: []*Node{
				{Type: Image, Caption: "orphan caption"},
			}},
			wantErr: ErrImageSourceMissing,
		},
		{
			name: "image with whitespace source",
			doc: &Document{Nodes: []*Node{
				{Type: Image, Source: "   "},
			}},
			wantErr: ErrImageSourceMissing,
		},
		{
			name: "nested image without source",
			doc: &Document{Nodes: []*Node{
				{Type: Quote, Children: []*Node{
					{Type: Image},
				}},
			}},
			wantErr: ErrImageSourceMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.doc.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDocumentValidateHeadingLevel(t *testing.T) {
	t.Parallel()

	for _, level := range []int{0, 4, 7} {
		doc := &Document{Nodes: []*Node{{Type: Heading, Level: level}}}
		if err := doc.Validate(); err == nil {
			t.Errorf("Validate() accepted heading level %d", level)
		}
	}
	for _, level := range []int{1, 2, 3} {
		doc := &Document{Nodes: []*Node{{Type: Heading, Level: level}}}
		if err := doc.Validate(); err != nil {
			t.Errorf("Validate() rejected heading level %d: %v", level, err)
		}
	}
}
