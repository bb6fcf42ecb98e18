package blockdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientListBlocksDrainsPagination(t *testing.T) {
	t.Parallel()

	cursorB := "cursor-b"
	pages := map[string]listResponse{
		"": {
			Results:    []Block{{ID: "1", Type: KindParagraph}, {ID: "2", Type: KindParagraph}},
			HasMore:    true,
			NextCursor: &cursorB,
		},
		cursorB: {
			Results: []Block{{ID: "3", Type: KindParagraph}},
		},
	}

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("Authorization = %q", got)
		}
		page := pages[r.URL.Query().Get("start_cursor")]
		if err := json.NewEncoder(w).Encode(page); err != nil {
			t.Fatal(err)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token-123", WithHTTPClient(srv.Client()))
	blocks, err := c.ListBlocks(context.Background(), "page-1")
	if err != nil {
		t.Fatalf("ListBlocks() error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2 (one per page)", requests)
	}
	if blocks[2].ID != "3" {
		t.Errorf("pagination order broken: last block %q", blocks[2].ID)
	}
}

func TestClientListBlocksResolvesChildren(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var page listResponse
		switch r.URL.Path {
		case "/v1/blocks/root/children":
			page = listResponse{Results: []Block{{ID: "q", Type: KindQuote, HasChildren: true}}}
		case "/v1/blocks/q/children":
			page = listResponse{Results: []Block{{ID: "p", Type: KindParagraph}}}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewEncoder(w).Encode(page); err != nil {
			t.Fatal(err)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t", WithHTTPClient(srv.Client()))
	blocks, err := c.ListBlocks(context.Background(), "root")
	if err != nil {
		t.Fatalf("ListBlocks() error: %v", err)
	}
	if len(blocks) != 1 || len(blocks[0].Children) != 1 {
		t.Fatalf("nested children not resolved: %+v", blocks)
	}
	if blocks[0].Children[0].ID != "p" {
		t.Errorf("child ID = %q, want p", blocks[0].Children[0].ID)
	}
}

func TestClientListBlocksErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no access"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t", WithHTTPClient(srv.Client()))
	_, err := c.ListBlocks(context.Background(), "root")
	if !errors.Is(err, ErrBlockFetch) {
		t.Fatalf("error = %v, want ErrBlockFetch", err)
	}
	if want := fmt.Sprintf("status %d", http.StatusForbidden); !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not carry the original status", err)
	}
}
