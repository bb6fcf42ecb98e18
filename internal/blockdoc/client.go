package blockdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrBlockFetch indicates the block service returned an error response.
var ErrBlockFetch = errors.New("block fetch failed")

const (
	defaultPageSize = 100

	// maxNestingDepth bounds recursive child resolution; the service
	// reports has_children but never inlines the child list.
	maxNestingDepth = 4

	defaultFetchTimeout = 30 * time.Second
)

// Client fetches block lists from the remote document service, draining
// cursor pagination and resolving nested children.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	pageSize   int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client (e.g., in tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithPageSize overrides the pagination page size.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a Client for the document service at baseURL,
// authenticating with the given integration token.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
		baseURL:    baseURL,
		token:      token,
		pageSize:   defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listResponse is one page of the children listing.
type listResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// ListBlocks returns the complete block list under the given block or page
// ID, following pagination cursors and fetching nested children up to a
// bounded depth.
func (c *Client) ListBlocks(ctx context.Context, blockID string) ([]Block, error) {
	blocks, err := c.listChildren(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if err := c.resolveChildren(ctx, blocks, 1); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (c *Client) listChildren(ctx context.Context, blockID string) ([]Block, error) {
	var all []Block
	cursor := ""

	for {
		u := fmt.Sprintf("%s/v1/blocks/%s/children?page_size=%d",
			c.baseURL, url.PathEscape(blockID), c.pageSize)
		if cursor != "" {
			u += "&start_cursor=" + url.QueryEscape(cursor)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBlockFetch, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBlockFetch, err)
		}

		page, err := decodeListResponse(resp)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Results...)
		if !page.HasMore || page.NextCursor == nil || *page.NextCursor == "" {
			return all, nil
		}
		cursor = *page.NextCursor
	}
}

func decodeListResponse(resp *http.Response) (*listResponse, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status %d: %s", ErrBlockFetch, resp.StatusCode, body)
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrBlockFetch, err)
	}
	return &page, nil
}

// resolveChildren fills Children for blocks that report has_children,
// recursing until maxNestingDepth.
func (c *Client) resolveChildren(ctx context.Context, blocks []Block, depth int) error {
	if depth >= maxNestingDepth {
		return nil
	}
	for i := range blocks {
		if !blocks[i].HasChildren || len(blocks[i].Children) > 0 {
			continue
		}
		children, err := c.listChildren(ctx, blocks[i].ID)
		if err != nil {
			return err
		}
		if err := c.resolveChildren(ctx, children, depth+1); err != nil {
			return err
		}
		blocks[i].Children = children
	}
	return nil
}
