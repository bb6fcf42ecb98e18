// Package noteapi implements the platform's JSON/HTTP write protocol:
// draft creation, draft body saves, two-step pre-signed image uploads, and
// the cover image endpoint. Errors are surfaced with their original HTTP
// status; nothing here retries.
package noteapi

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"

	"github.com/ysenda/go-notepress/internal/session"
)

// ErrUpload indicates the direct object upload step failed.
var ErrUpload = errors.New("image upload failed")

// uploadCacheSize bounds the in-process memo of uploaded assets.
const uploadCacheSize = 256

const defaultAPITimeout = 30 * time.Second

// APIError carries the platform's HTTP status for a non-2xx response so
// callers can separate transient classes from permanent ones. 4xx must
// never be retried.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API status %d: %s", e.Status, e.Body)
}

// Transient reports whether a retry by the caller could plausibly succeed.
func (e *APIError) Transient() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// Client talks to the platform's write API on behalf of one session
// provider. Re-publishing the same image content hits an in-process memo
// instead of a second upload.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sessions   session.Provider
	uploads    *lru.Cache[string, string]
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

// NewClient creates a Client for the platform at baseURL.
func NewClient(baseURL string, sessions session.Provider, opts ...ClientOption) *Client {
	uploads, _ := lru.New[string, string](uploadCacheSize)
	c := &Client{
		httpClient: &http.Client{Timeout: defaultAPITimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		sessions:   sessions,
		uploads:    uploads,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EditURL returns the browser edit address for a draft key.
func (c *Client) EditURL(key string) string {
	return fmt.Sprintf("%s/notes/%s/edit", c.baseURL, key)
}

type draftRequest struct {
	Name   string   `json:"name"`
	Body   string   `json:"body,omitempty"`
	Tags   []string `json:"hashtags,omitempty"`
	Status string   `json:"status"`
}

type draftResponse struct {
	Key string `json:"key"`
}

// CreateDraft creates an empty draft and returns its key.
func (c *Client) CreateDraft(ctx context.Context, title string) (string, error) {
	var resp draftResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/text_notes",
		draftRequest{Name: title, Status: "draft"}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Key, nil
}

// SaveDraft writes the draft's title, body HTML, and tags against an
// existing key. Saving the same key again overwrites the draft.
func (c *Client) SaveDraft(ctx context.Context, key, title, body string, tags []string) error {
	return c.doJSON(ctx, http.MethodPut, "/api/v1/text_notes/"+key,
		draftRequest{Name: title, Body: body, Tags: tags, Status: "draft"}, nil)
}

type uploadTargetRequest struct {
	ContentType   string `json:"content_type"`
	ContentLength int    `json:"content_length"`
}

type uploadTargetResponse struct {
	UploadURL string `json:"upload_url"`
	AssetURL  string `json:"asset_url"`
}

// UploadImage validates image content, then performs the two-step upload:
// request a signed destination, then send the object there directly. The
// returned asset URL is memoized by content hash, so republishing an
// unchanged image costs no network calls.
func (c *Client) UploadImage(ctx context.Context, name string, data []byte) (string, error) {
	mime, err := ValidateImage(name, data)
	if err != nil {
		return "", err
	}

	sum := blake3.Sum256(data)
	cacheKey := hex.EncodeToString(sum[:])
	if assetURL, ok := c.uploads.Get(cacheKey); ok {
		return assetURL, nil
	}

	var target uploadTargetResponse
	err = c.doJSON(ctx, http.MethodPost, "/api/v1/upload_targets",
		uploadTargetRequest{ContentType: mime, ContentLength: len(data)}, &target)
	if err != nil {
		return "", err
	}

	if err := c.putObject(ctx, target.UploadURL, mime, data); err != nil {
		return "", err
	}

	c.uploads.Add(cacheKey, target.AssetURL)
	return target.AssetURL, nil
}

// UploadImageFile reads and uploads a local image file.
func (c *Client) UploadImageFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- image path is caller-provided
	if err != nil {
		return "", fmt.Errorf("reading image %s: %w", path, err)
	}
	return c.UploadImage(ctx, path, data)
}

type coverRequest struct {
	ImageURL string `json:"image_url"`
}

// SetCoverImage sets the draft's cover. A local path is uploaded first; a
// remote URL is passed through.
func (c *Client) SetCoverImage(ctx context.Context, key, source string) error {
	imageURL := source
	if !isRemoteURL(source) {
		var err error
		imageURL, err = c.UploadImageFile(ctx, source)
		if err != nil {
			return err
		}
	}
	return c.doJSON(ctx, http.MethodPut, "/api/v1/text_notes/"+key+"/eyecatch",
		coverRequest{ImageURL: imageURL}, nil)
}

// doJSON performs one authenticated JSON round trip. Non-2xx responses
// become *APIError with the original status; no internal retries.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	sess, err := c.sessions.Current(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", sess.Cookie)
	if sess.CSRFToken != "" {
		req.Header.Set("X-CSRF-Token", sess.CSRFToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// putObject sends the object bytes to the signed destination.
func (c *Client) putObject(ctx context.Context, uploadURL, mime string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", mime)
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return nil
}

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
