package notepress

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ysenda/go-notepress/internal/session"
)

// DefaultBaseURL is the platform origin used when none is configured.
const DefaultBaseURL = "https://note.com"

// Input describes one document to publish. Exactly one of Markdown or
// PageID must be set: a Markdown body is parsed locally, a PageID is
// fetched from the configured block service.
type Input struct {
	Title    string   // explicit title; overrides any title found in the source
	Markdown string   // UTF-8 Markdown body (optional front matter + title line)
	PageID   string   // block-document id on the remote service
	DraftKey string   // existing draft to overwrite; empty creates a new draft
	Cover    string   // explicit cover image path or URL
	Tags     []string // tags applied to the draft; overrides front matter tags
}

// Validate checks that the input names exactly one content source.
func (in Input) Validate() error {
	if in.Markdown == "" && in.PageID == "" {
		return ErrEmptyInput
	}
	if in.Markdown != "" && in.PageID != "" {
		return ErrConflictingInput
	}
	return nil
}

// DeliveryPath identifies which route carried the document to the platform.
type DeliveryPath string

// Delivery paths. Documents with inline images must go through the live
// editor; everything else is delivered as sanitized HTML over the API.
const (
	PathAPI DeliveryPath = "api"
	PathUI  DeliveryPath = "ui"
)

// SkippedAction records one non-critical step that failed and was passed
// over so the rest of the publish could proceed.
type SkippedAction struct {
	Action string // action kind, e.g. "insert-image", "set-cover-image"
	Detail string // payload excerpt: image path, caption text
	Reason string // underlying failure
}

// PublishResult reports where the draft landed and what was skipped.
type PublishResult struct {
	DraftKey string
	EditURL  string
	Path     DeliveryPath
	Skipped  []SkippedAction
}

// Partial reports whether the draft was saved with some content skipped.
func (r *PublishResult) Partial() bool {
	return len(r.Skipped) > 0
}

// MissingImagePolicy decides what happens when a referenced local image
// file does not exist.
type MissingImagePolicy int

const (
	// MissingImageSkip records the image as skipped and publishes the
	// rest of the document. The default.
	MissingImageSkip MissingImagePolicy = iota

	// MissingImageFail rejects the document before any automation or
	// API call is made.
	MissingImageFail
)

// Session is one authenticated platform credential.
type Session struct {
	Account   string // account identity; reauthentication serializes per account
	Cookie    string // platform session cookie value
	CSRFToken string // accompanies write API calls
}

// SessionProvider supplies credentials. Credential acquisition lives
// outside this module: the publisher calls Current before a run and
// Refresh when the platform rejects the credential mid-run.
type SessionProvider interface {
	Current(ctx context.Context) (Session, error)
	Refresh(ctx context.Context) (Session, error)
}

// Option configures a Publisher.
type Option func(*Publisher)

// publisherConfig holds internal configuration for Publisher.
type publisherConfig struct {
	timeout      time.Duration
	baseURL      string
	headless     bool
	browserBin   string
	blockURL     string
	blockToken   string
	missingImage MissingImagePolicy
	warnUnknown  bool
	httpClient   *http.Client
}

// defaultTimeout bounds one publish run, including editor automation.
const defaultTimeout = 2 * time.Minute

// WithTimeout sets the per-publish timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("notepress: WithTimeout duration must be positive")
	}
	return func(p *Publisher) {
		p.cfg.timeout = d
	}
}

// WithLogger sets the structured logger. Nil keeps logging disabled.
func WithLogger(log *slog.Logger) Option {
	return func(p *Publisher) {
		if log != nil {
			p.log = log
		}
	}
}

// WithBaseURL sets the platform origin.
func WithBaseURL(baseURL string) Option {
	return func(p *Publisher) {
		if baseURL != "" {
			p.cfg.baseURL = baseURL
		}
	}
}

// WithHeadless controls whether the automation browser runs headless.
func WithHeadless(headless bool) Option {
	return func(p *Publisher) {
		p.cfg.headless = headless
	}
}

// WithBrowserBin points the automation browser at a pre-installed binary
// instead of letting the launcher download one.
func WithBrowserBin(bin string) Option {
	return func(p *Publisher) {
		p.cfg.browserBin = bin
	}
}

// WithSessionProvider installs the credential source.
func WithSessionProvider(provider SessionProvider) Option {
	return func(p *Publisher) {
		if provider != nil {
			p.provider = provider
		}
	}
}

// WithSession installs a fixed credential, for callers that already hold
// one (e.g. a cookie from the environment).
func WithSession(s Session) Option {
	return func(p *Publisher) {
		p.provider = staticSession{s}
	}
}

// WithBlockService configures the remote block-document service used to
// resolve Input.PageID.
func WithBlockService(serviceURL, token string) Option {
	return func(p *Publisher) {
		p.cfg.blockURL = serviceURL
		p.cfg.blockToken = token
	}
}

// WithWarnUnknownBlocks controls whether unknown remote block kinds are
// logged when they are dropped. On by default.
func WithWarnUnknownBlocks(warn bool) Option {
	return func(p *Publisher) {
		p.cfg.warnUnknown = warn
	}
}

// WithMissingImagePolicy sets the missing-image policy.
func WithMissingImagePolicy(policy MissingImagePolicy) Option {
	return func(p *Publisher) {
		p.cfg.missingImage = policy
	}
}

// WithHTTPClient replaces the HTTP client used for API calls and remote
// image fetches (e.g., in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Publisher) {
		if hc != nil {
			p.cfg.httpClient = hc
		}
	}
}

// staticSession is the SessionProvider for a fixed credential.
type staticSession struct {
	s Session
}

func (p staticSession) Current(context.Context) (Session, error) {
	if p.s.Cookie == "" {
		return Session{}, session.ErrNoSession
	}
	return p.s, nil
}

func (p staticSession) Refresh(ctx context.Context) (Session, error) {
	return p.Current(ctx)
}
