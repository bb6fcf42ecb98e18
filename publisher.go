package notepress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ysenda/go-notepress/internal/actions"
	"github.com/ysenda/go-notepress/internal/blockdoc"
	"github.com/ysenda/go-notepress/internal/document"
	"github.com/ysenda/go-notepress/internal/editor"
	"github.com/ysenda/go-notepress/internal/markdown"
	"github.com/ysenda/go-notepress/internal/noteapi"
	"github.com/ysenda/go-notepress/internal/render"
	"github.com/ysenda/go-notepress/internal/session"
)

// Stage contracts the publisher orchestrates. Concrete implementations
// come from the internal packages; tests inject fakes.
type (
	htmlRenderer interface {
		Render(doc *document.Document) string
	}

	actionCompiler interface {
		Compile(doc *document.Document) *actions.Compiled
	}

	draftAPI interface {
		CreateDraft(ctx context.Context, title string) (string, error)
		SaveDraft(ctx context.Context, key, title, body string, tags []string) error
		SetCoverImage(ctx context.Context, key, source string) error
		EditURL(key string) string
	}

	blockSource interface {
		ListBlocks(ctx context.Context, blockID string) ([]blockdoc.Block, error)
	}

	editorRunner interface {
		Run(ctx context.Context, job editor.Job) (*editor.Result, error)
		Close() error
	}
)

// compilerFunc adapts the package-level action compiler to the stage
// contract.
type compilerFunc func(*document.Document) *actions.Compiled

func (f compilerFunc) Compile(doc *document.Document) *actions.Compiled { return f(doc) }

// Publisher delivers documents to the platform as drafts. It routes each
// document over the API path (sanitized HTML) or the UI path (editor
// automation) depending on whether the body carries inline images.
type Publisher struct {
	cfg      publisherConfig
	log      *slog.Logger
	provider SessionProvider
	sessions session.Provider

	readMarkdown func(src string) (*document.Document, error)
	renderer     htmlRenderer
	compiler     actionCompiler
	api          draftAPI
	blocks       blockSource
	runner       editorRunner // created lazily on first UI-path publish
	browser      io.Closer    // the runner's browser, closed with the publisher
}

// New creates a Publisher with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithSession).
func New(opts ...Option) *Publisher {
	p := &Publisher{
		cfg: publisherConfig{
			timeout:     defaultTimeout,
			baseURL:     DefaultBaseURL,
			headless:    true,
			warnUnknown: true,
		},
		log:          slog.New(slog.DiscardHandler),
		provider:     staticSession{},
		readMarkdown: markdown.Read,
		renderer:     render.NewRenderer(),
		compiler:     compilerFunc(actions.Compile),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.cfg.httpClient == nil {
		p.cfg.httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	// One serialized provider shared by the API client and the executor,
	// so per-account reauthentication takes turns across both.
	p.sessions = session.Serialize(providerAdapter{p.provider})

	// Create the API client and block client if not injected (e.g., by tests)
	if p.api == nil {
		p.api = noteapi.NewClient(p.cfg.baseURL, p.sessions,
			noteapi.WithHTTPClient(p.cfg.httpClient))
	}
	if p.blocks == nil && p.cfg.blockURL != "" {
		p.blocks = blockdoc.NewClient(p.cfg.blockURL, p.cfg.blockToken,
			blockdoc.WithHTTPClient(p.cfg.httpClient))
	}

	return p
}

// Publish converts the input and saves it as a draft on the platform.
// The context bounds the whole run, layered under the configured timeout.
func (p *Publisher) Publish(ctx context.Context, input Input) (*PublishResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.timeout)
	defer cancel()

	doc, err := p.readDocument(ctx, input)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		doc.Title = input.Title
	}
	if input.Cover != "" {
		doc.Cover = input.Cover
	}
	if len(input.Tags) > 0 {
		doc.Tags = input.Tags
	}

	if doc.Title == "" && len(doc.Nodes) == 0 {
		return nil, ErrEmptyDocument
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	if doc.HasImages() {
		return p.publishViaEditor(ctx, input.DraftKey, doc)
	}
	return p.publishViaAPI(ctx, input.DraftKey, doc)
}

// Close releases the automation browser, if one was started. The runner
// closes its editor page first, then the browser process goes down.
func (p *Publisher) Close() error {
	var errs []error
	if p.runner != nil {
		errs = append(errs, p.runner.Close())
	}
	if p.browser != nil {
		errs = append(errs, p.browser.Close())
		p.browser = nil
	}
	return errors.Join(errs...)
}

// readDocument resolves the input's content source into the IR.
func (p *Publisher) readDocument(ctx context.Context, input Input) (*document.Document, error) {
	if input.PageID != "" {
		if p.blocks == nil {
			return nil, ErrNoBlockSource
		}
		blocks, err := p.blocks.ListBlocks(ctx, input.PageID)
		if err != nil {
			return nil, fmt.Errorf("fetching blocks: %w", err)
		}
		ropts := []blockdoc.ReaderOption{blockdoc.WithLogger(p.log)}
		if p.cfg.warnUnknown {
			ropts = append(ropts, blockdoc.WithWarnUnknown())
		}
		return blockdoc.NewReader(ropts...).Read(input.Title, blocks), nil
	}

	doc, err := p.readMarkdown(input.Markdown)
	if err != nil {
		return nil, fmt.Errorf("reading markdown: %w", err)
	}
	return doc, nil
}

// publishViaAPI renders the document to sanitized HTML and saves it
// through the platform API.
func (p *Publisher) publishViaAPI(ctx context.Context, draftKey string, doc *document.Document) (*PublishResult, error) {
	body := p.renderer.Render(doc)

	key := draftKey
	if key == "" {
		created, err := p.api.CreateDraft(ctx, doc.Title)
		if err != nil {
			return nil, fmt.Errorf("creating draft: %w", err)
		}
		key = created
	}

	if err := p.api.SaveDraft(ctx, key, doc.Title, body, doc.Tags); err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}

	res := &PublishResult{
		DraftKey: key,
		EditURL:  p.api.EditURL(key),
		Path:     PathAPI,
	}

	if doc.Cover != "" {
		if err := p.checkImageSource(doc.Cover); err != nil {
			return nil, err
		}
		if err := p.api.SetCoverImage(ctx, key, doc.Cover); err != nil {
			p.log.Warn("cover image skipped", "source", doc.Cover, "error", err)
			res.Skipped = append(res.Skipped, SkippedAction{
				Action: "set-cover-image",
				Detail: doc.Cover,
				Reason: err.Error(),
			})
		}
	}

	return res, nil
}

// publishViaEditor compiles the document to editor actions and replays
// them against the live editor in a controlled browser session.
func (p *Publisher) publishViaEditor(ctx context.Context, draftKey string, doc *document.Document) (*PublishResult, error) {
	compiled := p.compiler.Compile(doc)

	// An explicit cover wins over the hoisted first image; the first
	// image then stays inline.
	if doc.Cover != "" && doc.Cover != compiled.CoverPath {
		compiled.Actions = p.restoreHoistedImage(compiled)
		compiled.CoverPath = doc.Cover
	}

	if err := p.checkCompiledImages(compiled); err != nil {
		return nil, err
	}

	cleanup, err := p.localizeRemoteImages(ctx, compiled)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if p.runner == nil {
		p.runner = p.newRunner()
	}

	job := editor.Job{
		Title:     doc.Title,
		EditURL:   p.editURL(draftKey),
		CoverPath: compiled.CoverPath,
		Actions:   compiled.Actions,
	}
	run, err := p.runner.Run(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("editor run: %w", err)
	}

	res := &PublishResult{
		DraftKey: run.DraftKey,
		EditURL:  run.EditURL,
		Path:     PathUI,
	}
	for _, s := range run.Skipped {
		res.Skipped = append(res.Skipped, SkippedAction{
			Action: string(s.Action),
			Detail: s.Detail,
			Reason: s.Reason,
		})
	}
	if len(doc.Tags) > 0 {
		// The editor has no tagging surface; tags land only on API saves.
		res.Skipped = append(res.Skipped, SkippedAction{
			Action: "set-tags",
			Detail: strings.Join(doc.Tags, ","),
			Reason: "tags are not settable through the editor",
		})
	}
	return res, nil
}

// newRunner builds the real browser-backed executor. The browser is
// retained on the publisher so Close can tear down the Chrome process
// tree after the executor's page is gone.
func (p *Publisher) newRunner() editorRunner {
	browser := editor.NewBrowser(p.cfg.headless, p.cfg.browserBin)
	p.browser = browser
	driver := editor.NewNoteDriver(browser, p.cfg.baseURL, p.cfg.timeout)
	return editor.NewExecutor(driver, p.sessions, p.log)
}

// editURL resolves the editor address for a run: an existing draft's edit
// page, or the platform's new-note page.
func (p *Publisher) editURL(draftKey string) string {
	if draftKey != "" {
		return p.api.EditURL(draftKey)
	}
	return strings.TrimRight(p.cfg.baseURL, "/") + "/notes/new"
}

// restoreHoistedImage splices the hoisted first image back into the
// action stream at its original position, for when an explicit cover
// displaces it. The hoisted caption's leading paragraph is reattached to
// the image.
func (p *Publisher) restoreHoistedImage(compiled *actions.Compiled) []actions.Action {
	if compiled.CoverPath == "" {
		return compiled.Actions
	}
	restored := []actions.Action{{Type: actions.InsertImage, Path: compiled.CoverPath}}
	rest := compiled.Actions
	if compiled.CoverCaption != "" {
		restored = append(restored, actions.Action{Type: actions.SetCaption, Text: compiled.CoverCaption})
		if len(rest) > 0 && rest[0].Type == actions.InsertParagraph && rest[0].Text == compiled.CoverCaption {
			rest = rest[1:]
		}
	}
	at := compiled.CoverIndex
	if at > len(rest) {
		at = len(rest)
	}
	out := make([]actions.Action, 0, len(rest)+len(restored))
	out = append(out, rest[:at]...)
	out = append(out, restored...)
	return append(out, rest[at:]...)
}

// checkCompiledImages pre-flights every image source when the policy is
// fail-fast. Under the default skip policy missing files are recorded at
// run time instead.
func (p *Publisher) checkCompiledImages(compiled *actions.Compiled) error {
	if p.cfg.missingImage != MissingImageFail {
		return nil
	}
	if compiled.CoverPath != "" {
		if err := p.checkImageSource(compiled.CoverPath); err != nil {
			return err
		}
	}
	for _, a := range compiled.Actions {
		if a.Type != actions.InsertImage {
			continue
		}
		if err := p.checkImageSource(a.Path); err != nil {
			return err
		}
	}
	return nil
}

// checkImageSource verifies a local image file exists. Remote sources are
// left to the downloader; an empty source is never valid here.
func (p *Publisher) checkImageSource(source string) error {
	if p.cfg.missingImage != MissingImageFail || isRemoteSource(source) {
		return nil
	}
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingImage, source)
	}
	return nil
}

// localizeRemoteImages downloads remote image sources to a temp directory
// so the editor's file chooser can consume them. Sources that fail to
// download are left as-is under the skip policy and recorded at run time.
func (p *Publisher) localizeRemoteImages(ctx context.Context, compiled *actions.Compiled) (cleanup func(), err error) {
	cleanup = func() {}

	remote := isRemoteSource(compiled.CoverPath)
	for _, a := range compiled.Actions {
		remote = remote || (a.Type == actions.InsertImage && isRemoteSource(a.Path))
	}
	if !remote {
		return cleanup, nil
	}

	dir, err := os.MkdirTemp("", "notepress-img-")
	if err != nil {
		return cleanup, fmt.Errorf("creating image staging dir: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	localize := func(source string, seq int) (string, error) {
		local, err := p.downloadImage(ctx, source, dir, seq)
		if err != nil {
			if p.cfg.missingImage == MissingImageFail {
				return "", fmt.Errorf("%w: %s: %v", ErrMissingImage, source, err)
			}
			p.log.Warn("remote image not downloadable", "source", source, "error", err)
			return source, nil
		}
		return local, nil
	}

	if isRemoteSource(compiled.CoverPath) {
		local, err := localize(compiled.CoverPath, 0)
		if err != nil {
			return cleanup, err
		}
		compiled.CoverPath = local
	}
	for i := range compiled.Actions {
		a := &compiled.Actions[i]
		if a.Type != actions.InsertImage || !isRemoteSource(a.Path) {
			continue
		}
		local, err := localize(a.Path, i+1)
		if err != nil {
			return cleanup, err
		}
		a.Path = local
	}
	return cleanup, nil
}

// downloadImage fetches one remote image into dir and returns the local
// path. The read is capped just past the platform's upload limit so the
// size guard still triggers downstream.
func (p *Publisher) downloadImage(ctx context.Context, source, dir string, seq int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.cfg.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, noteapi.MaxImageBytes+1))
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%03d-%s", seq, remoteBaseName(source))
	local := filepath.Join(dir, name)
	if err := os.WriteFile(local, data, 0o600); err != nil {
		return "", err
	}
	return local, nil
}

// remoteBaseName extracts a usable file name from an image URL.
func remoteBaseName(source string) string {
	u, err := url.Parse(source)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "image"
	}
	return path.Base(u.Path)
}

func isRemoteSource(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// providerAdapter bridges the public SessionProvider to the internal
// session contract.
type providerAdapter struct {
	inner SessionProvider
}

func (a providerAdapter) Current(ctx context.Context) (session.Session, error) {
	s, err := a.inner.Current(ctx)
	if err != nil {
		return session.Session{}, err
	}
	return session.Session{Account: s.Account, Cookie: s.Cookie, CSRFToken: s.CSRFToken}, nil
}

func (a providerAdapter) Refresh(ctx context.Context) (session.Session, error) {
	s, err := a.inner.Refresh(ctx)
	if err != nil {
		return session.Session{}, err
	}
	return session.Session{Account: s.Account, Cookie: s.Cookie, CSRFToken: s.CSRFToken}, nil
}

// Compile-time stage contract checks.
var (
	_ htmlRenderer     = (*render.Renderer)(nil)
	_ draftAPI         = (*noteapi.Client)(nil)
	_ blockSource      = (*blockdoc.Client)(nil)
	_ editorRunner     = (*editor.Executor)(nil)
	_ session.Provider = providerAdapter{}
)
