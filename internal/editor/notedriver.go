package editor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ysenda/go-notepress/internal/session"
)

// Compile-time interface check.
var _ Driver = (*NoteDriver)(nil)

// Locator timeouts per strategy tier. Semantic strategies get the longest
// leash; fallbacks fail fast so the whole chain stays bounded.
const (
	semanticTimeout   = 6 * time.Second
	roleTextTimeout   = 4 * time.Second
	structuralTimeout = 2 * time.Second
)

// NoteDriver drives the note platform's rich-text editor through rod.
// One driver owns one page; actions run strictly in sequence because each
// depends on the cursor position the previous one left.
type NoteDriver struct {
	browser *Browser
	baseURL string
	timeout time.Duration
	page    *rod.Page
}

// NewNoteDriver creates a driver over a (possibly unlaunched) browser.
func NewNoteDriver(browser *Browser, baseURL string, timeout time.Duration) *NoteDriver {
	if timeout <= 0 {
		timeout = defaultStepTimeout
	}
	return &NoteDriver{browser: browser, baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// Close closes the page; the browser itself is shared and closed by its
// owner.
func (d *NoteDriver) Close() error {
	if d.page != nil {
		err := d.page.Close()
		d.page = nil
		return err
	}
	return nil
}

func (d *NoteDriver) ensurePage(ctx context.Context) (*rod.Page, error) {
	if d.page == nil {
		page, err := d.browser.Page()
		if err != nil {
			return nil, err
		}
		d.page = page
	}
	return d.page.Context(ctx), nil
}

// Open navigates to the editor address and waits for the page to settle.
func (d *NoteDriver) Open(ctx context.Context, editorURL string) error {
	page, err := d.ensurePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Timeout(d.timeout).Navigate(editorURL); err != nil {
		return fmt.Errorf("navigating to %s: %w", editorURL, err)
	}
	if err := page.Timeout(d.timeout).WaitLoad(); err != nil {
		return fmt.Errorf("waiting for %s: %w", editorURL, err)
	}
	return nil
}

// LoggedIn checks whether the platform bounced us to its login screen.
func (d *NoteDriver) LoggedIn(ctx context.Context) (bool, error) {
	page, err := d.ensurePage(ctx)
	if err != nil {
		return false, err
	}
	info, err := page.Info()
	if err != nil {
		return false, fmt.Errorf("reading page info: %w", err)
	}
	if strings.Contains(info.URL, "/login") || strings.Contains(info.URL, "/signin") {
		return false, nil
	}
	// The editor body is the positive signal.
	_, err = locate(page, []locator{
		bySelector("editor root", "div[contenteditable='true']", semanticTimeout),
		bySelector("editor container", ".ProseMirror", roleTextTimeout),
	})
	return err == nil, nil
}

// Authenticate installs the session cookie for the platform origin.
func (d *NoteDriver) Authenticate(ctx context.Context, sess session.Session) error {
	page, err := d.ensurePage(ctx)
	if err != nil {
		return err
	}

	u, err := url.Parse(d.baseURL)
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}

	name, value, ok := strings.Cut(sess.Cookie, "=")
	if !ok {
		return fmt.Errorf("%w: malformed session cookie", ErrLoginRequired)
	}
	return page.SetCookies([]*proto.NetworkCookieParam{{
		Name:     name,
		Value:    value,
		Domain:   u.Hostname(),
		Path:     "/",
		Secure:   u.Scheme == "https",
		HTTPOnly: true,
	}})
}

// SetTitle fills the title field. This is the run's first critical
// interaction: its locator chain failing aborts the whole run.
func (d *NoteDriver) SetTitle(ctx context.Context, title string) error {
	page, err := d.ensurePage(ctx)
	if err != nil {
		return err
	}
	el, err := locate(page, []locator{
		bySelector("title by label", "textarea[aria-label='タイトル']", semanticTimeout),
		bySelector("title by placeholder", "textarea[placeholder*='タイトル']", roleTextTimeout),
		bySelector("first textarea", "textarea", structuralTimeout),
	})
	if err != nil {
		return fmt.Errorf("title field: %w", err)
	}
	if err := el.Input(title); err != nil {
		return fmt.Errorf("typing title: %w", err)
	}
	return nil
}

// focusBody places the cursor at the end of the editor body.
func (d *NoteDriver) focusBody(ctx context.Context) (*rod.Page, error) {
	page, err := d.ensurePage(ctx)
	if err != nil {
		return nil, err
	}
	el, err := locate(page, []locator{
		bySelector("body by role", "div[contenteditable='true']", semanticTimeout),
		bySelector("body container", ".ProseMirror", roleTextTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("editor body: %w", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("focusing body: %w", err)
	}
	if err := page.Keyboard.Press(input.End); err != nil {
		return nil, fmt.Errorf("positioning cursor: %w", err)
	}
	return page, nil
}

// typeBlock inserts literal text then commits the block with Enter. The
// editor converts leading markup shortcuts ("## ", "- ", "> ") into the
// matching block type as they are typed.
func (d *NoteDriver) typeBlock(page *rod.Page, text string) error {
	if err := page.InsertText(text); err != nil {
		return fmt.Errorf("inserting text: %w", err)
	}
	return page.Keyboard.Press(input.Enter)
}

// leaveBlock presses Enter on an empty line, which closes list, quote,
// and code contexts in the editor.
func (d *NoteDriver) leaveBlock(page *rod.Page) error {
	return page.Keyboard.Press(input.Enter)
}

func (d *NoteDriver) InsertHeading(ctx context.Context, level int, text string) error {
	page, err := d.focusBody(ctx)
	if err != nil {
		return err
	}
	prefix := "## " // major tier
	if level >= 2 {
		prefix = "### " // minor tier
	}
	return d.typeBlock(page, prefix+text)
}

func (d *NoteDriver) InsertParagraph(ctx context.Context, text string) error {
	page, err := d.focusBody(ctx)
	if err != nil {
		return err
	}
	// Line breaks inside one paragraph are soft breaks, not new blocks.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if err := page.InsertText(line); err != nil {
			return fmt.Errorf("inserting text: %w", err)
		}
		if i < len(lines)-1 {
			if err := softBreak(page); err != nil {
				return err
			}
		}
	}
	return page.Keyboard.Press(input.Enter)
}

func (d *NoteDriver) InsertList(ctx context.Context, kind string, items []string) error {
	page, err := d.focusBody(ctx)
	if err != nil {
		return err
	}
	prefix := "- "
	if kind == "numbered" {
		prefix = "1. "
	}
	for i, item := range items {
		// Only the first item needs the shortcut; the editor continues
		// the list on Enter.
		text := item
		if i == 0 {
			text = prefix + item
		}
		if err := d.typeBlock(page, text); err != nil {
			return err
		}
	}
	return d.leaveBlock(page)
}

func (d *NoteDriver) InsertQuote(ctx context.Context, lines []string) error {
	page, err := d.focusBody(ctx)
	if err != nil {
		return err
	}
	for i, line := range lines {
		text := line
		if i == 0 {
			text = "> " + line
		}
		if err := page.InsertText(text); err != nil {
			return fmt.Errorf("inserting text: %w", err)
		}
		if i < len(lines)-1 {
			if err := softBreak(page); err != nil {
				return err
			}
		}
	}
	if err := page.Keyboard.Press(input.Enter); err != nil {
		return err
	}
	return d.leaveBlock(page)
}

func (d *NoteDriver) InsertCode(ctx context.Context, text, language string) error {
	page, err := d.focusBody(ctx)
	if err != nil {
		return err
	}
	if err := d.typeBlock(page, "```"+language); err != nil {
		return err
	}
	if err := page.InsertText(text); err != nil {
		return fmt.Errorf("inserting code body: %w", err)
	}
	// Escape leaves the code block without inserting a newline into it.
	if err := page.Keyboard.Press(input.Escape); err != nil {
		return err
	}
	return page.Keyboard.Press(input.Enter)
}

func (d *NoteDriver) InsertRule(ctx context.Context) error {
	page, err := d.focusBody(ctx)
	if err != nil {
		return err
	}
	return d.typeBlock(page, "---")
}

// InsertImage drives the insert menu to the image item and feeds the file
// chooser.
func (d *NoteDriver) InsertImage(ctx context.Context, path string) error {
	page, err := d.focusBody(ctx)
	if err != nil {
		return err
	}

	menu, err := locate(page, []locator{
		bySelector("insert menu by label", "button[aria-label='メニューを追加']", semanticTimeout),
		byText("insert menu by text", "button", `^\+$`, roleTextTimeout),
		bySelector("toolbar fallback", ".editor-toolbar button:first-child", structuralTimeout),
	})
	if err != nil {
		return fmt.Errorf("insert menu: %w", err)
	}
	if err := menu.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("opening insert menu: %w", err)
	}

	item, err := locate(page, []locator{
		bySelector("image item by label", "button[aria-label='画像']", semanticTimeout),
		byText("image item by text", "button, [role='menuitem']", "画像|Image", roleTextTimeout),
	})
	if err != nil {
		return fmt.Errorf("image menu item: %w", err)
	}
	if err := item.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("choosing image item: %w", err)
	}

	return d.feedFileChooser(page, path)
}

// feedFileChooser finds the hidden file input behind the chooser surface
// and points it at the local file.
func (d *NoteDriver) feedFileChooser(page *rod.Page, path string) error {
	chooser, err := locate(page, []locator{
		bySelector("file input", "input[type='file']", semanticTimeout),
	})
	if err != nil {
		return fmt.Errorf("file chooser: %w", err)
	}
	if err := chooser.SetFiles([]string{path}); err != nil {
		return fmt.Errorf("setting file: %w", err)
	}
	// Give the editor its upload settle time before the next action.
	return page.Timeout(d.timeout).WaitStable(500 * time.Millisecond)
}

// SetCaption fills the caption surface of the most recently inserted
// image.
func (d *NoteDriver) SetCaption(ctx context.Context, text string) error {
	page, err := d.ensurePage(ctx)
	if err != nil {
		return err
	}
	el, err := locate(page, []locator{
		bySelector("caption by placeholder", "figure:last-of-type [placeholder*='キャプション']", semanticTimeout),
		bySelector("caption by element", "figure:last-of-type figcaption", roleTextTimeout),
	})
	if err != nil {
		return fmt.Errorf("caption surface: %w", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("focusing caption: %w", err)
	}
	if err := page.InsertText(text); err != nil {
		return fmt.Errorf("typing caption: %w", err)
	}
	return page.Keyboard.Press(input.Enter)
}

// SetCoverImage drives the cover (eyecatch) surface: open it, feed the
// chooser, confirm the crop dialog.
func (d *NoteDriver) SetCoverImage(ctx context.Context, path string) error {
	page, err := d.ensurePage(ctx)
	if err != nil {
		return err
	}

	opener, err := locate(page, []locator{
		bySelector("cover by label", "button[aria-label='記事ヘッダー画像を追加']", semanticTimeout),
		byText("cover by text", "button", "画像を追加|ヘッダー", roleTextTimeout),
	})
	if err != nil {
		return fmt.Errorf("cover control: %w", err)
	}
	if err := opener.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("opening cover surface: %w", err)
	}

	if err := d.feedFileChooser(page, path); err != nil {
		return err
	}

	// The crop dialog commits with its save button.
	confirm, err := locate(page, []locator{
		byText("crop confirm", "button", "保存|適用|OK", semanticTimeout),
	})
	if err != nil {
		return fmt.Errorf("crop dialog: %w", err)
	}
	if err := confirm.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("confirming crop: %w", err)
	}
	return page.Timeout(d.timeout).WaitStable(500 * time.Millisecond)
}

// SaveDraft clicks the save control only when it is enabled, waits for
// the address to settle, and returns it.
func (d *NoteDriver) SaveDraft(ctx context.Context) (string, error) {
	page, err := d.ensurePage(ctx)
	if err != nil {
		return "", err
	}

	save, err := locate(page, []locator{
		byText("save by text", "button", "下書き保存|保存", semanticTimeout),
		bySelector("save by label", "button[aria-label='保存']", roleTextTimeout),
	})
	if err != nil {
		return "", fmt.Errorf("save control: %w", err)
	}

	if disabled, _ := saveDisabled(save); disabled {
		return "", fmt.Errorf("%w: save control is disabled", ErrElementNotFound)
	}
	if err := save.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", fmt.Errorf("clicking save: %w", err)
	}
	if err := page.Timeout(d.timeout).WaitStable(time.Second); err != nil {
		return "", fmt.Errorf("waiting for save: %w", err)
	}

	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("reading saved address: %w", err)
	}
	return info.URL, nil
}

func saveDisabled(el *rod.Element) (bool, error) {
	prop, err := el.Property("disabled")
	if err != nil {
		return false, err
	}
	return prop.Bool(), nil
}

// softBreak inserts a line break without committing the block.
func softBreak(page *rod.Page) error {
	err := page.KeyActions().Press(input.ShiftLeft).Type(input.Enter).Do()
	if err != nil {
		return fmt.Errorf("soft break: %w", err)
	}
	return nil
}
