// Package editor replays compiled action streams against the platform's
// live browser editor. A state machine owns the run; all DOM knowledge
// lives behind the Driver capability interface so the run logic never
// depends on selectors or pixel geometry.
package editor

import (
	"context"
	"errors"

	"github.com/ysenda/go-notepress/internal/session"
)

// Driver errors.
var (
	// ErrElementNotFound is returned when every locator strategy for a
	// capability was exhausted without an interactable element.
	ErrElementNotFound = errors.New("no locator strategy found the element")

	// ErrLoginRequired is returned when the editor cannot be reached with
	// the current credential.
	ErrLoginRequired = errors.New("editor requires authentication")
)

// Driver is the capability adapter for one platform editor version. Each
// method performs a complete editor interaction: positioning the cursor,
// invoking the insert menu when needed, waiting for any input surface
// (file chooser, crop dialog), and committing.
type Driver interface {
	// Open navigates to an editor address and waits for it to settle.
	Open(ctx context.Context, url string) error

	// LoggedIn reports whether the authenticated editor is reachable.
	LoggedIn(ctx context.Context) (bool, error)

	// Authenticate applies a fresh credential to the browser session.
	Authenticate(ctx context.Context, sess session.Session) error

	// SetTitle fills the document title field.
	SetTitle(ctx context.Context, title string) error

	InsertHeading(ctx context.Context, level int, text string) error
	InsertParagraph(ctx context.Context, text string) error
	InsertList(ctx context.Context, kind string, items []string) error
	InsertQuote(ctx context.Context, lines []string) error
	InsertCode(ctx context.Context, text, language string) error
	InsertRule(ctx context.Context) error
	InsertImage(ctx context.Context, path string) error
	SetCaption(ctx context.Context, text string) error
	SetCoverImage(ctx context.Context, path string) error

	// SaveDraft clicks the save control if it is enabled and returns the
	// resulting document address.
	SaveDraft(ctx context.Context) (string, error)

	Close() error
}
