package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ysenda/go-notepress/internal/actions"
	"github.com/ysenda/go-notepress/internal/session"
)

// Run errors.
var (
	ErrRunFailed      = errors.New("editor run failed")
	ErrRunInterrupted = errors.New("editor run interrupted")
)

// State names one phase of an editor run.
type State string

// Run states, in their normal order.
const (
	StateIdle             State = "idle"
	StateNavigating       State = "navigating"
	StateReauthenticating State = "reauthenticating"
	StateFillingTitle     State = "filling-title"
	StateEmittingBody     State = "emitting-body"
	StateSavingDraft      State = "saving-draft"
	StateDone             State = "done"
	StateFailed           State = "failed"
	StateInterrupted      State = "interrupted"
)

// Job is one document's worth of editor automation.
type Job struct {
	Title     string
	EditURL   string // editor address: an existing draft's edit URL or the new-note URL
	CoverPath string
	Actions   []actions.Action
}

// SkippedAction records one non-critical action that failed and was
// passed over so the rest of the run could proceed.
type SkippedAction struct {
	Action actions.Type
	Detail string
	Reason string
}

// Result reports the terminal state of a run, the saved draft's identity,
// and every inline action that was skipped.
type Result struct {
	State    State
	DraftKey string
	EditURL  string
	Skipped  []SkippedAction
}

// Partial reports whether the run finished but skipped inline content.
func (r *Result) Partial() bool {
	return r.State == StateDone && len(r.Skipped) > 0
}

// Executor drives one browser session through the run state machine.
// Actions for a single document run strictly in order: every action
// depends on the cursor state the previous one left behind.
type Executor struct {
	driver   Driver
	sessions session.Provider
	log      *slog.Logger
	state    State
}

// NewExecutor creates an Executor over a driver. A nil logger discards.
func NewExecutor(driver Driver, sessions session.Provider, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Executor{driver: driver, sessions: sessions, log: log, state: StateIdle}
}

// State returns the executor's current run phase.
func (e *Executor) State() State { return e.state }

// Close releases the underlying browser session.
func (e *Executor) Close() error { return e.driver.Close() }

// Run replays the job. Critical failures (reaching the authenticated
// editor, the title field) abort with ErrRunFailed and leave any already
// created draft untouched; non-critical per-action failures are recorded
// in the result and skipped. Cancellation closes the run as Interrupted,
// never as success.
func (e *Executor) Run(ctx context.Context, job Job) (*Result, error) {
	res := &Result{}

	if err := e.navigate(ctx, job.EditURL); err != nil {
		return e.terminal(ctx, res, err)
	}

	e.state = StateFillingTitle
	if err := e.driver.SetTitle(ctx, job.Title); err != nil {
		return e.terminal(ctx, res, fmt.Errorf("%w: title entry: %v", ErrRunFailed, err))
	}

	e.state = StateEmittingBody
	if job.CoverPath != "" {
		e.applyCover(ctx, job.CoverPath, res)
	}
	for _, a := range job.Actions {
		if err := ctx.Err(); err != nil {
			return e.terminal(ctx, res, err)
		}
		if err := e.apply(ctx, a); err != nil {
			if ctx.Err() != nil {
				return e.terminal(ctx, res, ctx.Err())
			}
			e.skip(res, a.Type, actionDetail(a), err)
		}
	}

	e.state = StateSavingDraft
	address, err := e.driver.SaveDraft(ctx)
	if err != nil {
		return e.terminal(ctx, res, fmt.Errorf("%w: saving draft: %v", ErrRunFailed, err))
	}

	e.state = StateDone
	res.State = StateDone
	res.EditURL = address
	res.DraftKey = parseDraftKey(address)
	return res, nil
}

// navigate reaches the authenticated editor, reauthenticating once if the
// platform bounces the current credential.
func (e *Executor) navigate(ctx context.Context, url string) error {
	e.state = StateNavigating
	if err := e.driver.Open(ctx, url); err != nil {
		return fmt.Errorf("%w: opening editor: %v", ErrRunFailed, err)
	}

	ok, err := e.driver.LoggedIn(ctx)
	if err != nil {
		return fmt.Errorf("%w: checking session: %v", ErrRunFailed, err)
	}
	if ok {
		return nil
	}

	e.state = StateReauthenticating
	sess, err := e.sessions.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("%w: refreshing session: %v", ErrRunFailed, err)
	}
	if err := e.driver.Authenticate(ctx, sess); err != nil {
		return fmt.Errorf("%w: applying session: %v", ErrRunFailed, err)
	}

	e.state = StateNavigating
	if err := e.driver.Open(ctx, url); err != nil {
		return fmt.Errorf("%w: reopening editor: %v", ErrRunFailed, err)
	}
	ok, err = e.driver.LoggedIn(ctx)
	if err != nil || !ok {
		return fmt.Errorf("%w: editor unreachable after reauthentication", ErrRunFailed)
	}
	return nil
}

func (e *Executor) apply(ctx context.Context, a actions.Action) error {
	switch a.Type {
	case actions.InsertHeading:
		return e.driver.InsertHeading(ctx, a.Level, a.Text)
	case actions.InsertParagraph:
		return e.driver.InsertParagraph(ctx, a.Text)
	case actions.InsertList:
		return e.driver.InsertList(ctx, a.Kind, a.Items)
	case actions.InsertQuote:
		return e.driver.InsertQuote(ctx, a.Lines)
	case actions.InsertCode:
		return e.driver.InsertCode(ctx, a.Text, a.Language)
	case actions.InsertRule:
		return e.driver.InsertRule(ctx)
	case actions.InsertImage:
		if !isRemoteSource(a.Path) {
			if _, err := os.Stat(a.Path); err != nil {
				return fmt.Errorf("image source missing: %w", err)
			}
		}
		return e.driver.InsertImage(ctx, a.Path)
	case actions.SetCaption:
		return e.driver.SetCaption(ctx, a.Text)
	}
	return fmt.Errorf("unknown action type %q", a.Type)
}

// applyCover sets the cover image. The cover is decorative: its failure
// never aborts the run.
func (e *Executor) applyCover(ctx context.Context, path string, res *Result) {
	if !isRemoteSource(path) {
		if _, err := os.Stat(path); err != nil {
			e.skip(res, "set-cover-image", path, fmt.Errorf("cover source missing: %w", err))
			return
		}
	}
	if err := e.driver.SetCoverImage(ctx, path); err != nil {
		e.skip(res, "set-cover-image", path, err)
	}
}

func (e *Executor) skip(res *Result, kind actions.Type, detail string, err error) {
	e.log.Warn("skipping action", "action", string(kind), "detail", detail, "reason", err)
	res.Skipped = append(res.Skipped, SkippedAction{Action: kind, Detail: detail, Reason: err.Error()})
}

// terminal classifies an aborting error into Failed or Interrupted and
// stamps the result.
func (e *Executor) terminal(ctx context.Context, res *Result, err error) (*Result, error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		e.state = StateInterrupted
		res.State = StateInterrupted
		return res, fmt.Errorf("%w: %v", ErrRunInterrupted, err)
	}
	e.state = StateFailed
	res.State = StateFailed
	return res, err
}

func actionDetail(a actions.Action) string {
	switch a.Type {
	case actions.InsertImage:
		return a.Path
	default:
		return a.Text
	}
}

// parseDraftKey pulls the draft key out of the post-save editor address:
// the path segment before a trailing "edit", otherwise the last segment.
func parseDraftKey(address string) string {
	trimmed := strings.TrimRight(address, "/")
	if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+3:]
	}
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	segs := strings.Split(trimmed, "/")
	if len(segs) == 0 {
		return ""
	}
	last := segs[len(segs)-1]
	if last == "edit" && len(segs) > 1 {
		return segs[len(segs)-2]
	}
	return last
}

func isRemoteSource(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
