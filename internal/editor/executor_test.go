package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ysenda/go-notepress/internal/actions"
	"github.com/ysenda/go-notepress/internal/session"
)

// fakeDriver scripts per-capability outcomes and records the call order.
type fakeDriver struct {
	calls []string

	loggedIn       bool
	loginAfterAuth bool
	titleErr       error
	imageErr       error
	captionErr     error
	saveErr        error
	saveURL        string
}

func (d *fakeDriver) record(name string) { d.calls = append(d.calls, name) }

func (d *fakeDriver) Open(context.Context, string) error { d.record("open"); return nil }

func (d *fakeDriver) LoggedIn(context.Context) (bool, error) {
	d.record("loggedIn")
	return d.loggedIn, nil
}

func (d *fakeDriver) Authenticate(context.Context, session.Session) error {
	d.record("authenticate")
	d.loggedIn = d.loginAfterAuth
	return nil
}

func (d *fakeDriver) SetTitle(context.Context, string) error {
	d.record("title")
	return d.titleErr
}

func (d *fakeDriver) InsertHeading(context.Context, int, string) error {
	d.record("heading")
	return nil
}

func (d *fakeDriver) InsertParagraph(context.Context, string) error {
	d.record("paragraph")
	return nil
}

func (d *fakeDriver) InsertList(context.Context, string, []string) error {
	d.record("list")
	return nil
}

func (d *fakeDriver) InsertQuote(context.Context, []string) error {
	d.record("quote")
	return nil
}

func (d *fakeDriver) InsertCode(context.Context, string, string) error {
	d.record("code")
	return nil
}

func (d *fakeDriver) InsertRule(context.Context) error { d.record("rule"); return nil }

func (d *fakeDriver) InsertImage(context.Context, string) error {
	d.record("image")
	return d.imageErr
}

func (d *fakeDriver) SetCaption(context.Context, string) error {
	d.record("caption")
	return d.captionErr
}

func (d *fakeDriver) SetCoverImage(context.Context, string) error {
	d.record("cover")
	return nil
}

func (d *fakeDriver) SaveDraft(context.Context) (string, error) {
	d.record("save")
	if d.saveErr != nil {
		return "", d.saveErr
	}
	if d.saveURL == "" {
		d.saveURL = "https://note.example/notes/n42/edit"
	}
	return d.saveURL, nil
}

func (d *fakeDriver) Close() error { return nil }

func testExecutor(d Driver) *Executor {
	sessions := session.StaticProvider{Session: session.Session{Account: "a", Cookie: "s=c"}}
	return NewExecutor(d, sessions, nil)
}

func tempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pic.png")
	if err := os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{loggedIn: true}
	res, err := testExecutor(d).Run(context.Background(), Job{
		Title: "t",
		Actions: []actions.Action{
			{Type: actions.InsertHeading, Level: 1, Text: "h"},
			{Type: actions.InsertParagraph, Text: "p"},
			{Type: actions.InsertImage, Path: tempImage(t)},
			{Type: actions.SetCaption, Text: "c"},
		},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.State != StateDone {
		t.Errorf("state = %q, want done", res.State)
	}
	if res.DraftKey != "n42" {
		t.Errorf("draft key = %q, want n42", res.DraftKey)
	}
	if res.EditURL != "https://note.example/notes/n42/edit" {
		t.Errorf("edit URL = %q", res.EditURL)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("skipped = %+v, want none", res.Skipped)
	}

	want := []string{"open", "loggedIn", "title", "heading", "paragraph", "image", "caption", "save"}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
	for i := range want {
		if d.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (all: %v)", i, d.calls[i], want[i], d.calls)
		}
	}
}

func TestRunReauthenticatesOnce(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{loggedIn: false, loginAfterAuth: true}
	res, err := testExecutor(d).Run(context.Background(), Job{Title: "t"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.State != StateDone {
		t.Errorf("state = %q", res.State)
	}

	want := []string{"open", "loggedIn", "authenticate", "open", "loggedIn", "title", "save"}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
}

func TestRunFailsWhenReauthDoesNotStick(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{loggedIn: false, loginAfterAuth: false}
	res, err := testExecutor(d).Run(context.Background(), Job{Title: "t"})
	if !errors.Is(err, ErrRunFailed) {
		t.Fatalf("error = %v, want ErrRunFailed", err)
	}
	if res.State != StateFailed {
		t.Errorf("state = %q, want failed", res.State)
	}
	for _, call := range d.calls {
		if call == "title" || call == "save" {
			t.Errorf("run must not reach %q without an authenticated editor", call)
		}
	}
}

func TestRunTitleFailureIsCritical(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{loggedIn: true, titleErr: ErrElementNotFound}
	res, err := testExecutor(d).Run(context.Background(), Job{
		Title:   "t",
		Actions: []actions.Action{{Type: actions.InsertParagraph, Text: "p"}},
	})
	if !errors.Is(err, ErrRunFailed) {
		t.Fatalf("error = %v, want ErrRunFailed", err)
	}
	if res.State != StateFailed {
		t.Errorf("state = %q, want failed", res.State)
	}
	for _, call := range d.calls {
		if call == "paragraph" || call == "save" {
			t.Errorf("no body or save work after a critical failure, calls = %v", d.calls)
		}
	}
}

func TestRunSkipsNonCriticalFailures(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{loggedIn: true, imageErr: ErrElementNotFound, captionErr: ErrElementNotFound}
	res, err := testExecutor(d).Run(context.Background(), Job{
		Title: "t",
		Actions: []actions.Action{
			{Type: actions.InsertParagraph, Text: "before"},
			{Type: actions.InsertImage, Path: tempImage(t)},
			{Type: actions.SetCaption, Text: "cap"},
			{Type: actions.InsertParagraph, Text: "after"},
		},
	})
	if err != nil {
		t.Fatalf("Run() error: %v (partial failure must not abort)", err)
	}
	if res.State != StateDone {
		t.Errorf("state = %q, want done", res.State)
	}
	if !res.Partial() {
		t.Error("result must report partial success")
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("skipped = %+v, want 2 entries", res.Skipped)
	}
	if res.Skipped[0].Action != actions.InsertImage || res.Skipped[1].Action != actions.SetCaption {
		t.Errorf("skipped actions = %+v", res.Skipped)
	}

	// The run continued past the failures.
	var after bool
	for _, call := range d.calls {
		if call == "paragraph" {
			after = true
		}
	}
	if !after || d.calls[len(d.calls)-1] != "save" {
		t.Errorf("run must continue and save, calls = %v", d.calls)
	}
}

func TestRunSkipsMissingImageFile(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{loggedIn: true}
	res, err := testExecutor(d).Run(context.Background(), Job{
		Title: "t",
		Actions: []actions.Action{
			{Type: actions.InsertImage, Path: filepath.Join(t.TempDir(), "absent.png")},
		},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("skipped = %+v, want the missing image", res.Skipped)
	}
	for _, call := range d.calls {
		if call == "image" {
			t.Error("driver must not be asked to insert a missing file")
		}
	}
}

func TestRunCoverFailureIsNonCritical(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{loggedIn: true}
	res, err := testExecutor(d).Run(context.Background(), Job{
		Title:     "t",
		CoverPath: filepath.Join(t.TempDir(), "absent-cover.png"),
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.State != StateDone || len(res.Skipped) != 1 {
		t.Errorf("state = %q skipped = %+v", res.State, res.Skipped)
	}
}

func TestRunCancellationIsInterrupted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &fakeDriver{loggedIn: true}
	res, err := testExecutor(d).Run(ctx, Job{
		Title:   "t",
		Actions: []actions.Action{{Type: actions.InsertParagraph, Text: "p"}},
	})
	if !errors.Is(err, ErrRunInterrupted) {
		t.Fatalf("error = %v, want ErrRunInterrupted", err)
	}
	if res.State != StateInterrupted {
		t.Errorf("state = %q, want interrupted, never success", res.State)
	}
}

func TestParseDraftKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "https://note.example/notes/n42/edit", want: "n42"},
		{in: "https://note.example/notes/n42/edit/", want: "n42"},
		{in: "https://note.example/n/abc123", want: "abc123"},
		{in: "https://note.example/notes/n42/edit?saved=1", want: "n42"},
	}
	for _, tt := range tests {
		if got := parseDraftKey(tt.in); got != tt.want {
			t.Errorf("parseDraftKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
