package editor

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ysenda/go-notepress/internal/process"
)

// ErrBrowserConnect indicates the browser could not be launched or
// attached to.
var ErrBrowserConnect = errors.New("failed to connect to browser")

const defaultStepTimeout = 15 * time.Second

// Browser owns one Chrome session. It launches lazily on first use so a
// pool slot costs nothing until a document actually reaches the UI path.
// Rod downloads Chromium on first run if no browser is found.
type Browser struct {
	headless bool
	bin      string
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowser creates an unlaunched Browser.
func NewBrowser(headless bool, bin string) *Browser {
	return &Browser{headless: headless, bin: bin}
}

// ensure lazily launches and connects the browser.
func (b *Browser) ensure() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New().Headless(b.headless)

	// Use a pre-installed browser if specified (Docker/containerized
	// environments).
	bin := b.bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments.
	if os.Getenv("CI") == "true" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b.launcher = l

	b.browser = rod.New().ControlURL(u)
	if err := b.browser.Connect(); err != nil {
		b.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Page opens a fresh blank page.
func (b *Browser) Page() (*rod.Page, error) {
	if err := b.ensure(); err != nil {
		return nil, err
	}
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return page, nil
}

// Close releases browser resources. After the graceful close, the whole
// process group is killed so no renderer children linger when a run was
// interrupted mid-automation.
func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		if pid := b.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		b.launcher = nil
	}
	return err
}
