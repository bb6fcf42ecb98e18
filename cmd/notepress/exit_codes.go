package main

import (
	"context"
	"errors"
	"os"

	notepress "github.com/ysenda/go-notepress"
	"github.com/ysenda/go-notepress/internal/config"
	"github.com/ysenda/go-notepress/internal/editor"
	"github.com/ysenda/go-notepress/internal/hints"
	"github.com/ysenda/go-notepress/internal/session"
)

// Exit codes for the notepress CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Draft(s) published
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input selection
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/editor automation errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser and automation errors (exit 4)
	if errors.Is(err, editor.ErrBrowserConnect) ||
		errors.Is(err, editor.ErrRunFailed) ||
		errors.Is(err, editor.ErrRunInterrupted) ||
		errors.Is(err, editor.ErrElementNotFound) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, notepress.ErrMissingImage) {
		return ExitIO
	}

	// Usage errors (exit 2)
	if errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrMixedInput) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrDraftKeyBatch) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, notepress.ErrEmptyInput) ||
		errors.Is(err, notepress.ErrConflictingInput) ||
		errors.Is(err, notepress.ErrNoBlockSource) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidPolicy) ||
		errors.Is(err, config.ErrInvalidTimeout) {
		return ExitUsage
	}

	return ExitGeneral
}

// describeError renders an error with an actionable hint for known
// failure classes.
func describeError(err error) string {
	switch {
	case errors.Is(err, editor.ErrBrowserConnect):
		return err.Error() + hints.ForBrowserConnect()
	case errors.Is(err, session.ErrNoSession), errors.Is(err, editor.ErrLoginRequired):
		return err.Error() + hints.ForSession()
	case errors.Is(err, context.DeadlineExceeded):
		return err.Error() + hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return err.Error() + hints.ForConfigNotFound(nil)
	}
	return err.Error()
}
