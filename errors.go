package notepress

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyInput       = errors.New("input carries no content source")
	ErrConflictingInput = errors.New("markdown and page id are mutually exclusive")
	ErrEmptyDocument    = errors.New("document has no publishable content")
	ErrMissingImage     = errors.New("referenced image file not found")
	ErrNoBlockSource    = errors.New("no block service configured")
)
