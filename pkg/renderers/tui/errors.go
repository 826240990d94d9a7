package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNotInteractive is returned when the form handed to Render cannot
	// accept edits.
	ErrNotInteractive = errors.New("tui: form does not accept edits")
	// ErrSubmissionFailed is returned when the user stops correcting a form
	// that still fails validation.
	ErrSubmissionFailed = errors.New("tui: submission failed validation")
)
