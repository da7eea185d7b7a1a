package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoWidget is returned when the final step is reached without a captcha widget.
	ErrNoWidget = errors.New("prompt: no verification widget configured")
)
