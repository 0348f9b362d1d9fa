package drover

import (
	"errors"
	"fmt"
)

// Errors
var (
	// ErrNoSuchElement is returned by a Session when a search matches
	// nothing. FindOne and FindAll recover it into an absent/empty result;
	// callers of the facade never see it.
	ErrNoSuchElement = errors.New("no such element")

	// ErrCommandFailed is the sentinel wrapped by every CommandError.
	ErrCommandFailed = errors.New("remote command failed")

	// ErrConnectionClosed is returned once the underlying session transport
	// has shut down.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrOptionNotFound is returned by select mutations whose target index,
	// value, or text matches no option.
	ErrOptionNotFound = errors.New("option not found")

	// ErrInvalidState is returned for operations that are not valid in the
	// widget's current mode, such as DeselectAll on a single-select list.
	ErrInvalidState = errors.New("invalid element state")

	// ErrNoSelection is returned by FirstSelected when nothing is selected.
	ErrNoSelection = errors.New("no option is selected")

	// ErrNotSelect is returned by NewSelect when the element is not a
	// <select> control.
	ErrNotSelect = errors.New("element is not a select")
)

// CommandError reports a remote command that failed for any reason other
// than "not found": a stale handle, a disconnected session, an invalid
// command. It is always propagated to the caller and never retried.
type CommandError struct {
	Op      string // the session operation, e.g. "click", "find"
	Message string
	Code    int   // protocol error code, if the driver supplied one
	Err     error // underlying cause, if any
}

func (e *CommandError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: %s (code %d)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *CommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCommandFailed, e.Err}
	}
	return []error{ErrCommandFailed}
}
