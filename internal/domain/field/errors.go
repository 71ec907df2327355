package field

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned when an operation references a field set the
	// engine has no record of.
	ErrUnknownField = errors.New("unknown field set")
	// ErrCommandBusy is returned when a command is attempted while another
	// command against the same field set is still in flight. Callers should
	// back off rather than queue; a queued command risks executing stale intent.
	ErrCommandBusy = errors.New("another command is in flight")
	// ErrEngineShuttingDown is returned to callers caught by engine teardown.
	ErrEngineShuttingDown = errors.New("engine is shutting down")
)

// CommandRejectedError means the control surface refused the command outright
// or could not be reached to issue it. The command was not confirmed to have
// started; it is never retried automatically.
type CommandRejectedError struct {
	// Reason is the surface-reported rejection cause.
	Reason string
}

// Error implements the error interface.
func (e *CommandRejectedError) Error() string {
	return fmt.Sprintf("command rejected: %s", e.Reason)
}
