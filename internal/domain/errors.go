package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCallBusy is returned when a request arrives for a call that is still
	// processing an earlier request.
	ErrCallBusy = errors.New("call is processing another request")
	// ErrMissingCallID is returned for requests without ApiCallId.
	ErrMissingCallID = errors.New("ApiCallId is required")
	// ErrCallDeleted ends a call removed through the admin surface.
	ErrCallDeleted = &CanceledError{Reason: "deleted"}
	// ErrCallSuperseded ends a call when the switch starts it again on another route.
	ErrCallSuperseded = &CanceledError{Reason: "superseded"}
	// ErrRouteNotFound is returned when no handler is bound to the route.
	ErrRouteNotFound = errors.New("route not found")
)

// ValidationError rejects an operation before any instruction is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// ExitError is the voluntary end of a call: go_to_folder, routing_yemot,
// restart_ext, or id_list_message without continuation.
type ExitError struct {
	CallID string
	Action string
	Target string
}

func (e *ExitError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("call %s exited via %s", e.CallID, e.Action)
	}
	return fmt.Sprintf("call %s exited via %s to %s", e.CallID, e.Action, e.Target)
}

// CanceledError ends a call from outside the conversation: admin deletion or
// a restart of the call on another route.
type CanceledError struct {
	Reason string
}

func (e *CanceledError) Error() string {
	return "call canceled: " + e.Reason
}

// HangupError ends a call the switch reported as disconnected, or one the
// handler hung up explicitly.
type HangupError struct {
	CallID   string
	Explicit bool
}

func (e *HangupError) Error() string {
	if e.Explicit {
		return fmt.Sprintf("call %s hung up by handler", e.CallID)
	}
	return fmt.Sprintf("call %s hung up by caller", e.CallID)
}

// TimeoutError ends a call that did not continue within its deadline.
type TimeoutError struct {
	CallID string
	After  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("call %s timed out after %s", e.CallID, e.After)
}

// IsTerminal reports whether err is one of the termination signals.
func IsTerminal(err error) bool {
	var exit *ExitError
	var hangup *HangupError
	var timeout *TimeoutError
	var canceled *CanceledError
	return errors.As(err, &exit) || errors.As(err, &hangup) || errors.As(err, &timeout) || errors.As(err, &canceled)
}

// EndReasonOf maps a termination cause to its EndReason. nil means the handler
// returned normally.
func EndReasonOf(err error) EndReason {
	var exit *ExitError
	var hangup *HangupError
	var timeout *TimeoutError
	switch {
	case err == nil:
		return EndReasonCompleted
	case errors.Is(err, ErrCallDeleted):
		return EndReasonDeleted
	case errors.Is(err, ErrCallSuperseded):
		return EndReasonSuperseded
	case errors.As(err, &exit):
		return EndReasonExit
	case errors.As(err, &hangup):
		return EndReasonHangup
	case errors.As(err, &timeout):
		return EndReasonTimeout
	default:
		return EndReasonError
	}
}
