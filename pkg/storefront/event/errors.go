package event

import (
	"errors"
	"fmt"
)

// Registration and emission errors.
var (
	// ErrNilListener is returned when registering a nil listener or a
	// listener built around a nil function.
	ErrNilListener = errors.New("event: nil listener")

	// ErrInvalidKey is returned for zero-value keys, empty exact names and
	// patterns that fail to compile.
	ErrInvalidKey = errors.New("event: invalid subscription key")

	// ErrEmptyName is returned when emitting or triggering an empty name.
	ErrEmptyName = errors.New("event: empty event name")

	// ErrUnknownEvent is returned in strict mode for names missing from the
	// catalog.
	ErrUnknownEvent = errors.New("event: unknown event name")

	// ErrMaxDepth is returned when nested emissions exceed the configured depth.
	ErrMaxDepth = errors.New("event: max emit depth exceeded")

	// errListenerPanic is recorded on the span and metrics of an emission
	// aborted by a panic. Emit never returns it.
	errListenerPanic = errors.New("event: listener panicked")
)

// ListenerError wraps a failure returned by a listener. Emit stops at the
// first failure and hands it to its caller.
type ListenerError struct {
	Event        Event  // The emission being dispatched
	Key          Key    // Key the listener was registered under
	ListenerID   string // ID of the failing listener
	ListenerName string // Optional listener name
	Err          error  // Error returned by the listener
}

// Error implements error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("event %s: listener %s (%s): %v", e.Event.Name, e.Listener(), e.Key, e.Err)
}

// Listener returns the listener's name, or its ID when unnamed.
func (e *ListenerError) Listener() string {
	if e.ListenerName != "" {
		return e.ListenerName
	}
	return e.ListenerID
}

// Unwrap returns the listener's error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// PayloadTypeError is returned by typed listeners when a payload does not
// have the expected Go type.
type PayloadTypeError struct {
	Event string
	Want  string
	Got   string
	Err   error // Decode error when the payload was converted from Fields
}

// Error implements error interface.
func (e *PayloadTypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("event %s: payload %s is not %s: %v", e.Event, e.Got, e.Want, e.Err)
	}
	return fmt.Sprintf("event %s: payload %s is not %s", e.Event, e.Got, e.Want)
}

// Unwrap returns the decode error, if any.
func (e *PayloadTypeError) Unwrap() error {
	return e.Err
}
