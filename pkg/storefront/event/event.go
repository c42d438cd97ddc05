package event

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Event is one emission as delivered to a listener.
type Event struct {
	ID      string // Unique per Emit call
	Name    string // Emitted event name
	Payload any    // Shape agreed between emitter and listener
	Depth   int    // 0 for a top-level emit, +1 per nested emit
}

// Publisher is the emitting half of the broker. State holders depend on
// this instead of on *Broker.
type Publisher interface {
	Emit(ctx context.Context, name string, payload any) error
}

// ListenerFunc handles one emission. A returned error aborts the dispatch
// and is passed back to the emitter.
type ListenerFunc func(ctx context.Context, evt Event) error

// Listener is a registered callback with identity. The same *Listener may
// be registered under several keys; registering it twice under one key
// has no effect.
type Listener struct {
	id   string
	name string
	fn   ListenerFunc
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithName sets a human-readable name used in logs and errors.
func WithName(name string) ListenerOption {
	return func(l *Listener) {
		l.name = name
	}
}

// WithID sets a specific listener ID (default: auto-generated UUID).
func WithID(id string) ListenerOption {
	return func(l *Listener) {
		l.id = id
	}
}

// NewListener wraps fn into a Listener. A nil fn is rejected here rather
// than when an event is dispatched.
func NewListener(fn ListenerFunc, opts ...ListenerOption) (*Listener, error) {
	if fn == nil {
		return nil, ErrNilListener
	}
	l := &Listener{
		id: uuid.NewString(),
		fn: fn,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// MustListener is like NewListener but panics on a nil fn.
func MustListener(fn ListenerFunc, opts ...ListenerOption) *Listener {
	l, err := NewListener(fn, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// ID returns the listener ID.
func (l *Listener) ID() string {
	return l.id
}

// Name returns the listener name, or "" if none was set.
func (l *Listener) Name() string {
	return l.name
}

// Subscribe registers a listener that receives the payload as T.
//
// A nil payload is delivered as the zero T. Fields and map[string]any
// payloads are decoded into T through JSON, so a trigger merging form
// fields can feed a struct-typed listener. Any other mismatch fails the
// dispatch with *PayloadTypeError.
func Subscribe[T any](
	b *Broker,
	key Key,
	fn func(ctx context.Context, payload T) error,
	opts ...ListenerOption,
) (*Listener, error) {
	if fn == nil {
		return nil, ErrNilListener
	}
	l, err := NewListener(func(ctx context.Context, evt Event) error {
		payload, err := payloadAs[T](evt)
		if err != nil {
			return err
		}
		return fn(ctx, payload)
	}, opts...)
	if err != nil {
		return nil, err
	}
	if err := b.On(key, l); err != nil {
		return nil, err
	}
	return l, nil
}

func payloadAs[T any](evt Event) (T, error) {
	var payload T

	switch d := evt.Payload.(type) {
	case nil:
		return payload, nil
	case T:
		return d, nil
	case Fields:
		return decodeFields[T](evt, map[string]any(d))
	case map[string]any:
		return decodeFields[T](evt, d)
	}

	return payload, &PayloadTypeError{
		Event: evt.Name,
		Want:  reflect.TypeFor[T]().String(),
		Got:   fmt.Sprintf("%T", evt.Payload),
	}
}

func decodeFields[T any](evt Event, fields map[string]any) (T, error) {
	var payload T

	typeErr := func(err error) error {
		return &PayloadTypeError{
			Event: evt.Name,
			Want:  reflect.TypeFor[T]().String(),
			Got:   fmt.Sprintf("%T", evt.Payload),
			Err:   err,
		}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return payload, typeErr(err)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, typeErr(err)
	}
	return payload, nil
}
