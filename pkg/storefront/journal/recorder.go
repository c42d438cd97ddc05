package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/storefront/pkg/storefront/event"
)

// Recorder appends every emission of a broker to a Store. OnAll listeners
// run before the other listeners of an emission, so entries follow emission
// order and failed emissions are journaled too.
type Recorder struct {
	broker   *event.Broker
	store    Store
	listener *event.Listener

	logger *slog.Logger
	strict bool
	now    func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger for encoding and store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithStrict makes store failures fail the emission instead of being
// logged. Use it when a complete journal matters more than the checkout.
func WithStrict() Option {
	return func(r *Recorder) {
		r.strict = true
	}
}

// WithClock sets the timestamp source (default: time.Now).
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// Attach subscribes a new Recorder to every event emitted on b.
func Attach(b *event.Broker, store Store, opts ...Option) (*Recorder, error) {
	if b == nil || store == nil {
		return nil, fmt.Errorf("journal: broker and store are required")
	}

	r := &Recorder{
		broker: b,
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	l, err := event.NewListener(r.record, event.WithName("journal"))
	if err != nil {
		return nil, err
	}
	if err := b.OnAll(l); err != nil {
		return nil, fmt.Errorf("journal: subscribe: %w", err)
	}
	r.listener = l
	return r, nil
}

// Detach stops recording. The store stays open.
func (r *Recorder) Detach() {
	r.broker.Off(event.All(), r.listener)
}

// Store returns the store entries are written to.
func (r *Recorder) Store() Store {
	return r.store
}

func (r *Recorder) record(_ context.Context, evt event.Event) error {
	entry := Entry{
		EmissionID: evt.ID,
		Name:       evt.Name,
		Depth:      evt.Depth,
		Timestamp:  r.now().UTC(),
	}

	if evt.Payload != nil {
		payload, err := json.Marshal(evt.Payload)
		if err != nil {
			r.warn("payload not encodable", evt, err)
		} else {
			entry.Payload = payload
		}
	}

	if _, err := r.store.Append(entry); err != nil {
		if r.strict {
			return fmt.Errorf("journal: %w", err)
		}
		r.warn("append failed", evt, err)
	}
	return nil
}

func (r *Recorder) warn(msg string, evt event.Event, err error) {
	if r.logger == nil {
		return
	}
	r.logger.Warn("journal: "+msg,
		slog.String("emission_id", evt.ID),
		slog.String("event", evt.Name),
		slog.String("error", err.Error()),
	)
}
