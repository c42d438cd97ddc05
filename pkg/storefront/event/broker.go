package event

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/storefront/pkg/storefront/observability"
)

// BrokerConfig configures broker behavior.
type BrokerConfig struct {
	// Catalog documents known event names (optional). When set, payload
	// validators run before dispatch and deprecated names are logged.
	Catalog *Catalog

	// StrictNames rejects exact keys, triggers and emissions whose name is
	// not in Catalog. Ignored without a Catalog.
	StrictNames bool

	// MaxDepth limits nested emissions from inside listeners.
	// Default: 32
	MaxDepth int

	// Logger receives dispatch and registration logs (optional).
	Logger *slog.Logger

	// Metrics records dispatch metrics. Default: observability.NoopMetrics{}
	Metrics observability.MetricsRecorder

	// Spans creates one span per emission. Default: observability.NoopSpanManager{}
	Spans observability.SpanManager

	// OnError observes listener failures. The failure is still returned
	// from Emit.
	OnError func(err *ListenerError)
}

// DefaultBrokerConfig provides reasonable defaults.
var DefaultBrokerConfig = BrokerConfig{
	MaxDepth: 32,
}

// subscriberSet holds the listeners of one key in registration order.
type subscriberSet struct {
	key       Key
	listeners []*Listener
}

func (s *subscriberSet) contains(l *Listener) bool {
	return slices.Contains(s.listeners, l)
}

// Broker is a synchronous publish/subscribe registry. Listeners run on the
// emitter's goroutine before Emit returns. The registry lock is never held
// while a listener runs, so listeners may call On, Off and Emit.
type Broker struct {
	config BrokerConfig

	mu           sync.RWMutex
	exact        map[string]*subscriberSet
	patterns     map[string]*subscriberSet
	patternOrder []string // pattern sources in first-registration order
	wildcard     *subscriberSet
}

// NewBroker creates a broker. Create one per application session and pass
// it to every component that publishes or subscribes.
func NewBroker(config BrokerConfig) *Broker {
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultBrokerConfig.MaxDepth
	}
	if config.Metrics == nil {
		config.Metrics = observability.NoopMetrics{}
	}
	if config.Spans == nil {
		config.Spans = observability.NoopSpanManager{}
	}

	return &Broker{
		config:   config,
		exact:    make(map[string]*subscriberSet),
		patterns: make(map[string]*subscriberSet),
	}
}

// On registers l under key. Registering a listener that is already
// registered under key is a no-op.
func (b *Broker) On(key Key, l *Listener) error {
	if err := key.validate(); err != nil {
		return err
	}
	if l == nil || l.fn == nil {
		return ErrNilListener
	}
	if key.kind == KindExact {
		if err := b.checkKnown(key.text); err != nil {
			return err
		}
	}

	b.mu.Lock()
	set := b.lookupLocked(key)
	if set == nil {
		set = b.createLocked(key)
	}
	added := !set.contains(l)
	if added {
		set.listeners = append(set.listeners, l)
	}
	b.mu.Unlock()

	if added {
		b.config.Metrics.RecordSubscriptions(context.Background(), key.kind.String(), 1)
		observability.LogSubscribe(b.config.Logger, key.String(), l.id)
	}
	return nil
}

// OnFunc wraps fn into a Listener and registers it under key. Keep the
// returned listener to unregister it later.
func (b *Broker) OnFunc(key Key, fn ListenerFunc, opts ...ListenerOption) (*Listener, error) {
	l, err := NewListener(fn, opts...)
	if err != nil {
		return nil, err
	}
	if err := b.On(key, l); err != nil {
		return nil, err
	}
	return l, nil
}

// OnAll registers l for every emitted event.
func (b *Broker) OnAll(l *Listener) error {
	return b.On(All(), l)
}

// Off removes l from key. Unknown keys and listeners are ignored.
func (b *Broker) Off(key Key, l *Listener) {
	if l == nil {
		return
	}

	b.mu.Lock()
	set := b.lookupLocked(key)
	if set == nil {
		b.mu.Unlock()
		return
	}
	idx := slices.Index(set.listeners, l)
	if idx < 0 {
		b.mu.Unlock()
		return
	}
	// Copy on removal: snapshots taken by in-flight emissions keep the
	// old backing array.
	set.listeners = slices.Delete(slices.Clone(set.listeners), idx, idx+1)
	if len(set.listeners) == 0 {
		b.dropLocked(key)
	}
	b.mu.Unlock()

	b.config.Metrics.RecordSubscriptions(context.Background(), key.kind.String(), -1)
	observability.LogUnsubscribe(b.config.Logger, key.String(), l.id)
}

// OffAll removes every subscription under every key.
func (b *Broker) OffAll() {
	b.mu.Lock()
	removed := map[KeyKind]int64{}
	for _, set := range b.exact {
		removed[KindExact] += int64(len(set.listeners))
	}
	for _, set := range b.patterns {
		removed[KindPattern] += int64(len(set.listeners))
	}
	if b.wildcard != nil {
		removed[KindAll] += int64(len(b.wildcard.listeners))
	}
	b.exact = make(map[string]*subscriberSet)
	b.patterns = make(map[string]*subscriberSet)
	b.patternOrder = nil
	b.wildcard = nil
	b.mu.Unlock()

	for kind, n := range removed {
		if n > 0 {
			b.config.Metrics.RecordSubscriptions(context.Background(), kind.String(), -n)
		}
	}
}

// Emit synchronously delivers payload to every listener whose key matches
// name: OnAll listeners first, then the exact key, then matching patterns
// in registration order. A listener registered under several matching keys
// runs once per key. OnAll listeners see every emission before any
// reaction to it, including emissions whose reactions fail or emit again.
//
// The matching listeners are captured when Emit starts. Listeners added
// during dispatch wait for the next emission; listeners removed during
// dispatch are skipped if they have not run yet.
//
// The first listener error stops dispatch and is returned as
// *ListenerError. Panics are not recovered.
func (b *Broker) Emit(ctx context.Context, name string, payload any) (err error) {
	if name == "" {
		return ErrEmptyName
	}
	if err := b.checkCatalog(name, payload); err != nil {
		return err
	}

	depth := depthFrom(ctx)
	if depth >= b.config.MaxDepth {
		return fmt.Errorf("%w: %s at depth %d", ErrMaxDepth, name, depth)
	}

	evt := Event{
		ID:      uuid.NewString(),
		Name:    name,
		Payload: payload,
		Depth:   depth,
	}
	sets := b.snapshot(name)

	start := time.Now()
	ctx, span := b.config.Spans.StartEmitSpan(ctx, name, evt.ID, depth)
	ctx = withDepth(ctx, depth+1)

	invoked := 0
	completed := false
	defer func() {
		if !completed {
			// A listener panicked. The panic keeps unwinding untouched.
			err = errListenerPanic
		}
		b.config.Spans.EndSpanWithError(span, err)
		b.config.Metrics.RecordEmission(ctx, name, invoked, time.Since(start), err)
		if err == nil {
			observability.LogEmit(b.config.Logger, evt.ID, name, invoked,
				float64(time.Since(start).Microseconds())/1000)
		}
	}()

	err = b.dispatch(ctx, sets, evt, &invoked)
	completed = true
	return err
}

func (b *Broker) dispatch(ctx context.Context, sets []subscriberSet, evt Event, invoked *int) error {
	for _, set := range sets {
		for _, l := range set.listeners {
			if !b.subscribed(set.key, l) {
				continue
			}
			*invoked++
			if err := b.invoke(ctx, set.key, l, evt); err != nil {
				return err
			}
		}
	}
	return nil
}

// Has reports whether any listener is registered under key.
func (b *Broker) Has(key Key) bool {
	return b.Count(key) > 0
}

// Count returns the number of listeners registered under key.
func (b *Broker) Count(key Key) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if set := b.lookupLocked(key); set != nil {
		return len(set.listeners)
	}
	return 0
}

// Keys returns every key with at least one listener: exact keys sorted by
// name, then patterns in registration order, then the wildcard.
func (b *Broker) Keys() []Key {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.exact))
	for name := range b.exact {
		names = append(names, name)
	}
	slices.Sort(names)

	keys := make([]Key, 0, len(names)+len(b.patternOrder)+1)
	for _, name := range names {
		keys = append(keys, b.exact[name].key)
	}
	for _, src := range b.patternOrder {
		keys = append(keys, b.patterns[src].key)
	}
	if b.wildcard != nil {
		keys = append(keys, b.wildcard.key)
	}
	return keys
}

// invoke runs one listener and wraps its failure.
func (b *Broker) invoke(ctx context.Context, key Key, l *Listener, evt Event) error {
	start := time.Now()
	err := l.fn(ctx, evt)
	b.config.Metrics.RecordListener(ctx, evt.Name, time.Since(start), err)
	if err == nil {
		return nil
	}

	observability.LogListenerError(b.config.Logger, evt.ID, evt.Name, l.id, err)
	b.config.Spans.AddSpanEvent(ctx, "listener.failed",
		attribute.String("listener.id", l.id),
		attribute.String("listener.key", key.String()),
	)
	lerr := &ListenerError{
		Event:        evt,
		Key:          key,
		ListenerID:   l.id,
		ListenerName: l.name,
		Err:          err,
	}
	if b.config.OnError != nil {
		b.config.OnError(lerr)
	}
	return lerr
}

// snapshot copies the subscriber sets matching name. The listener slices
// are shared with the registry; mutations always replace them.
func (b *Broker) snapshot(name string) []subscriberSet {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var sets []subscriberSet
	if b.wildcard != nil {
		sets = append(sets, *b.wildcard)
	}
	if set, ok := b.exact[name]; ok {
		sets = append(sets, *set)
	}
	for _, src := range b.patternOrder {
		set := b.patterns[src]
		if set.key.Match(name) {
			sets = append(sets, *set)
		}
	}
	return sets
}

// subscribed reports whether l is still registered under key.
func (b *Broker) subscribed(key Key, l *Listener) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	set := b.lookupLocked(key)
	return set != nil && set.contains(l)
}

func (b *Broker) lookupLocked(key Key) *subscriberSet {
	switch key.kind {
	case KindExact:
		return b.exact[key.text]
	case KindPattern:
		return b.patterns[key.text]
	case KindAll:
		return b.wildcard
	}
	return nil
}

func (b *Broker) createLocked(key Key) *subscriberSet {
	set := &subscriberSet{key: key}
	switch key.kind {
	case KindExact:
		b.exact[key.text] = set
	case KindPattern:
		b.patterns[key.text] = set
		b.patternOrder = append(b.patternOrder, key.text)
	case KindAll:
		b.wildcard = set
	}
	return set
}

func (b *Broker) dropLocked(key Key) {
	switch key.kind {
	case KindExact:
		delete(b.exact, key.text)
	case KindPattern:
		delete(b.patterns, key.text)
		if i := slices.Index(b.patternOrder, key.text); i >= 0 {
			b.patternOrder = slices.Delete(slices.Clone(b.patternOrder), i, i+1)
		}
	case KindAll:
		b.wildcard = nil
	}
}

// checkKnown enforces StrictNames for a single name.
func (b *Broker) checkKnown(name string) error {
	if !b.config.StrictNames || b.config.Catalog == nil {
		return nil
	}
	if !b.config.Catalog.Has(name) {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
	return nil
}

// checkCatalog runs catalog checks before dispatch.
func (b *Broker) checkCatalog(name string, payload any) error {
	if b.config.Catalog == nil {
		return nil
	}
	d, ok := b.config.Catalog.Get(name)
	if !ok {
		return b.checkKnown(name)
	}
	if d.Deprecated {
		observability.LogDeprecated(b.config.Logger, name, d.DeprecationMessage)
	}
	if err := d.Validate(payload); err != nil {
		return fmt.Errorf("event %s: invalid payload: %w", name, err)
	}
	return nil
}

// Context keys for emit depth tracking
type contextKey string

const emitDepthKey contextKey = "emit_depth"

func depthFrom(ctx context.Context) int {
	if v, ok := ctx.Value(emitDepthKey).(int); ok {
		return v
	}
	return 0
}

func withDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, emitDepthKey, depth)
}
