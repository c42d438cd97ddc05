// Package event provides the storefront's event broker: a synchronous
// publish/subscribe registry that is the only channel between state
// holders and view components.
//
// # Keys
//
// Listeners subscribe under a Key whose kind is chosen by constructor:
//
//	event.Exact("basket:changed")      // literal name
//	event.MustPattern(`^order\.`)      // regular expression
//	event.All()                        // every emission (OnAll)
//
// A pattern is never inferred from the text of a name.
//
// # Listeners
//
// A Listener wraps a ListenerFunc and gives it identity, so that the same
// callback can be removed again and registering it twice is harmless:
//
//	l := event.MustListener(func(ctx context.Context, evt event.Event) error {
//	    counter++
//	    return nil
//	})
//	broker.On(event.Exact("basket:changed"), l)
//	defer broker.Off(event.Exact("basket:changed"), l)
//
// Subscribe adds a typed layer on top:
//
//	event.Subscribe(broker, event.Exact("card:select"),
//	    func(ctx context.Context, p model.Product) error { ... })
//
// # Emission
//
// Emit runs every matching listener before returning, on the caller's
// goroutine. Matching sets are captured when Emit starts, so listeners may
// register, unregister and emit from inside a callback. The first listener
// error aborts the dispatch and is returned to the emitter as
// *ListenerError; nothing is swallowed or retried.
//
// # Triggers
//
// Trigger builds a ready-made emitter for collaborators that should not
// see the broker:
//
//	onClick := broker.MustTrigger("basket:open", nil)
//	onClick(ctx, nil)
//
// # Catalog
//
// A Catalog documents the event names an application uses. With
// BrokerConfig.StrictNames, names outside the catalog are rejected when
// subscribing, triggering and emitting.
package event
