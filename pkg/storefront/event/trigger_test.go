package event_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/storefront/pkg/storefront/event"
)

func capture(t *testing.T, b *event.Broker, name string) *[]any {
	t.Helper()
	var got []any
	_, err := b.OnFunc(event.Exact(name), func(_ context.Context, evt event.Event) error {
		got = append(got, evt.Payload)
		return nil
	})
	require.NoError(t, err)
	return &got
}

func TestTriggerWithoutExtractor(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})
	got := capture(t, b, "basket:open")

	open, err := b.Trigger("basket:open", nil)
	require.NoError(t, err)

	require.NoError(t, open(context.Background(), nil))
	require.NoError(t, open(context.Background(), "click"))
	assert.Equal(t, []any{nil, "click"}, *got)
}

func TestTriggerMergesFields(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})
	got := capture(t, b, "order.address:change")

	change := b.MustTrigger("order.address:change", func(source any) any {
		return event.Fields{"field": "address", "value": "overridden"}
	})

	require.NoError(t, change(context.Background(), event.Fields{"value": "Main St 1", "origin": "input"}))
	require.Len(t, *got, 1)
	assert.Equal(t, event.Fields{
		"field":  "address",
		"value":  "overridden",
		"origin": "input",
	}, (*got)[0])
}

func TestTriggerMergesPlainMaps(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})
	got := capture(t, b, "x")

	fire := b.MustTrigger("x", func(any) any {
		return map[string]any{"b": 2}
	})
	require.NoError(t, fire(context.Background(), map[string]any{"a": 1}))
	assert.Equal(t, event.Fields{"a": 1, "b": 2}, (*got)[0])
}

func TestTriggerExtractedNonFieldsReplacesSource(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})
	got := capture(t, b, "card:select")

	sel := b.MustTrigger("card:select", func(source any) any {
		return source.(event.Fields)["id"]
	})
	require.NoError(t, sel(context.Background(), event.Fields{"id": "p1"}))
	assert.Equal(t, []any{"p1"}, *got)
}

func TestTriggerExtractorReturningNilKeepsSource(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})
	got := capture(t, b, "x")

	fire := b.MustTrigger("x", func(any) any { return nil })
	require.NoError(t, fire(context.Background(), event.Fields{"a": 1}))
	assert.Equal(t, event.Fields{"a": 1}, (*got)[0])
}

func TestTriggerErrors(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})

	_, err := b.Trigger("", nil)
	assert.ErrorIs(t, err, event.ErrEmptyName)
	assert.Panics(t, func() { b.MustTrigger("", nil) })
}

func TestTriggerReturnsListenerError(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})
	_, err := b.OnFunc(event.Exact("order:submit"), func(context.Context, event.Event) error {
		return assert.AnError
	})
	require.NoError(t, err)

	submit := b.MustTrigger("order:submit", nil)
	err = submit(context.Background(), nil)
	assert.ErrorIs(t, err, assert.AnError)
}
