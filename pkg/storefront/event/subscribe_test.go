package event_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/storefront/pkg/storefront/event"
)

type fieldChange struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func TestSubscribeTypedPayload(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})

	var got []fieldChange
	l, err := event.Subscribe(b, event.MustPattern(`^contacts\.`), func(_ context.Context, p fieldChange) error {
		got = append(got, p)
		return nil
	}, event.WithName("contacts"))
	require.NoError(t, err)
	assert.Equal(t, "contacts", l.Name())

	ctx := context.Background()
	require.NoError(t, b.Emit(ctx, "contacts.email:change", fieldChange{Field: "email", Value: "a@b.c"}))
	require.NoError(t, b.Emit(ctx, "contacts.phone:change", event.Fields{"field": "phone", "value": "+1"}))
	require.NoError(t, b.Emit(ctx, "contacts.phone:change", nil))

	assert.Equal(t, []fieldChange{
		{Field: "email", Value: "a@b.c"},
		{Field: "phone", Value: "+1"},
		{},
	}, got)

	b.Off(event.MustPattern(`^contacts\.`), l)
	assert.False(t, b.Has(event.MustPattern(`^contacts\.`)))
}

func TestSubscribeTypeMismatch(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})

	_, err := event.Subscribe(b, event.Exact("card:select"), func(context.Context, string) error {
		return nil
	})
	require.NoError(t, err)

	err = b.Emit(context.Background(), "card:select", 42)
	require.Error(t, err)

	var perr *event.PayloadTypeError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "card:select", perr.Event)
	assert.Equal(t, "string", perr.Want)
	assert.Equal(t, "int", perr.Got)

	var lerr *event.ListenerError
	assert.ErrorAs(t, err, &lerr)
}

func TestSubscribeFieldsDecodeFailure(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})

	_, err := event.Subscribe(b, event.Exact("x"), func(context.Context, fieldChange) error {
		return nil
	})
	require.NoError(t, err)

	err = b.Emit(context.Background(), "x", event.Fields{"value": 12})
	var perr *event.PayloadTypeError
	require.ErrorAs(t, err, &perr)
	assert.Error(t, perr.Err)
}

func TestSubscribeNilFunc(t *testing.T) {
	b := event.NewBroker(event.BrokerConfig{})
	_, err := event.Subscribe[string](b, event.Exact("x"), nil)
	assert.ErrorIs(t, err, event.ErrNilListener)
}

func TestListenerOptions(t *testing.T) {
	l := event.MustListener(func(context.Context, event.Event) error { return nil },
		event.WithID("fixed"), event.WithName("named"))
	assert.Equal(t, "fixed", l.ID())
	assert.Equal(t, "named", l.Name())

	auto := event.MustListener(func(context.Context, event.Event) error { return nil })
	assert.NotEmpty(t, auto.ID())
	assert.Empty(t, auto.Name())

	assert.Panics(t, func() { event.MustListener(nil) })
}
