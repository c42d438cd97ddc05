package view

import (
	"context"
	"slices"

	"github.com/randalmurphal/storefront/pkg/storefront/event"
	"github.com/randalmurphal/storefront/pkg/storefront/events"
)

// BasketConfig configures the Basket.
type BasketConfig struct {
	Events Broker `validate:"required"`
}

// BasketView is a rendered basket.
type BasketView struct {
	Items       []CardView
	Total       string
	CanCheckout bool
}

// Basket lists the products in the basket and starts checkout.
type Basket struct {
	checkout event.TriggerFunc
	items    []CardView
	total    float64
}

// NewBasket creates an empty basket.
func NewBasket(cfg BasketConfig) (*Basket, error) {
	if err := validateConfig("basket", cfg); err != nil {
		return nil, err
	}
	checkout, err := cfg.Events.Trigger(events.OrderOpen, nil)
	if err != nil {
		return nil, err
	}
	return &Basket{checkout: checkout}, nil
}

// SetItems replaces the rows.
func (b *Basket) SetItems(items []CardView) { b.items = slices.Clone(items) }

// SetTotal sets the displayed total.
func (b *Basket) SetTotal(total float64) { b.total = total }

// Checkout handles the checkout button and emits order:open.
func (b *Basket) Checkout(ctx context.Context) error {
	if len(b.items) == 0 {
		return ErrEmptyBasket
	}
	return b.checkout(ctx, nil)
}

// Render returns the basket snapshot.
func (b *Basket) Render() BasketView {
	return BasketView{
		Items:       slices.Clone(b.items),
		Total:       formatAmount(b.total),
		CanCheckout: len(b.items) > 0,
	}
}
