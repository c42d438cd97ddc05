package view

import (
	"context"
	"slices"

	"github.com/randalmurphal/storefront/pkg/storefront/event"
	"github.com/randalmurphal/storefront/pkg/storefront/events"
)

// PageConfig configures the Page.
type PageConfig struct {
	Events Broker `validate:"required"`
}

// PageView is a rendered page.
type PageView struct {
	Counter int
	Locked  bool
	Catalog []CardView
}

// Page is the storefront page: the catalog gallery, the basket counter,
// and the scroll lock held while a modal is open.
type Page struct {
	openBasket event.TriggerFunc

	counter int
	locked  bool
	catalog []CardView
}

// NewPage creates the page.
func NewPage(cfg PageConfig) (*Page, error) {
	if err := validateConfig("page", cfg); err != nil {
		return nil, err
	}
	open, err := cfg.Events.Trigger(events.BasketOpen, nil)
	if err != nil {
		return nil, err
	}
	return &Page{openBasket: open}, nil
}

// SetCounter sets the basket counter.
func (p *Page) SetCounter(n int) { p.counter = n }

// SetLocked locks or unlocks page scrolling.
func (p *Page) SetLocked(v bool) { p.locked = v }

// Locked reports whether the page is locked.
func (p *Page) Locked() bool { return p.locked }

// SetCatalog replaces the gallery.
func (p *Page) SetCatalog(cards []CardView) { p.catalog = slices.Clone(cards) }

// OpenBasket handles a click on the basket button.
func (p *Page) OpenBasket(ctx context.Context) error {
	return p.openBasket(ctx, nil)
}

// Render returns the page snapshot.
func (p *Page) Render() PageView {
	return PageView{
		Counter: p.counter,
		Locked:  p.locked,
		Catalog: slices.Clone(p.catalog),
	}
}
