// Package view provides headless storefront components.
//
// A component holds what it would display, exposes typed setters, and
// returns an immutable snapshot from Render. User actions (clicks, input,
// submit) are methods that emit events through the broker; components
// never read or change application state.
//
// Each component is configured by a struct validated at construction:
//
//	page, err := view.NewPage(view.PageConfig{Events: broker})
package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/randalmurphal/storefront/pkg/storefront/event"
)

// Broker is the part of the event broker components use.
type Broker interface {
	Emit(ctx context.Context, name string, payload any) error
	Trigger(name string, extract event.Extractor) (event.TriggerFunc, error)
}

// Action is a click handler supplied by the code that builds a component.
type Action func(ctx context.Context) error

// Errors returned by component actions.
var (
	// ErrFormInvalid is returned when submitting a form whose errors are
	// not cleared.
	ErrFormInvalid = errors.New("view: form is not valid")

	// ErrEmptyBasket is returned when checking out an empty basket.
	ErrEmptyBasket = errors.New("view: basket is empty")

	// ErrUnknownField is returned for input on a field the form does not have.
	ErrUnknownField = errors.New("view: unknown form field")
)

var validate = validator.New()

func validateConfig(component string, cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("view: invalid %s config: %w", component, err)
	}
	return nil
}

// Currency is appended to rendered prices.
const Currency = "credits"

// Priceless is rendered for products without a price.
const Priceless = "Priceless"

// FormatPrice renders a price the way cards, the basket and the success
// screen display it.
func FormatPrice(price *float64) string {
	if price == nil {
		return Priceless
	}
	return formatAmount(*price)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + Currency
}
