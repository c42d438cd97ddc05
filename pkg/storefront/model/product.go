// Package model holds the storefront's application state: the product
// catalog, the basket, the previewed product and the order being placed.
//
// State never talks to views. Every mutation announces itself through an
// Emitter, and views react to the emitted events.
package model

import "errors"

// Errors returned by AppState mutations.
var (
	// ErrNotForSale is returned when adding a product without a price.
	ErrNotForSale = errors.New("model: product is not for sale")

	// ErrUnknownProduct is returned when a product ID is not in the catalog.
	ErrUnknownProduct = errors.New("model: unknown product")
)

// Product is one catalog entry.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"` // nil: not for sale
}

// ForSale reports whether the product has a price.
func (p Product) ForSale() bool {
	return p.Price != nil
}

// PriceValue returns the price, or 0 when the product is not for sale.
func (p Product) PriceValue() float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// Price is a helper for building products with a price literal.
func Price(v float64) *float64 {
	return &v
}

// Order is the order being assembled across the two checkout forms.
type Order struct {
	Payment string   `json:"payment"`
	Address string   `json:"address"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Total   float64  `json:"total"`
	Items   []string `json:"items"`
}

// OrderResult is the submitter's answer to a placed order.
type OrderResult struct {
	ID    string  `json:"id"`
	Total float64 `json:"total"`
}
