package events

import "strings"

// CatalogChanged is emitted with ItemsChanged after the product list is
// replaced.
type CatalogChanged struct {
	IDs []string `json:"ids"`
}

// BasketState is emitted with BasketChanged after any basket mutation.
type BasketState struct {
	IDs   []string `json:"ids"`
	Total float64  `json:"total"`
}

// Count returns the number of products in the basket.
func (b BasketState) Count() int {
	return len(b.IDs)
}

// FieldChange is the payload of a form field change. Field triggers emit
// it as event.Fields with the same keys; typed listeners decode either.
type FieldChange struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FormErrors maps a field name to its error text. An empty map means the
// form is valid.
type FormErrors map[string]string

// Valid reports whether no field has an error.
func (e FormErrors) Valid() bool {
	for _, msg := range e {
		if msg != "" {
			return false
		}
	}
	return true
}

// Message joins the non-empty errors of fields, in the given order, with "; ".
func (e FormErrors) Message(fields ...string) string {
	var parts []string
	for _, f := range fields {
		if msg := e[f]; msg != "" {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}

// OrderPlaced is emitted with OrderSuccess once the submitter accepted an
// order.
type OrderPlaced struct {
	ID    string  `json:"id"`
	Total float64 `json:"total"`
}
