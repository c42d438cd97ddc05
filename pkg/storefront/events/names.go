// Package events names every event the storefront emits and the payloads
// they carry. Emitters and listeners share these constants instead of
// spelling names inline.
package events

import "regexp"

// Catalog and preview.
const (
	ItemsChanged   = "items:changed"   // payload: CatalogChanged
	CardSelect     = "card:select"     // payload: model.Product
	PreviewChanged = "preview:changed" // payload: model.Product
)

// Basket.
const (
	BasketOpen    = "basket:open"    // payload: nil
	BasketChanged = "basket:changed" // payload: BasketState
	AddProduct    = "add:product"    // payload: model.Product
	CardDelete    = "card:delete"    // payload: model.Product
)

// Delivery form (first checkout step).
const (
	OrderOpen          = "order:open"
	OrderPaymentChange = "order.payment:change" // payload: FieldChange
	OrderAddressChange = "order.address:change" // payload: FieldChange
	DeliveryFormErrors = "deliveryFormError:change"
	OrderSubmit        = "order:submit"

	DeliveryForm = "order"
	PaymentField = "payment"
	AddressField = "address"
)

// Contacts form (second checkout step).
const (
	ContactsEmailChange = "contacts.email:change" // payload: FieldChange
	ContactsPhoneChange = "contacts.phone:change" // payload: FieldChange
	ContactsFormErrors  = "contactsFormError:change"
	ContactsSubmit      = "contacts:submit"

	ContactsForm = "contacts"
	EmailField   = "email"
	PhoneField   = "phone"
)

// Completion and modal lifecycle.
const (
	OrderSuccess = "order:success" // payload: OrderPlaced
	ModalOpen    = "modal:open"
	ModalClose   = "modal:close"
)

// FieldChangeName returns the event a form field emits on input,
// e.g. FieldChangeName("order", "address") == "order.address:change".
func FieldChangeName(form, field string) string {
	return form + "." + field + ":change"
}

// SubmitName returns the event a form emits on submit, e.g. "order:submit".
func SubmitName(form string) string {
	return form + ":submit"
}

// FieldPattern matches every field change of form, e.g. `^order\.`.
func FieldPattern(form string) string {
	return `^` + regexp.QuoteMeta(form) + `\.`
}

// All returns every name in the storefront catalog.
func All() []string {
	return []string{
		ItemsChanged, CardSelect, PreviewChanged,
		BasketOpen, BasketChanged, AddProduct, CardDelete,
		OrderOpen, OrderPaymentChange, OrderAddressChange, DeliveryFormErrors, OrderSubmit,
		ContactsEmailChange, ContactsPhoneChange, ContactsFormErrors, ContactsSubmit,
		OrderSuccess, ModalOpen, ModalClose,
	}
}
