package model

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/randalmurphal/storefront/pkg/storefront/events"
)

// Emitter publishes state changes. *event.Broker satisfies it.
type Emitter interface {
	Emit(ctx context.Context, name string, payload any) error
}

// Presence-check messages.
const (
	MsgPaymentRequired = "Choose a payment method"
	MsgAddressRequired = "Enter a delivery address"
	MsgEmailRequired   = "Enter an email"
	MsgPhoneRequired   = "Enter a phone number"
)

// AppState is the storefront's single source of truth.
//
// Mutations update state first and emit afterwards, so listeners reading
// the state from inside the notification see the new values. The error
// returned by a mutation is the emit error; the state change itself has
// already happened.
type AppState struct {
	emitter Emitter

	mu       sync.RWMutex
	catalog  []Product
	basket   []Product
	preview  *Product
	order    Order
	delivery events.FormErrors
	contacts events.FormErrors
}

// NewAppState creates empty state publishing through emitter.
func NewAppState(emitter Emitter) *AppState {
	return &AppState{emitter: emitter}
}

// Catalog returns a copy of the product list.
func (s *AppState) Catalog() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.catalog)
}

// Product looks up a catalog product by ID.
func (s *AppState) Product(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.catalog, func(p Product) bool { return p.ID == id })
	if i < 0 {
		return Product{}, false
	}
	return s.catalog[i], true
}

// SetCatalog replaces the product list and emits items:changed.
func (s *AppState) SetCatalog(ctx context.Context, products []Product) error {
	s.mu.Lock()
	s.catalog = slices.Clone(products)
	payload := events.CatalogChanged{IDs: ids(s.catalog)}
	s.mu.Unlock()

	return s.emitter.Emit(ctx, events.ItemsChanged, payload)
}

// Preview returns the previewed product, if any.
func (s *AppState) Preview() (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.preview == nil {
		return Product{}, false
	}
	return *s.preview, true
}

// SetPreview records the previewed product and emits preview:changed.
func (s *AppState) SetPreview(ctx context.Context, p Product) error {
	s.mu.Lock()
	s.preview = &p
	s.mu.Unlock()

	return s.emitter.Emit(ctx, events.PreviewChanged, p)
}

// Basket returns a copy of the basket in insertion order.
func (s *AppState) Basket() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.basket)
}

// InBasket reports whether the product with id is in the basket.
func (s *AppState) InBasket(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.basketIndexLocked(id) >= 0
}

// BasketTotal returns the sum of basket prices.
func (s *AppState) BasketTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalOf(s.basket)
}

// AddToBasket adds p and emits basket:changed. Products without a price
// are rejected with ErrNotForSale; adding a product twice is a no-op.
func (s *AppState) AddToBasket(ctx context.Context, p Product) error {
	if !p.ForSale() {
		return fmt.Errorf("%w: %s", ErrNotForSale, p.ID)
	}

	s.mu.Lock()
	if s.basketIndexLocked(p.ID) >= 0 {
		s.mu.Unlock()
		return nil
	}
	s.basket = append(slices.Clone(s.basket), p)
	payload := s.basketChangedLocked()
	s.mu.Unlock()

	return s.emitter.Emit(ctx, events.BasketChanged, payload)
}

// RemoveFromBasket removes the product with id and emits basket:changed.
// Removing a product that is not in the basket is a no-op.
func (s *AppState) RemoveFromBasket(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.basketIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.basket = slices.Delete(slices.Clone(s.basket), i, i+1)
	payload := s.basketChangedLocked()
	s.mu.Unlock()

	return s.emitter.Emit(ctx, events.BasketChanged, payload)
}

// ClearBasket empties the basket and emits basket:changed.
func (s *AppState) ClearBasket(ctx context.Context) error {
	s.mu.Lock()
	s.basket = nil
	payload := s.basketChangedLocked()
	s.mu.Unlock()

	return s.emitter.Emit(ctx, events.BasketChanged, payload)
}

// Order returns a copy of the order being assembled.
func (s *AppState) Order() Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o := s.order
	o.Items = slices.Clone(o.Items)
	return o
}

// SetPaymentMethod sets the payment method and emits
// deliveryFormError:change.
func (s *AppState) SetPaymentMethod(ctx context.Context, method string) error {
	return s.setDelivery(ctx, func(o *Order) { o.Payment = method })
}

// SetAddress sets the delivery address and emits deliveryFormError:change.
func (s *AppState) SetAddress(ctx context.Context, address string) error {
	return s.setDelivery(ctx, func(o *Order) { o.Address = address })
}

// SetEmail sets the contact email and emits contactsFormError:change.
func (s *AppState) SetEmail(ctx context.Context, email string) error {
	return s.setContacts(ctx, func(o *Order) { o.Email = email })
}

// SetPhone sets the contact phone and emits contactsFormError:change.
func (s *AppState) SetPhone(ctx context.Context, phone string) error {
	return s.setContacts(ctx, func(o *Order) { o.Phone = phone })
}

// DeliveryErrors returns the last computed delivery form errors.
func (s *AppState) DeliveryErrors() events.FormErrors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.delivery
}

// ContactErrors returns the last computed contacts form errors.
func (s *AppState) ContactErrors() events.FormErrors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contacts
}

// SetItems copies the basket's product IDs and total into the order.
func (s *AppState) SetItems() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Items = ids(s.basket)
	s.order.Total = totalOf(s.basket)
}

// ClearOrder resets the order and both forms' errors.
func (s *AppState) ClearOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = Order{}
	s.delivery = nil
	s.contacts = nil
}

func (s *AppState) setDelivery(ctx context.Context, update func(*Order)) error {
	s.mu.Lock()
	update(&s.order)
	errs := events.FormErrors{}
	if s.order.Payment == "" {
		errs[events.PaymentField] = MsgPaymentRequired
	}
	if s.order.Address == "" {
		errs[events.AddressField] = MsgAddressRequired
	}
	s.delivery = errs
	s.mu.Unlock()

	return s.emitter.Emit(ctx, events.DeliveryFormErrors, errs)
}

func (s *AppState) setContacts(ctx context.Context, update func(*Order)) error {
	s.mu.Lock()
	update(&s.order)
	errs := events.FormErrors{}
	if s.order.Email == "" {
		errs[events.EmailField] = MsgEmailRequired
	}
	if s.order.Phone == "" {
		errs[events.PhoneField] = MsgPhoneRequired
	}
	s.contacts = errs
	s.mu.Unlock()

	return s.emitter.Emit(ctx, events.ContactsFormErrors, errs)
}

func (s *AppState) basketIndexLocked(id string) int {
	return slices.IndexFunc(s.basket, func(p Product) bool { return p.ID == id })
}

func (s *AppState) basketChangedLocked() events.BasketState {
	return events.BasketState{IDs: ids(s.basket), Total: totalOf(s.basket)}
}

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func totalOf(products []Product) float64 {
	var total float64
	for _, p := range products {
		total += p.PriceValue()
	}
	return total
}
