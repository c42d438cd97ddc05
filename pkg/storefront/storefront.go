package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/randalmurphal/storefront/pkg/storefront/event"
	"github.com/randalmurphal/storefront/pkg/storefront/events"
	"github.com/randalmurphal/storefront/pkg/storefront/model"
	"github.com/randalmurphal/storefront/pkg/storefront/retry"
	"github.com/randalmurphal/storefront/pkg/storefront/view"
)

// ErrNothingPreviewed is returned by Buy when no product is previewed.
var ErrNothingPreviewed = errors.New("storefront: no product is previewed")

// OrderSubmitter sends a completed order to the shop backend.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order model.Order) (model.OrderResult, error)
}

// OrderSubmitterFunc adapts a function to OrderSubmitter.
type OrderSubmitterFunc func(ctx context.Context, order model.Order) (model.OrderResult, error)

// SubmitOrder implements OrderSubmitter.
func (f OrderSubmitterFunc) SubmitOrder(ctx context.Context, order model.Order) (model.OrderResult, error) {
	return f(ctx, order)
}

// RetrySubmitter wraps sub so that failures marked with retry.Transient are
// retried according to cfg.
func RetrySubmitter(sub OrderSubmitter, cfg retry.Config) (OrderSubmitter, error) {
	if sub == nil {
		return nil, errors.New("storefront: nil submitter")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("storefront: invalid retry config: %w", err)
	}
	return OrderSubmitterFunc(func(ctx context.Context, order model.Order) (model.OrderResult, error) {
		res := retry.Do(ctx, cfg, func(ctx context.Context) (model.OrderResult, error) {
			return sub.SubmitOrder(ctx, order)
		})
		return res.Value, res.Err
	}), nil
}

// Config configures a Storefront.
type Config struct {
	// Broker carries every interaction. Required.
	Broker *event.Broker `validate:"required"`

	// Submitter places orders. Required.
	Submitter OrderSubmitter `validate:"required"`

	// Logger receives submitter failures (optional).
	Logger *slog.Logger
}

var validate = validator.New()

type subscription struct {
	key      event.Key
	listener *event.Listener
}

// Storefront owns the application state and the components, and the
// reactions that connect them.
type Storefront struct {
	broker    *event.Broker
	submitter OrderSubmitter
	logger    *slog.Logger

	state    *model.AppState
	page     *view.Page
	modal    *view.Modal
	basket   *view.Basket
	delivery *view.Form
	contacts *view.Form
	success  *view.Success

	cards   map[string]*view.Card // catalog cards by product ID
	rows    map[string]*view.Card // basket rows by product ID
	preview *view.Card

	subs []subscription
}

// New builds the state and components and registers every reaction on
// cfg.Broker.
func New(cfg Config) (*Storefront, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("storefront: invalid config: %w", err)
	}

	s := &Storefront{
		broker:    cfg.Broker,
		submitter: cfg.Submitter,
		logger:    cfg.Logger,
		state:     model.NewAppState(cfg.Broker),
		cards:     map[string]*view.Card{},
		rows:      map[string]*view.Card{},
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	if err := s.buildViews(); err != nil {
		return nil, err
	}
	if err := s.register(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storefront) buildViews() error {
	var err error
	if s.page, err = view.NewPage(view.PageConfig{Events: s.broker}); err != nil {
		return err
	}
	if s.modal, err = view.NewModal(view.ModalConfig{Events: s.broker}); err != nil {
		return err
	}
	if s.basket, err = view.NewBasket(view.BasketConfig{Events: s.broker}); err != nil {
		return err
	}
	s.delivery, err = view.NewForm(view.FormConfig{
		Name:   events.DeliveryForm,
		Fields: []string{events.PaymentField, events.AddressField},
		Events: s.broker,
	})
	if err != nil {
		return err
	}
	s.contacts, err = view.NewForm(view.FormConfig{
		Name:   events.ContactsForm,
		Fields: []string{events.EmailField, events.PhoneField},
		Events: s.broker,
	})
	if err != nil {
		return err
	}
	s.success, err = view.NewSuccess(view.SuccessConfig{OnClose: s.modal.Close})
	return err
}

func (s *Storefront) register() error {
	steps := []func() error{
		func() error { return subscribe(s, event.Exact(events.ItemsChanged), "render-catalog", s.renderCatalog) },
		func() error { return subscribe(s, event.Exact(events.CardSelect), "record-preview", s.recordPreview) },
		func() error { return subscribe(s, event.Exact(events.CardSelect), "show-preview", s.showPreview) },
		func() error { return s.on(event.Exact(events.BasketOpen), "open-basket", s.openBasket) },
		func() error { return subscribe(s, event.Exact(events.BasketChanged), "render-basket", s.renderBasket) },
		func() error { return subscribe(s, event.Exact(events.AddProduct), "add-product", s.addProduct) },
		func() error { return subscribe(s, event.Exact(events.CardDelete), "delete-product", s.deleteProduct) },
		func() error { return s.on(event.Exact(events.OrderOpen), "open-delivery", s.openDelivery) },
		func() error {
			return subscribe(s, event.MustPattern(events.FieldPattern(events.DeliveryForm)), "delivery-field", s.deliveryField)
		},
		func() error { return subscribe(s, event.Exact(events.DeliveryFormErrors), "delivery-errors", s.deliveryErrors) },
		func() error { return s.on(event.Exact(events.OrderSubmit), "submit-delivery", s.submitDelivery) },
		func() error {
			return subscribe(s, event.MustPattern(events.FieldPattern(events.ContactsForm)), "contacts-field", s.contactsField)
		},
		func() error { return subscribe(s, event.Exact(events.ContactsFormErrors), "contacts-errors", s.contactsErrors) },
		func() error { return s.on(event.Exact(events.ContactsSubmit), "submit-contacts", s.submitContacts) },
		func() error { return s.on(event.Exact(events.ModalOpen), "lock-page", s.lockPage) },
		func() error { return s.on(event.Exact(events.ModalClose), "unlock-page", s.unlockPage) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("storefront: register reactions: %w", err)
		}
	}
	return nil
}

func (s *Storefront) on(key event.Key, name string, fn event.ListenerFunc) error {
	l, err := s.broker.OnFunc(key, fn, event.WithName(name))
	if err != nil {
		return err
	}
	s.subs = append(s.subs, subscription{key: key, listener: l})
	return nil
}

func subscribe[T any](s *Storefront, key event.Key, name string, fn func(context.Context, T) error) error {
	l, err := event.Subscribe(s.broker, key, fn, event.WithName(name))
	if err != nil {
		return err
	}
	s.subs = append(s.subs, subscription{key: key, listener: l})
	return nil
}

// Start seeds the catalog, which renders the page.
func (s *Storefront) Start(ctx context.Context, products []model.Product) error {
	return s.state.SetCatalog(ctx, products)
}

// Close unregisters every reaction. The broker stays usable.
func (s *Storefront) Close() {
	for _, sub := range s.subs {
		s.broker.Off(sub.key, sub.listener)
	}
	s.subs = nil
}

// SelectProduct clicks the catalog card of product id.
func (s *Storefront) SelectProduct(ctx context.Context, id string) error {
	card, ok := s.cards[id]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUnknownProduct, id)
	}
	return card.Click(ctx)
}

// Buy clicks the buy button of the previewed product.
func (s *Storefront) Buy(ctx context.Context) error {
	if s.preview == nil {
		return ErrNothingPreviewed
	}
	return s.preview.Click(ctx)
}

// RemoveFromBasket clicks the delete button of basket row id.
func (s *Storefront) RemoveFromBasket(ctx context.Context, id string) error {
	row, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("%w: %s not in basket", model.ErrUnknownProduct, id)
	}
	return row.Click(ctx)
}

// State returns the application state.
func (s *Storefront) State() *model.AppState { return s.state }

// Page returns the page component.
func (s *Storefront) Page() *view.Page { return s.page }

// Modal returns the modal component.
func (s *Storefront) Modal() *view.Modal { return s.modal }

// Basket returns the basket component.
func (s *Storefront) Basket() *view.Basket { return s.basket }

// DeliveryForm returns the first checkout form.
func (s *Storefront) DeliveryForm() *view.Form { return s.delivery }

// ContactsForm returns the second checkout form.
func (s *Storefront) ContactsForm() *view.Form { return s.contacts }

// Success returns the success screen.
func (s *Storefront) Success() *view.Success { return s.success }

func (s *Storefront) action(name string, payload any) view.Action {
	return func(ctx context.Context) error {
		return s.broker.Emit(ctx, name, payload)
	}
}

func (s *Storefront) renderCatalog(_ context.Context, _ events.CatalogChanged) error {
	products := s.state.Catalog()
	cards := make(map[string]*view.Card, len(products))
	views := make([]view.CardView, 0, len(products))
	for _, p := range products {
		card, err := view.NewCard(view.CardConfig{
			Variant: view.CardCatalog,
			OnClick: s.action(events.CardSelect, p),
		})
		if err != nil {
			return err
		}
		cards[p.ID] = card
		views = append(views, card.Render(p))
	}
	s.cards = cards
	s.page.SetCatalog(views)
	return nil
}

func (s *Storefront) recordPreview(ctx context.Context, p model.Product) error {
	return s.state.SetPreview(ctx, p)
}

func (s *Storefront) showPreview(ctx context.Context, p model.Product) error {
	card, err := view.NewCard(view.CardConfig{
		Variant: view.CardPreview,
		OnClick: s.action(events.AddProduct, p),
	})
	if err != nil {
		return err
	}
	card.SetInBasket(s.state.InBasket(p.ID))
	s.preview = card
	return s.modal.Open(ctx, card.Render(p))
}

func (s *Storefront) openBasket(ctx context.Context, _ event.Event) error {
	return s.modal.Open(ctx, s.basket.Render())
}

func (s *Storefront) renderBasket(_ context.Context, changed events.BasketState) error {
	products := s.state.Basket()
	rows := make(map[string]*view.Card, len(products))
	views := make([]view.CardView, 0, len(products))
	for i, p := range products {
		row, err := view.NewCard(view.CardConfig{
			Variant: view.CardBasket,
			OnClick: s.action(events.CardDelete, p),
		})
		if err != nil {
			return err
		}
		row.SetIndex(i + 1)
		rows[p.ID] = row
		views = append(views, row.Render(p))
	}
	s.rows = rows
	s.basket.SetItems(views)
	s.basket.SetTotal(changed.Total)
	s.page.SetCounter(changed.Count())

	if _, ok := s.modal.Content().(view.BasketView); ok {
		s.modal.SetContent(s.basket.Render())
	}
	return nil
}

func (s *Storefront) addProduct(ctx context.Context, p model.Product) error {
	if err := s.state.AddToBasket(ctx, p); err != nil {
		return err
	}
	return s.modal.Close(ctx)
}

func (s *Storefront) deleteProduct(ctx context.Context, p model.Product) error {
	return s.state.RemoveFromBasket(ctx, p.ID)
}

func (s *Storefront) openDelivery(ctx context.Context, _ event.Event) error {
	o := s.state.Order()
	s.delivery.Reset(map[string]string{
		events.PaymentField: o.Payment,
		events.AddressField: o.Address,
	})
	return s.modal.Open(ctx, s.delivery.Render())
}

func (s *Storefront) deliveryField(ctx context.Context, fc events.FieldChange) error {
	switch fc.Field {
	case events.PaymentField:
		return s.state.SetPaymentMethod(ctx, fc.Value)
	case events.AddressField:
		return s.state.SetAddress(ctx, fc.Value)
	}
	return nil
}

func (s *Storefront) deliveryErrors(_ context.Context, errs events.FormErrors) error {
	s.delivery.SetValid(errs.Valid())
	s.delivery.SetErrors(errs.Message(events.PaymentField, events.AddressField))
	s.refreshForm(s.delivery)
	return nil
}

func (s *Storefront) submitDelivery(ctx context.Context, _ event.Event) error {
	s.state.SetItems()
	o := s.state.Order()
	s.contacts.Reset(map[string]string{
		events.EmailField: o.Email,
		events.PhoneField: o.Phone,
	})
	return s.modal.Open(ctx, s.contacts.Render())
}

func (s *Storefront) contactsField(ctx context.Context, fc events.FieldChange) error {
	switch fc.Field {
	case events.EmailField:
		return s.state.SetEmail(ctx, fc.Value)
	case events.PhoneField:
		return s.state.SetPhone(ctx, fc.Value)
	}
	return nil
}

func (s *Storefront) contactsErrors(_ context.Context, errs events.FormErrors) error {
	s.contacts.SetValid(errs.Valid())
	s.contacts.SetErrors(errs.Message(events.EmailField, events.PhoneField))
	s.refreshForm(s.contacts)
	return nil
}

func (s *Storefront) submitContacts(ctx context.Context, _ event.Event) error {
	order := s.state.Order()
	result, err := s.submitter.SubmitOrder(ctx, order)
	if err != nil {
		s.logger.Error("order submission failed",
			slog.Int("items", len(order.Items)),
			slog.Float64("total", order.Total),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if err := s.state.ClearBasket(ctx); err != nil {
		return err
	}
	s.state.ClearOrder()
	s.delivery.SetValid(false)
	s.contacts.SetValid(false)

	s.success.SetTotal(result.Total)
	if err := s.modal.Open(ctx, s.success.Render()); err != nil {
		return err
	}
	return s.broker.Emit(ctx, events.OrderSuccess, events.OrderPlaced{ID: result.ID, Total: result.Total})
}

func (s *Storefront) lockPage(context.Context, event.Event) error {
	s.page.SetLocked(true)
	return nil
}

func (s *Storefront) unlockPage(context.Context, event.Event) error {
	s.page.SetLocked(false)
	return nil
}

// refreshForm updates the modal when it shows form.
func (s *Storefront) refreshForm(form *view.Form) {
	if fv, ok := s.modal.Content().(view.FormView); ok && fv.Name == form.Name() {
		s.modal.SetContent(form.Render())
	}
}
