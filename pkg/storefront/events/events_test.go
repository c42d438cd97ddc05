package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/storefront/pkg/storefront/event"
	"github.com/randalmurphal/storefront/pkg/storefront/events"
)

func TestCatalogCoversEveryName(t *testing.T) {
	c := events.Catalog()
	assert.Equal(t, len(events.All()), c.Len())
	for _, name := range events.All() {
		assert.True(t, c.Has(name), name)
	}
}

func TestFieldNames(t *testing.T) {
	assert.Equal(t, events.OrderAddressChange, events.FieldChangeName(events.DeliveryForm, events.AddressField))
	assert.Equal(t, events.OrderPaymentChange, events.FieldChangeName(events.DeliveryForm, events.PaymentField))
	assert.Equal(t, events.ContactsEmailChange, events.FieldChangeName(events.ContactsForm, events.EmailField))
	assert.Equal(t, events.ContactsPhoneChange, events.FieldChangeName(events.ContactsForm, events.PhoneField))
	assert.Equal(t, events.OrderSubmit, events.SubmitName(events.DeliveryForm))
	assert.Equal(t, events.ContactsSubmit, events.SubmitName(events.ContactsForm))

	k := event.MustPattern(events.FieldPattern(events.DeliveryForm))
	assert.True(t, k.Match(events.OrderAddressChange))
	assert.True(t, k.Match(events.OrderPaymentChange))
	assert.False(t, k.Match(events.OrderOpen))
	assert.False(t, k.Match(events.ContactsEmailChange))
}

func TestCatalogValidators(t *testing.T) {
	c := events.Catalog()

	tests := []struct {
		name    string
		event   string
		payload any
		wantErr bool
	}{
		{"basket typed", events.BasketChanged, events.BasketState{}, false},
		{"basket wrong type", events.BasketChanged, 3, true},
		{"catalog typed", events.ItemsChanged, events.CatalogChanged{}, false},
		{"card needs payload", events.CardSelect, nil, true},
		{"card any product", events.CardSelect, struct{}{}, false},
		{"field typed", events.OrderAddressChange, events.FieldChange{Value: "x"}, false},
		{"field from trigger", events.ContactsEmailChange, event.Fields{"value": "a@b"}, false},
		{"field missing value", events.ContactsPhoneChange, event.Fields{"field": "phone"}, true},
		{"field wrong type", events.OrderPaymentChange, "card", true},
		{"form errors", events.DeliveryFormErrors, events.FormErrors{}, false},
		{"form errors wrong type", events.ContactsFormErrors, map[string]string{}, true},
		{"success", events.OrderSuccess, events.OrderPlaced{ID: "1"}, false},
		{"modal open no validator", events.ModalOpen, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Validate(tt.event, tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormErrors(t *testing.T) {
	assert.True(t, events.FormErrors{}.Valid())
	assert.True(t, events.FormErrors{"email": ""}.Valid())

	errs := events.FormErrors{"address": "Enter an address", "payment": "Choose a payment method"}
	assert.False(t, errs.Valid())
	assert.Equal(t, "Choose a payment method; Enter an address", errs.Message("payment", "address"))
	assert.Equal(t, "Enter an address", errs.Message("email", "address"))
	assert.Empty(t, events.FormErrors{}.Message("email"))
}

func TestBasketStateCount(t *testing.T) {
	require.Equal(t, 2, events.BasketState{IDs: []string{"a", "b"}}.Count())
}
