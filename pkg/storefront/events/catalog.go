package events

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/storefront/pkg/storefront/event"
)

var errPayloadRequired = errors.New("payload is required")

// Catalog returns the storefront's event catalog with payload validators
// attached. Pass it as event.BrokerConfig.Catalog.
func Catalog() *event.Catalog {
	c := event.NewCatalog()
	c.MustRegister(
		&event.Descriptor{
			Name:        ItemsChanged,
			Source:      "model",
			Description: "Product catalog was replaced.",
			Tags:        []string{"catalog"},
			Validator:   expect[CatalogChanged],
		},
		&event.Descriptor{
			Name:        CardSelect,
			Source:      "view",
			Description: "A catalog card was clicked; carries the product.",
			Tags:        []string{"catalog", "preview"},
			Validator:   required,
		},
		&event.Descriptor{
			Name:        PreviewChanged,
			Source:      "model",
			Description: "The previewed product changed.",
			Tags:        []string{"preview"},
			Validator:   required,
		},
		&event.Descriptor{
			Name:        BasketOpen,
			Source:      "view",
			Description: "The basket button was clicked.",
			Tags:        []string{"basket", "modal"},
		},
		&event.Descriptor{
			Name:        BasketChanged,
			Source:      "model",
			Description: "Basket contents or total changed.",
			Tags:        []string{"basket"},
			Validator:   expect[BasketState],
		},
		&event.Descriptor{
			Name:        AddProduct,
			Source:      "view",
			Description: "The preview's buy button was clicked; carries the product.",
			Tags:        []string{"basket", "preview"},
			Validator:   required,
		},
		&event.Descriptor{
			Name:        CardDelete,
			Source:      "view",
			Description: "A basket row's delete button was clicked; carries the product.",
			Tags:        []string{"basket"},
			Validator:   required,
		},
		&event.Descriptor{
			Name:        OrderOpen,
			Source:      "view",
			Description: "Checkout started from the basket.",
			Tags:        []string{"order", "modal"},
		},
		&event.Descriptor{
			Name:        OrderPaymentChange,
			Source:      "view",
			Description: "Payment method selected.",
			Tags:        []string{"order", "form"},
			Validator:   fieldChange,
		},
		&event.Descriptor{
			Name:        OrderAddressChange,
			Source:      "view",
			Description: "Delivery address edited.",
			Tags:        []string{"order", "form"},
			Validator:   fieldChange,
		},
		&event.Descriptor{
			Name:        DeliveryFormErrors,
			Source:      "model",
			Description: "Delivery form errors were recomputed.",
			Tags:        []string{"order", "validation"},
			Validator:   expect[FormErrors],
		},
		&event.Descriptor{
			Name:        OrderSubmit,
			Source:      "view",
			Description: "Delivery form submitted.",
			Tags:        []string{"order", "form"},
		},
		&event.Descriptor{
			Name:        ContactsEmailChange,
			Source:      "view",
			Description: "Contact email edited.",
			Tags:        []string{"contacts", "form"},
			Validator:   fieldChange,
		},
		&event.Descriptor{
			Name:        ContactsPhoneChange,
			Source:      "view",
			Description: "Contact phone edited.",
			Tags:        []string{"contacts", "form"},
			Validator:   fieldChange,
		},
		&event.Descriptor{
			Name:        ContactsFormErrors,
			Source:      "model",
			Description: "Contacts form errors were recomputed.",
			Tags:        []string{"contacts", "validation"},
			Validator:   expect[FormErrors],
		},
		&event.Descriptor{
			Name:        ContactsSubmit,
			Source:      "view",
			Description: "Contacts form submitted; the order is sent.",
			Tags:        []string{"contacts", "form"},
		},
		&event.Descriptor{
			Name:        OrderSuccess,
			Source:      "storefront",
			Description: "The order was accepted.",
			Tags:        []string{"order"},
			Validator:   expect[OrderPlaced],
		},
		&event.Descriptor{
			Name:        ModalOpen,
			Source:      "view",
			Description: "A modal was opened.",
			Tags:        []string{"modal"},
		},
		&event.Descriptor{
			Name:        ModalClose,
			Source:      "view",
			Description: "The open modal was closed.",
			Tags:        []string{"modal"},
		},
	)
	return c
}

func expect[T any](payload any) error {
	if _, ok := payload.(T); !ok {
		var zero T
		return fmt.Errorf("payload must be %T, got %T", zero, payload)
	}
	return nil
}

func required(payload any) error {
	if payload == nil {
		return errPayloadRequired
	}
	return nil
}

// fieldChange accepts FieldChange or the Fields a form trigger emits.
func fieldChange(payload any) error {
	switch p := payload.(type) {
	case FieldChange:
		return nil
	case event.Fields:
		if _, ok := p["value"]; !ok {
			return errors.New(`fields payload needs a "value" key`)
		}
		return nil
	}
	return fmt.Errorf("payload must be FieldChange or event.Fields, got %T", payload)
}
