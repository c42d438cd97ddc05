package view

import (
	"context"

	"github.com/randalmurphal/storefront/pkg/storefront/model"
)

// Card variants.
const (
	CardCatalog = "catalog"
	CardPreview = "preview"
	CardBasket  = "basket"
)

// Preview button labels.
const (
	LabelBuy        = "Buy"
	LabelInBasket   = "In basket"
	LabelNotForSale = "Not for sale"
	LabelDelete     = "Delete"
)

// CardConfig configures a Card.
type CardConfig struct {
	// Variant selects the layout: catalog, preview or basket.
	Variant string `validate:"required,oneof=catalog preview basket"`

	// OnClick runs when the card (catalog) or its button (preview, basket)
	// is clicked.
	OnClick Action `validate:"required"`
}

// Button is the state of a card's action button.
type Button struct {
	Label    string
	Disabled bool
}

// CardView is a rendered card.
type CardView struct {
	Variant     string
	ID          string
	Title       string
	Description string
	Image       string
	Category    string
	Price       string
	Index       int    // 1-based row number, basket variant only
	Button      Button // zero for the catalog variant
}

// Card displays one product.
type Card struct {
	cfg      CardConfig
	index    int
	inBasket bool
}

// NewCard creates a card.
func NewCard(cfg CardConfig) (*Card, error) {
	if err := validateConfig("card", cfg); err != nil {
		return nil, err
	}
	return &Card{cfg: cfg}, nil
}

// SetIndex sets the basket row number.
func (c *Card) SetIndex(i int) { c.index = i }

// SetInBasket marks the previewed product as already bought.
func (c *Card) SetInBasket(v bool) { c.inBasket = v }

// Click runs the card's action.
func (c *Card) Click(ctx context.Context) error {
	return c.cfg.OnClick(ctx)
}

// Render returns the card for p.
func (c *Card) Render(p model.Product) CardView {
	v := CardView{
		Variant:  c.cfg.Variant,
		ID:       p.ID,
		Title:    p.Title,
		Price:    FormatPrice(p.Price),
		Category: p.Category,
	}

	switch c.cfg.Variant {
	case CardCatalog:
		v.Image = p.Image
	case CardPreview:
		v.Image = p.Image
		v.Description = p.Description
		v.Button = Button{Label: LabelBuy}
		if !p.ForSale() {
			v.Button = Button{Label: LabelNotForSale, Disabled: true}
		} else if c.inBasket {
			v.Button = Button{Label: LabelInBasket, Disabled: true}
		}
	case CardBasket:
		v.Index = c.index
		v.Category = ""
		v.Button = Button{Label: LabelDelete}
	}
	return v
}
