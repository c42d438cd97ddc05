package view

import (
	"context"

	"github.com/randalmurphal/storefront/pkg/storefront/events"
)

// ModalConfig configures the Modal.
type ModalConfig struct {
	Events Broker `validate:"required"`
}

// ModalView is a rendered modal. Content is the snapshot of the component
// shown inside (CardView, BasketView, FormView or SuccessView).
type ModalView struct {
	Open    bool
	Content any
}

// Modal is the single modal container. Opening it emits modal:open and
// closing it emits modal:close.
type Modal struct {
	events  Broker
	open    bool
	content any
}

// NewModal creates a closed modal.
func NewModal(cfg ModalConfig) (*Modal, error) {
	if err := validateConfig("modal", cfg); err != nil {
		return nil, err
	}
	return &Modal{events: cfg.Events}, nil
}

// Open shows content, replacing whatever was shown, and emits modal:open.
func (m *Modal) Open(ctx context.Context, content any) error {
	m.content = content
	m.open = true
	return m.events.Emit(ctx, events.ModalOpen, nil)
}

// Close hides the modal and emits modal:close. Closing a closed modal is
// a no-op.
func (m *Modal) Close(ctx context.Context) error {
	if !m.open {
		return nil
	}
	m.open = false
	m.content = nil
	return m.events.Emit(ctx, events.ModalClose, nil)
}

// SetContent replaces what an open modal shows without emitting.
// It does nothing while the modal is closed.
func (m *Modal) SetContent(content any) {
	if m.open {
		m.content = content
	}
}

// Content returns what the modal shows, or nil when closed.
func (m *Modal) Content() any { return m.content }

// IsOpen reports whether the modal is shown.
func (m *Modal) IsOpen() bool { return m.open }

// Render returns the modal snapshot.
func (m *Modal) Render() ModalView {
	return ModalView{Open: m.open, Content: m.content}
}
