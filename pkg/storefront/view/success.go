package view

import "context"

// SuccessConfig configures the Success screen.
type SuccessConfig struct {
	OnClose Action `validate:"required"`
}

// SuccessView is a rendered success screen.
type SuccessView struct {
	Total string
}

// Success confirms a placed order.
type Success struct {
	onClose Action
	total   float64
}

// NewSuccess creates a success screen.
func NewSuccess(cfg SuccessConfig) (*Success, error) {
	if err := validateConfig("success", cfg); err != nil {
		return nil, err
	}
	return &Success{onClose: cfg.OnClose}, nil
}

// SetTotal sets the charged amount.
func (s *Success) SetTotal(total float64) { s.total = total }

// Close handles the close button.
func (s *Success) Close(ctx context.Context) error {
	return s.onClose(ctx)
}

// Render returns the success snapshot.
func (s *Success) Render() SuccessView {
	return SuccessView{Total: formatAmount(s.total)}
}
