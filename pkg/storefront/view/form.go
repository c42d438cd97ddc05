package view

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/randalmurphal/storefront/pkg/storefront/event"
	"github.com/randalmurphal/storefront/pkg/storefront/events"
)

// FormConfig configures a Form.
type FormConfig struct {
	// Name prefixes the form's events: "<name>.<field>:change" and
	// "<name>:submit".
	Name string `validate:"required"`

	// Fields lists the inputs in display order.
	Fields []string `validate:"required,min=1,dive,required"`

	Events Broker `validate:"required"`
}

// FormView is a rendered form.
type FormView struct {
	Name   string
	Values map[string]string
	Valid  bool
	Errors string
}

// Form is a checkout form. Input emits a field change carrying
// event.Fields{"field": ..., "value": ...}; submit emits the form's submit
// event once the form is valid.
type Form struct {
	name    string
	fields  []string
	changes map[string]event.TriggerFunc
	submit  event.TriggerFunc

	values map[string]string
	valid  bool
	errors string
}

// NewForm creates a form with empty values. A new form is invalid until
// SetValid is called.
func NewForm(cfg FormConfig) (*Form, error) {
	if err := validateConfig("form", cfg); err != nil {
		return nil, err
	}

	f := &Form{
		name:    cfg.Name,
		fields:  slices.Clone(cfg.Fields),
		changes: make(map[string]event.TriggerFunc, len(cfg.Fields)),
		values:  make(map[string]string, len(cfg.Fields)),
	}
	for _, field := range cfg.Fields {
		trigger, err := cfg.Events.Trigger(events.FieldChangeName(cfg.Name, field), fieldExtractor(field))
		if err != nil {
			return nil, fmt.Errorf("form %s: %w", cfg.Name, err)
		}
		f.changes[field] = trigger
		f.values[field] = ""
	}

	submit, err := cfg.Events.Trigger(events.SubmitName(cfg.Name), nil)
	if err != nil {
		return nil, fmt.Errorf("form %s: %w", cfg.Name, err)
	}
	f.submit = submit
	return f, nil
}

func fieldExtractor(field string) event.Extractor {
	return func(any) any {
		return event.Fields{"field": field}
	}
}

// Name returns the form name.
func (f *Form) Name() string { return f.name }

// Input records value for field and emits the field's change event.
func (f *Form) Input(ctx context.Context, field, value string) error {
	trigger, ok := f.changes[field]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, f.name, field)
	}
	f.values[field] = value
	return trigger(ctx, event.Fields{"value": value})
}

// Submit emits the form's submit event. Invalid forms return
// ErrFormInvalid without emitting.
func (f *Form) Submit(ctx context.Context) error {
	if !f.valid {
		return fmt.Errorf("%w: %s", ErrFormInvalid, f.name)
	}
	return f.submit(ctx, nil)
}

// SetValid enables or disables submitting.
func (f *Form) SetValid(v bool) { f.valid = v }

// Valid reports whether the form can be submitted.
func (f *Form) Valid() bool { return f.valid }

// SetErrors sets the displayed error text.
func (f *Form) SetErrors(text string) { f.errors = text }

// Reset sets every field to values[field] (empty when missing) without
// emitting change events.
func (f *Form) Reset(values map[string]string) {
	for _, field := range f.fields {
		f.values[field] = values[field]
	}
}

// Render returns the form snapshot.
func (f *Form) Render() FormView {
	return FormView{
		Name:   f.name,
		Values: maps.Clone(f.values),
		Valid:  f.valid,
		Errors: f.errors,
	}
}
