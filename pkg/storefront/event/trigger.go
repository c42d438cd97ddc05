package event

import "context"

// Fields is a mergeable payload, typically form or click context.
type Fields map[string]any

// Extractor derives a payload from the value a trigger is invoked with.
type Extractor func(source any) any

// TriggerFunc emits a fixed event. Hand it to a collaborator (a click
// action, a form field) so that it can announce something without knowing
// the broker.
type TriggerFunc func(ctx context.Context, source any) error

// Trigger returns a function that emits name when called.
//
// The emitted payload is:
//   - source, when extract is nil or returns nil
//   - the merge of source and extract(source), when both are Fields
//     (extracted values win on conflicts)
//   - extract(source) otherwise
func (b *Broker) Trigger(name string, extract Extractor) (TriggerFunc, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := b.checkKnown(name); err != nil {
		return nil, err
	}

	return func(ctx context.Context, source any) error {
		return b.Emit(ctx, name, triggerPayload(source, extract))
	}, nil
}

// MustTrigger is like Trigger but panics on error. Use it while wiring
// components at startup.
func (b *Broker) MustTrigger(name string, extract Extractor) TriggerFunc {
	fn, err := b.Trigger(name, extract)
	if err != nil {
		panic(err)
	}
	return fn
}

func triggerPayload(source any, extract Extractor) any {
	if extract == nil {
		return source
	}
	extracted := extract(source)
	if extracted == nil {
		return source
	}

	base, baseOK := asFields(source)
	over, overOK := asFields(extracted)
	if !baseOK || !overOK {
		return extracted
	}

	merged := make(Fields, len(base)+len(over))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range over {
		merged[k] = v
	}
	return merged
}

func asFields(v any) (Fields, bool) {
	switch f := v.(type) {
	case Fields:
		return f, true
	case map[string]any:
		return Fields(f), true
	}
	return nil, false
}
