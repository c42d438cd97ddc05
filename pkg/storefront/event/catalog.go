package event

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Descriptor documents one event name.
type Descriptor struct {
	// Name is the event name (e.g., "basket:changed").
	Name string `yaml:"name"`

	// Source is the component that emits it (e.g., "model", "view").
	Source string `yaml:"source"`

	// Description explains when the event is emitted and what it carries.
	Description string `yaml:"description"`

	// Tags enable grouping in tooling.
	Tags []string `yaml:"tags"`

	// Deprecated marks the name as deprecated. Emitting it logs a warning.
	Deprecated bool `yaml:"deprecated"`

	// DeprecationMessage explains the deprecation.
	DeprecationMessage string `yaml:"deprecation_message"`

	// Validator optionally checks payloads before dispatch.
	Validator func(payload any) error `yaml:"-"`
}

// Validate runs the descriptor's validator, if any.
func (d *Descriptor) Validate(payload any) error {
	if d.Validator == nil {
		return nil
	}
	return d.Validator(payload)
}

// Catalog is the documented set of event names shared by emitters and
// listeners.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]*Descriptor
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[string]*Descriptor),
	}
}

// Register adds a descriptor, replacing any existing entry with the same name.
func (c *Catalog) Register(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("event name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[d.Name] = d
	return nil
}

// MustRegister adds descriptors, panicking on error.
func (c *Catalog) MustRegister(ds ...*Descriptor) {
	for _, d := range ds {
		if err := c.Register(d); err != nil {
			panic(fmt.Sprintf("failed to register event descriptor: %v", err))
		}
	}
}

// SetValidator attaches a payload validator to a registered name.
// Catalogs loaded from YAML carry no validators; attach them afterwards.
func (c *Catalog) SetValidator(name string, fn func(payload any) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
	d.Validator = fn
	return nil
}

// Get returns the descriptor for name.
func (c *Catalog) Get(name string) (*Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[name]
	return d, ok
}

// Has returns true if name is registered.
func (c *Catalog) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Len returns the number of registered names.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Names returns all registered names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ListBySource returns descriptors emitted by source, sorted by name.
func (c *Catalog) ListBySource(source string) []*Descriptor {
	return c.filter(func(d *Descriptor) bool {
		return d.Source == source
	})
}

// ListByTag returns descriptors carrying tag, sorted by name.
func (c *Catalog) ListByTag(tag string) []*Descriptor {
	return c.filter(func(d *Descriptor) bool {
		return slices.Contains(d.Tags, tag)
	})
}

// Validate checks that name is registered and its payload passes the
// descriptor's validator.
func (c *Catalog) Validate(name string, payload any) error {
	d, ok := c.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
	return d.Validate(payload)
}

// Range iterates over a snapshot of the descriptors in name order.
// Iteration stops when fn returns false.
func (c *Catalog) Range(fn func(*Descriptor) bool) {
	for _, d := range c.filter(func(*Descriptor) bool { return true }) {
		if !fn(d) {
			return
		}
	}
}

func (c *Catalog) filter(keep func(*Descriptor) bool) []*Descriptor {
	c.mu.RLock()
	var out []*Descriptor
	for _, d := range c.entries {
		if keep(d) {
			out = append(out, d)
		}
	}
	c.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Descriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// catalogFile is the YAML layout read by LoadCatalog.
type catalogFile struct {
	Events []*Descriptor `yaml:"events"`
}

// LoadCatalog parses a YAML catalog:
//
//	events:
//	  - name: basket:changed
//	    source: model
//	    description: Basket contents or total changed.
//	    tags: [basket]
func LoadCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := NewCatalog()
	for i, d := range f.Events {
		if err := c.Register(d); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
	}
	return c, nil
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return LoadCatalog(data)
}
