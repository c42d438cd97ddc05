package event

import (
	"fmt"
	"regexp"
)

// KeyKind tells how a Key is matched against emitted names.
type KeyKind int

const (
	// KindExact matches by literal equality.
	KindExact KeyKind = iota

	// KindPattern matches with a regular expression.
	KindPattern

	// KindAll matches every emitted name.
	KindAll
)

// String returns the kind name.
func (k KeyKind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindPattern:
		return "pattern"
	case KindAll:
		return "all"
	default:
		return "unknown"
	}
}

// Key identifies a subscription. The kind is fixed by the constructor used,
// never inferred from the text: Exact("*") is a literal name, not a
// wildcard, and Exact("^order\\.") never behaves like a pattern.
//
// Two keys are the same subscription key when their kind and text match,
// so patterns compiled separately from the same expression share listeners.
type Key struct {
	kind KeyKind
	text string
	re   *regexp.Regexp
}

// Exact returns a key matching name literally.
func Exact(name string) Key {
	return Key{kind: KindExact, text: name}
}

// Pattern returns a key matching every name accepted by re.
func Pattern(re *regexp.Regexp) Key {
	if re == nil {
		return Key{kind: KindPattern}
	}
	return Key{kind: KindPattern, text: re.String(), re: re}
}

// CompilePattern compiles expr and returns a pattern key.
func CompilePattern(expr string) (Key, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return Pattern(re), nil
}

// MustPattern is like CompilePattern but panics on an invalid expression.
// Intended for package-level key declarations.
func MustPattern(expr string) Key {
	return Pattern(regexp.MustCompile(expr))
}

// All returns the wildcard key used by OnAll.
func All() Key {
	return Key{kind: KindAll}
}

// Kind returns how the key matches.
func (k Key) Kind() KeyKind {
	return k.kind
}

// Text returns the event name or pattern source. Empty for All().
func (k Key) Text() string {
	return k.text
}

// Match reports whether an emission named name is delivered to this key.
func (k Key) Match(name string) bool {
	switch k.kind {
	case KindExact:
		return k.text == name
	case KindPattern:
		return k.re != nil && k.re.MatchString(name)
	case KindAll:
		return true
	default:
		return false
	}
}

// String returns a printable form such as "exact:basket:changed".
func (k Key) String() string {
	if k.kind == KindAll {
		return "all"
	}
	return k.kind.String() + ":" + k.text
}

func (k Key) validate() error {
	switch k.kind {
	case KindExact:
		if k.text == "" {
			return fmt.Errorf("%w: empty event name", ErrInvalidKey)
		}
	case KindPattern:
		if k.re == nil {
			return fmt.Errorf("%w: nil pattern", ErrInvalidKey)
		}
	case KindAll:
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidKey, k.kind)
	}
	return nil
}
