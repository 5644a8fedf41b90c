package mission

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Opt is a value that may be unknown. The zero value is Unknown.
//
// It replaces the "N/A" and "" placeholders the source pages use for
// missing node, tier and bonus fields.
type Opt[T comparable] struct {
	v     T
	known bool
}

// Known wraps a value.
func Known[T comparable](v T) Opt[T] { return Opt[T]{v: v, known: true} }

// Unknown returns the empty Opt.
func Unknown[T comparable]() Opt[T] { return Opt[T]{} }

// Get returns the value and whether it is known.
func (o Opt[T]) Get() (T, bool) { return o.v, o.known }

// IsKnown reports whether a value is present.
func (o Opt[T]) IsKnown() bool { return o.known }

// OrElse returns the value, or def when unknown.
func (o Opt[T]) OrElse(def T) T {
	if o.known {
		return o.v
	}
	return def
}

func (o Opt[T]) String() string {
	if !o.known {
		return "N/A"
	}
	return fmt.Sprint(o.v)
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.known {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Known(v)
	return nil
}
