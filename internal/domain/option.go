package domain

import (
	"bytes"
	"encoding/json"
)

// Option holds either a value (Some) or nothing (None).
// JSON: None <-> null or an absent field.
type Option[T any] struct {
	val T
	ok  bool
}

func Some[T any](v T) Option[T] { return Option[T]{val: v, ok: true} }

func None[T any]() Option[T] { return Option[T]{} }

func (o Option[T]) Get() (T, bool) { return o.val, o.ok }

func (o Option[T]) IsSome() bool { return o.ok }

func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.val
	}
	return def
}

func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.val)
}

func (o *Option[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*o = Option[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// NonEmpty maps "" to None.
func NonEmpty(s string) Option[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}
