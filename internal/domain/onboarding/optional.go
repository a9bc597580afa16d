package onboarding

import (
	"bytes"

	sonic "github.com/bytedance/sonic"
)

type optionalState uint8

const (
	stateOmitted optionalState = iota
	stateNull
	stateValue
)

// Optional carries a field that may be omitted, explicitly null, or set.
// The zero value is omitted.
type Optional[T any] struct {
	state optionalState
	value T
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{state: stateValue, value: value}
}

func Null[T any]() Optional[T] {
	return Optional[T]{state: stateNull}
}

func (o Optional[T]) IsOmitted() bool { return o.state == stateOmitted }

func (o Optional[T]) IsNull() bool { return o.state == stateNull }

func (o Optional[T]) IsSet() bool { return o.state == stateValue }

// Get returns the value and whether one is set. Omitted and null both report false.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.state == stateValue
}

func (o Optional[T]) OrElse(fallback T) T {
	if o.state == stateValue {
		return o.value
	}
	return fallback
}

func (o Optional[T]) String() string {
	switch o.state {
	case stateNull:
		return "null"
	case stateValue:
		raw, err := sonic.Marshal(o.value)
		if err != nil {
			return "<invalid>"
		}
		return string(raw)
	default:
		return "<omitted>"
	}
}

// MarshalJSON encodes an omitted value as null. Containers that need to drop
// the key check IsOmitted before encoding.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.state != stateValue {
		return []byte("null"), nil
	}
	return sonic.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		var zero T
		o.state = stateNull
		o.value = zero
		return nil
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return err
	}
	o.state = stateValue
	o.value = value
	return nil
}

func isJSONNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
