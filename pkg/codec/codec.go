package codec

import (
	"github.com/tidwall/resp"
)

// Codec converts values of type T to and from their RESP wire representation.
//
// Decode must be total: it reports false for any value it cannot convert and
// never panics. Encode may fail for values of T that have no wire
// representation; such failures happen before any request is sent.
type Codec[T any] interface {
	// Encode produces the wire argument for v. The returned value must
	// render as a bulk string, integer, or simple string.
	Encode(v T) (resp.Value, error)

	// Decode converts a non-null wire value to T. The second result is
	// false when the value's runtime representation is not compatible
	// with T.
	Decode(v resp.Value) (T, bool)
}

// Maybe holds a decoded value or marks it absent. Absence covers both "field
// did not exist" and "value could not be converted"; the two are
// intentionally indistinguishable.
type Maybe[T any] struct {
	Value   T
	Present bool
}

// Some returns a present Maybe holding v.
func Some[T any](v T) Maybe[T] {
	return Maybe[T]{Value: v, Present: true}
}

// None returns an absent Maybe.
func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

// Or returns the held value, or fallback when absent.
func (m Maybe[T]) Or(fallback T) T {
	if m.Present {
		return m.Value
	}
	return fallback
}

// Decode converts one wire value to a Maybe. Null values and conversion
// failures both yield an absent result; decoding is atomic per element.
func Decode[T any](cd Codec[T], v resp.Value) Maybe[T] {
	if v.IsNull() {
		return None[T]()
	}
	val, ok := cd.Decode(v)
	if !ok {
		return None[T]()
	}
	return Some(val)
}

// DecodeSlice converts a sequence of wire values element-wise, producing one
// slot per input value in input order.
func DecodeSlice[T any](cd Codec[T], vals []resp.Value) []Maybe[T] {
	out := make([]Maybe[T], len(vals))
	for i, v := range vals {
		out[i] = Decode(cd, v)
	}
	return out
}

// DecodeMap converts a flat field/value pair sequence, as returned by HGETALL
// and HSCAN, into a map keyed by field name. A field whose value cannot be
// converted keeps its map entry with an absent value; it is never dropped.
// A trailing field with no value element is ignored.
func DecodeMap[T any](cd Codec[T], pairs []resp.Value) map[string]Maybe[T] {
	out := make(map[string]Maybe[T], len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[pairs[i].String()] = Decode(cd, pairs[i+1])
	}
	return out
}
