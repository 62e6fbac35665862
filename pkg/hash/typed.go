package hash

import (
	"context"
	"fmt"
	"sort"

	"github.com/tidwall/resp"

	"github.com/hashkit-io/hashkit-go/pkg/codec"
)

// Typed is a view of a Client with one value codec bound. All value-carrying
// commands go through it; the store never sees anything but the codec's wire
// form.
//
// Views are cheap: create as many as you need, one per value type. A Typed
// holds no state beyond the Client and codec references.
type Typed[T any] struct {
	c  *Client
	cd codec.Codec[T]
}

// Over binds a codec to a client.
func Over[T any](c *Client, cd codec.Codec[T]) *Typed[T] {
	return &Typed[T]{c: c, cd: cd}
}

// Client returns the underlying untyped client.
func (t *Typed[T]) Client() *Client {
	return t.c
}

// Get returns the field's value, absent when the field does not exist or its
// stored value cannot be converted to T.
func (t *Typed[T]) Get(ctx context.Context, key, field string) (codec.Maybe[T], error) {
	reply, err := t.c.do(ctx, "HGET", key, resp.StringValue(field))
	if err != nil {
		return codec.None[T](), err
	}
	return codec.Decode(t.cd, reply), nil
}

// MGet returns one slot per requested field, in the order the fields were
// given, regardless of the store's internal order.
func (t *Typed[T]) MGet(ctx context.Context, key string, fields ...string) ([]codec.Maybe[T], error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	reply, err := t.c.do(ctx, "HMGET", key, fieldArgs(fields)...)
	if err != nil {
		return nil, err
	}
	vals := reply.Array()
	if len(vals) != len(fields) {
		return nil, fmt.Errorf("malformed HMGET reply: %d values for %d fields", len(vals), len(fields))
	}
	return codec.DecodeSlice(t.cd, vals), nil
}

// GetAll returns every field of the hash. Fields whose values cannot be
// converted keep their map entry with an absent value. A missing key yields
// an empty map.
func (t *Typed[T]) GetAll(ctx context.Context, key string) (map[string]codec.Maybe[T], error) {
	reply, err := t.c.do(ctx, "HGETALL", key)
	if err != nil {
		return nil, err
	}
	return codec.DecodeMap(t.cd, reply.Array()), nil
}

// Set stores the field's value, creating the field if needed. It returns
// true when the field was newly created, false when an existing value was
// overwritten. Encoding failures surface before any request is sent.
func (t *Typed[T]) Set(ctx context.Context, key, field string, v T) (bool, error) {
	arg, err := t.cd.Encode(v)
	if err != nil {
		return false, fmt.Errorf("encode value for field %q: %w", field, err)
	}
	reply, err := t.c.do(ctx, "HSET", key, resp.StringValue(field), arg)
	if err != nil {
		return false, err
	}
	return reply.Integer() == 1, nil
}

// SetNX stores the field's value only when the field does not yet exist.
// It returns true when the value was stored; an existing field is left
// unchanged and yields false.
func (t *Typed[T]) SetNX(ctx context.Context, key, field string, v T) (bool, error) {
	arg, err := t.cd.Encode(v)
	if err != nil {
		return false, fmt.Errorf("encode value for field %q: %w", field, err)
	}
	reply, err := t.c.do(ctx, "HSETNX", key, resp.StringValue(field), arg)
	if err != nil {
		return false, err
	}
	return reply.Integer() == 1, nil
}

// MSet stores multiple fields in one round trip. All values are encoded
// before anything is sent, so an encoding failure leaves the hash untouched.
// Fields are sent in sorted order to keep the wire form deterministic.
func (t *Typed[T]) MSet(ctx context.Context, key string, fields map[string]T) error {
	if len(fields) == 0 {
		return ErrNoFields
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]resp.Value, 0, 2*len(fields))
	for _, name := range names {
		arg, err := t.cd.Encode(fields[name])
		if err != nil {
			return fmt.Errorf("encode value for field %q: %w", name, err)
		}
		args = append(args, resp.StringValue(name), arg)
	}

	_, err := t.c.do(ctx, "HMSET", key, args...)
	return err
}

// Vals returns every value of the hash in the store's internal order, one
// slot per stored field, absent where conversion fails.
func (t *Typed[T]) Vals(ctx context.Context, key string) ([]codec.Maybe[T], error) {
	reply, err := t.c.do(ctx, "HVALS", key)
	if err != nil {
		return nil, err
	}
	return codec.DecodeSlice(t.cd, reply.Array()), nil
}
