package hash_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/resp"

	"github.com/hashkit-io/hashkit-go/pkg/codec"
	"github.com/hashkit-io/hashkit-go/pkg/hash"
)

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newClient(t)
	h := hash.Over(c, codec.String)

	created, err := h.Set(context.Background(), "h", "name", "ada")
	require.NoError(t, err)
	assert.True(t, created)

	got, err := h.Get(context.Background(), "h", "name")
	require.NoError(t, err)
	assert.Equal(t, codec.Some("ada"), got)

	created, err = h.Set(context.Background(), "h", "name", "grace")
	require.NoError(t, err)
	assert.False(t, created, "overwrite reports not created")

	got, err = h.Get(context.Background(), "h", "name")
	require.NoError(t, err)
	assert.Equal(t, codec.Some("grace"), got)
}

func TestGetMissing(t *testing.T) {
	c, store := newClient(t)
	h := hash.Over(c, codec.String)
	store.Seed("h", "a", "1")

	got, err := h.Get(context.Background(), "h", "nope")
	require.NoError(t, err)
	assert.False(t, got.Present)

	got, err = h.Get(context.Background(), "missing-key", "a")
	require.NoError(t, err)
	assert.False(t, got.Present)
}

func TestGetConversionMiss(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "name", "world")
	h := hash.Over(c, codec.Int64)

	got, err := h.Get(context.Background(), "h", "name")
	require.NoError(t, err)
	assert.False(t, got.Present, "non-numeric value is absent through Int64")

	// The stored value is untouched.
	raw, err := hash.Over(c, codec.String).Get(context.Background(), "h", "name")
	require.NoError(t, err)
	assert.Equal(t, codec.Some("world"), raw)
}

func TestMGetOrder(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "a", "1", "b", "2", "c", "3")
	h := hash.Over(c, codec.Int64)

	// Request order, not storage order, and holes where fields are absent.
	got, err := h.MGet(context.Background(), "h", "c", "ghost", "a")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, codec.Some[int64](3), got[0])
	assert.False(t, got[1].Present)
	assert.Equal(t, codec.Some[int64](1), got[2])
}

func TestMGetMissingKey(t *testing.T) {
	c, _ := newClient(t)
	h := hash.Over(c, codec.String)

	got, err := h.MGet(context.Background(), "missing", "a", "b")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].Present)
	assert.False(t, got[1].Present)
}

func TestMGetNoFields(t *testing.T) {
	c, _ := newClient(t)
	h := hash.Over(c, codec.String)

	_, err := h.MGet(context.Background(), "h")
	assert.ErrorIs(t, err, hash.ErrNoFields)
}

func TestGetAll(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "hits", "12", "name", "ada")
	h := hash.Over(c, codec.Int64)

	got, err := h.GetAll(context.Background(), "h")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, codec.Some[int64](12), got["hits"])
	assert.False(t, got["name"].Present, "unconvertible field keeps its entry")
}

func TestGetAllMissingKey(t *testing.T) {
	c, _ := newClient(t)
	h := hash.Over(c, codec.String)

	got, err := h.GetAll(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetNX(t *testing.T) {
	c, _ := newClient(t)
	h := hash.Over(c, codec.String)

	stored, err := h.SetNX(context.Background(), "h", "a", "first")
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = h.SetNX(context.Background(), "h", "a", "second")
	require.NoError(t, err)
	assert.False(t, stored)

	got, err := h.Get(context.Background(), "h", "a")
	require.NoError(t, err)
	assert.Equal(t, codec.Some("first"), got, "existing value untouched")
}

func TestMSet(t *testing.T) {
	c, _ := newClient(t)
	h := hash.Over(c, codec.Int64)

	err := h.MSet(context.Background(), "h", map[string]int64{"a": 1, "b": 2})
	require.NoError(t, err)

	got, err := h.MGet(context.Background(), "h", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, codec.Some[int64](1), got[0])
	assert.Equal(t, codec.Some[int64](2), got[1])
}

func TestMSetNoFields(t *testing.T) {
	c, _ := newClient(t)
	h := hash.Over(c, codec.String)

	err := h.MSet(context.Background(), "h", nil)
	assert.ErrorIs(t, err, hash.ErrNoFields)
}

func TestVals(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "a", "1", "b", "2")
	h := hash.Over(c, codec.Int64)

	got, err := h.Vals(context.Background(), "h")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, codec.Some[int64](1), got[0])
	assert.Equal(t, codec.Some[int64](2), got[1])
}

// failEncodeCodec fails every Encode, to prove nothing reaches the store.
type failEncodeCodec struct{}

func (failEncodeCodec) Encode(string) (resp.Value, error) {
	return resp.Value{}, assert.AnError
}

func (failEncodeCodec) Decode(resp.Value) (string, bool) {
	return "", false
}

func TestSetEncodeFailureSendsNothing(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "a", "old")
	h := hash.Over(c, codec.Codec[string](failEncodeCodec{}))

	_, err := h.Set(context.Background(), "h", "a", "new")
	assert.ErrorIs(t, err, assert.AnError)

	got, err := hash.Over(c, codec.String).Get(context.Background(), "h", "a")
	require.NoError(t, err)
	assert.Equal(t, codec.Some("old"), got, "store never saw the request")
}

func TestMSetEncodeFailureIsAtomic(t *testing.T) {
	c, store := newClient(t)
	h := hash.Over(c, codec.Codec[string](failEncodeCodec{}))

	err := h.MSet(context.Background(), "h", map[string]string{"a": "1", "b": "2"})
	assert.ErrorIs(t, err, assert.AnError)

	n, err := hash.NewClient(store).Len(context.Background(), "h")
	require.NoError(t, err)
	assert.Zero(t, n, "no partial write")
}

func TestTypedViewsShareStore(t *testing.T) {
	c, _ := newClient(t)
	ints := hash.Over(c, codec.Int64)
	strs := hash.Over(c, codec.String)

	_, err := ints.Set(context.Background(), "h", "n", 42)
	require.NoError(t, err)

	got, err := strs.Get(context.Background(), "h", "n")
	require.NoError(t, err)
	assert.Equal(t, codec.Some("42"), got)
}
