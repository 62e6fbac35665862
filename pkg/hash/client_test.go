package hash_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashkit-io/hashkit-go/internal/hashtest"
	"github.com/hashkit-io/hashkit-go/pkg/hash"
)

func newClient(t *testing.T) (*hash.Client, *hashtest.Store) {
	t.Helper()
	store := hashtest.New()
	return hash.NewClient(store), store
}

func TestDel(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "a", "1", "b", "2", "c", "3")

	n, err := c.Del(context.Background(), "h", "a", "c", "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	remaining, err := c.Keys(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, remaining)
}

func TestDelMissingKey(t *testing.T) {
	c, _ := newClient(t)

	n, err := c.Del(context.Background(), "nothing", "a")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelNoFields(t *testing.T) {
	c, _ := newClient(t)

	_, err := c.Del(context.Background(), "h")
	assert.ErrorIs(t, err, hash.ErrNoFields)
}

func TestDelLastFieldRemovesKey(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "only", "1")

	_, err := c.Del(context.Background(), "h", "only")
	require.NoError(t, err)

	n, err := c.Len(context.Background(), "h")
	require.NoError(t, err)
	assert.Zero(t, n, "empty hash behaves like a missing key")
}

func TestExists(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "a", "1")

	ok, err := c.Exists(context.Background(), "h", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(context.Background(), "h", "b")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Exists(context.Background(), "missing", "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLen(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "a", "1", "b", "2")

	n, err := c.Len(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = c.Len(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStrLen(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "a", "hello")

	n, err := c.StrLen(context.Background(), "h", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = c.StrLen(context.Background(), "h", "missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestKeysOrder(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "first", "1", "second", "2", "third", "3")

	keys, err := c.Keys(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, keys)
}

func TestKeysMissingKey(t *testing.T) {
	c, _ := newClient(t)

	keys, err := c.Keys(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestIncrBy(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "hits", "10")

	n, err := c.IncrBy(context.Background(), "h", "hits", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)

	n, err = c.IncrBy(context.Background(), "h", "hits", -20)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), n)
}

func TestIncrByMissingFieldStartsAtZero(t *testing.T) {
	c, _ := newClient(t)

	n, err := c.IncrBy(context.Background(), "h", "fresh", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	// The field now exists with the decimal form of the result.
	length, err := c.StrLen(context.Background(), "h", "fresh")
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)
}

func TestIncrByNonNumeric(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "name", "ada")

	_, err := c.IncrBy(context.Background(), "h", "name", 1)
	var replyErr *hash.ReplyError
	require.ErrorAs(t, err, &replyErr)
	assert.Contains(t, replyErr.Status, "not an integer")
}

func TestIncrByFloat(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "ratio", "10.5")

	f, err := c.IncrByFloat(context.Background(), "h", "ratio", 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 10.6, f, 1e-9)
}

func TestTransportFailurePropagatesUnmodified(t *testing.T) {
	c, store := newClient(t)
	store.Seed("h", "a", "1")

	boom := errors.New("connection reset")
	store.FailNext(boom)

	_, err := c.Len(context.Background(), "h")
	assert.ErrorIs(t, err, boom)

	// No retry happened: the injected failure consumed exactly one call.
	n, err := c.Len(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
