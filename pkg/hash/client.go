package hash

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/resp"

	"github.com/hashkit-io/hashkit-go/pkg/log"
	"github.com/hashkit-io/hashkit-go/pkg/transport"
)

// Command-layer errors.
var (
	// ErrNoFields indicates a bulk operation was called with no fields.
	ErrNoFields = errors.New("no fields specified")
)

// ReplyError is an error reply from the store (for example WRONGTYPE when
// the key holds a different data type). The status line is preserved
// verbatim.
type ReplyError struct {
	Status string
}

func (e *ReplyError) Error() string {
	return e.Status
}

// Client issues hash commands over a CommandTransport.
//
// Client itself holds no mutable state; it is safe for concurrent use to
// the extent the underlying transport is.
type Client struct {
	t      transport.CommandTransport
	logger log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger receiving command-layer events.
func WithLogger(l log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client over the given transport.
func NewClient(t transport.CommandTransport, opts ...Option) *Client {
	c := &Client{
		t:      t,
		logger: log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one command round trip and maps error replies to ReplyError.
// Transport failures propagate unmodified.
func (c *Client) do(ctx context.Context, name, key string, extra ...resp.Value) (resp.Value, error) {
	args := make([]resp.Value, 0, 2+len(extra))
	args = append(args, resp.StringValue(name), resp.StringValue(key))
	args = append(args, extra...)

	start := time.Now()
	reply, err := c.t.Do(ctx, args...)
	if err != nil {
		return resp.Value{}, err
	}

	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Layer:     log.LayerCommand,
		Category:  log.CategoryCommand,
		Command: &log.CommandEvent{
			Name:      name,
			Key:       key,
			ArgCount:  len(args),
			ReplyType: reply.Type().String(),
			Elapsed:   time.Since(start),
		},
	})

	if replyErr := reply.Error(); replyErr != nil {
		return resp.Value{}, &ReplyError{Status: replyErr.Error()}
	}
	return reply, nil
}

// Del removes the given fields. It returns the number of fields actually
// removed; fields that did not exist are not counted.
func (c *Client) Del(ctx context.Context, key string, fields ...string) (int64, error) {
	if len(fields) == 0 {
		return 0, ErrNoFields
	}
	reply, err := c.do(ctx, "HDEL", key, fieldArgs(fields)...)
	if err != nil {
		return 0, err
	}
	return int64(reply.Integer()), nil
}

// Exists reports whether the field exists in the hash.
func (c *Client) Exists(ctx context.Context, key, field string) (bool, error) {
	reply, err := c.do(ctx, "HEXISTS", key, resp.StringValue(field))
	if err != nil {
		return false, err
	}
	return reply.Integer() == 1, nil
}

// Len returns the number of fields in the hash. A missing key has length 0.
func (c *Client) Len(ctx context.Context, key string) (int64, error) {
	reply, err := c.do(ctx, "HLEN", key)
	if err != nil {
		return 0, err
	}
	return int64(reply.Integer()), nil
}

// StrLen returns the length in bytes of the field's stored value, or 0 when
// the field does not exist.
func (c *Client) StrLen(ctx context.Context, key, field string) (int64, error) {
	reply, err := c.do(ctx, "HSTRLEN", key, resp.StringValue(field))
	if err != nil {
		return 0, err
	}
	return int64(reply.Integer()), nil
}

// Keys returns all field names of the hash. The order is the store's
// internal order; a missing key yields an empty slice.
func (c *Client) Keys(ctx context.Context, key string) ([]string, error) {
	reply, err := c.do(ctx, "HKEYS", key)
	if err != nil {
		return nil, err
	}
	arr := reply.Array()
	out := make([]string, len(arr))
	for i, v := range arr {
		out[i] = v.String()
	}
	return out, nil
}

// IncrBy increments the integer value of a field by delta and returns the
// new value. A missing field behaves as if it held 0.
func (c *Client) IncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	reply, err := c.do(ctx, "HINCRBY", key,
		resp.StringValue(field), resp.StringValue(strconv.FormatInt(delta, 10)))
	if err != nil {
		return 0, err
	}
	return int64(reply.Integer()), nil
}

// IncrByFloat increments the float value of a field by delta and returns
// the new value. A missing field behaves as if it held 0.
func (c *Client) IncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	reply, err := c.do(ctx, "HINCRBYFLOAT", key,
		resp.StringValue(field), resp.StringValue(strconv.FormatFloat(delta, 'g', -1, 64)))
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(reply.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed HINCRBYFLOAT reply %q: %w", reply.String(), err)
	}
	return f, nil
}

// fieldArgs converts field names to wire arguments.
func fieldArgs(fields []string) []resp.Value {
	out := make([]resp.Value, len(fields))
	for i, f := range fields {
		out[i] = resp.StringValue(f)
	}
	return out
}
