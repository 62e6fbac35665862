package transport

import (
	"context"

	"github.com/tidwall/resp"
)

// CommandTransport is the sole primitive the command layer depends on.
// Implemented by Conn, by connection.Transport (auto-redial), and by test
// doubles.
type CommandTransport interface {
	// Do submits one command and returns its raw reply. The first argument
	// is the command name; every argument must render as a bulk string.
	// Exactly one reply corresponds to exactly one request, delivered in
	// submission order. Error replies from the store are returned as a
	// resp.Value of type Error, not as a Go error; the Go error is
	// reserved for transport failures.
	Do(ctx context.Context, args ...resp.Value) (resp.Value, error)

	// Close releases the underlying connection. Subsequent Do calls fail
	// with ErrConnectionClosed.
	Close() error
}
