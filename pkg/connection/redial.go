package connection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tidwall/resp"

	"github.com/hashkit-io/hashkit-go/pkg/transport"
)

// Redial errors.
var (
	// ErrClosed indicates the transport has been closed.
	ErrClosed = errors.New("redial transport closed")
)

// State represents the redial transport's connection state.
type State uint8

const (
	// StateDisconnected indicates no active connection.
	StateDisconnected State = iota

	// StateConnecting indicates a dial attempt is in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected

	// StateClosed indicates the transport has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// DialFunc establishes one connection to the store.
type DialFunc func(ctx context.Context) (transport.CommandTransport, error)

// Transport is a CommandTransport that redials between commands.
//
// A command that hits a transport failure still fails; the error propagates
// unmodified and the command is never replayed. The failure drops the
// underlying connection; the next Do call dials a fresh one, waiting out the
// backoff delay first when previous attempts failed.
type Transport struct {
	mu      sync.Mutex
	dial    DialFunc
	backoff *Backoff
	conn    transport.CommandTransport
	state   State
	pending []stateTransition

	onStateChange func(oldState, newState State)
}

type stateTransition struct {
	from, to State
}

// TransportOption configures a redial Transport.
type TransportOption func(*Transport)

// WithBackoff replaces the default backoff calculator.
func WithBackoff(b *Backoff) TransportOption {
	return func(t *Transport) {
		t.backoff = b
	}
}

// WithStateChange sets a callback invoked on every state transition.
// Transitions are delivered in order, after the fact, outside the
// transport's lock; the callback may call back into the Transport.
func WithStateChange(fn func(oldState, newState State)) TransportOption {
	return func(t *Transport) {
		t.onStateChange = fn
	}
}

// NewTransport creates a redialing transport. Dialing is lazy: no
// connection is made until the first Do call.
func NewTransport(dial DialFunc, opts ...TransportOption) *Transport {
	t := &Transport{
		dial:    dial,
		backoff: NewBackoff(),
		state:   StateDisconnected,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the current connection state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Do submits one command, dialing first when no connection is live.
// Round trips are serialized; the reply always belongs to the request.
func (t *Transport) Do(ctx context.Context, args ...resp.Value) (resp.Value, error) {
	reply, err := t.roundTrip(ctx, args...)
	t.notifyStateChanges()
	return reply, err
}

func (t *Transport) roundTrip(ctx context.Context, args ...resp.Value) (resp.Value, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateClosed {
		return resp.Value{}, ErrClosed
	}

	if t.conn == nil {
		if err := t.connectLocked(ctx); err != nil {
			return resp.Value{}, err
		}
	}

	reply, err := t.conn.Do(ctx, args...)
	if err != nil {
		// The connection is suspect; drop it so the next call redials.
		// The command is not replayed.
		t.conn.Close()
		t.conn = nil
		t.setStateLocked(StateDisconnected)
		return resp.Value{}, err
	}

	return reply, nil
}

// connectLocked dials a new connection, waiting out the backoff delay when
// earlier attempts failed. Caller holds t.mu.
func (t *Transport) connectLocked(ctx context.Context) error {
	if t.backoff.Attempts() > 0 {
		delay := t.backoff.Next()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	t.setStateLocked(StateConnecting)

	conn, err := t.dial(ctx)
	if err != nil {
		// Charge the failed attempt so the next call waits.
		if t.backoff.Attempts() == 0 {
			t.backoff.Next()
		}
		t.setStateLocked(StateDisconnected)
		return err
	}

	t.conn = conn
	t.backoff.Reset()
	t.setStateLocked(StateConnected)
	return nil
}

// Close closes the transport and any live connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	closed := t.state == StateClosed
	var err error
	if !closed {
		if t.conn != nil {
			err = t.conn.Close()
			t.conn = nil
		}
		t.setStateLocked(StateClosed)
	}
	t.mu.Unlock()

	if closed {
		return nil
	}
	t.notifyStateChanges()
	return err
}

// setStateLocked transitions state and queues the callback notification.
// Caller holds t.mu; the callback fires later, from notifyStateChanges,
// once the lock is released.
func (t *Transport) setStateLocked(newState State) {
	if t.state == newState {
		return
	}
	oldState := t.state
	t.state = newState
	if t.onStateChange != nil {
		t.pending = append(t.pending, stateTransition{from: oldState, to: newState})
	}
}

// notifyStateChanges drains queued transitions and fires the callback for
// each, in transition order, without holding t.mu.
func (t *Transport) notifyStateChanges() {
	if t.onStateChange == nil {
		return
	}
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, tr := range pending {
		t.onStateChange(tr.from, tr.to)
	}
}

// Compile-time interface satisfaction check.
var _ transport.CommandTransport = (*Transport)(nil)
