package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/resp"

	"github.com/hashkit-io/hashkit-go/pkg/log"
)

// Default timeouts applied by Dial when the config leaves them zero.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
)

// Transport errors.
var (
	// ErrConnectionClosed indicates the connection has been closed.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrEmptyCommand indicates Do was called without a command name.
	ErrEmptyCommand = errors.New("empty command")

	// ErrNullArgument indicates a null value was passed as a wire argument.
	ErrNullArgument = errors.New("null wire argument")
)

// Config configures a connection to the store.
type Config struct {
	// Addr is the store address (host:port).
	Addr string

	// ConnectTimeout bounds the dial (and TLS handshake, if any).
	ConnectTimeout time.Duration

	// ReadTimeout bounds waiting for a reply when the context carries no
	// deadline of its own.
	ReadTimeout time.Duration

	// WriteTimeout bounds sending a request.
	WriteTimeout time.Duration

	// TLSConfig enables TLS when non-nil.
	TLSConfig *tls.Config

	// KeepAlive configures idle-connection pings. Zero interval disables.
	KeepAlive KeepAliveConfig

	// Logger receives transport events. Nil disables logging.
	Logger log.Logger
}

// withDefaults returns a copy of the config with zero timeouts filled in.
func (c Config) withDefaults() Config {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return c
}

// Conn is a single connection to the store. It serializes round trips: the
// reply read after a write always belongs to that write. A Conn is safe for
// concurrent use, but concurrent callers queue on the round-trip mutex;
// use one Conn per scan sequence or a redialing wrapper for fan-out.
type Conn struct {
	cfg    Config
	conn   net.Conn
	rd     *resp.Reader
	wr     *resp.Writer
	logger log.Logger
	id     string

	mu        sync.Mutex // serializes round trips
	closeOnce sync.Once
	closeCh   chan struct{}

	keepalive *keepAlive
}

// Dial connects to the store described by cfg.
func Dial(ctx context.Context, cfg Config) (*Conn, error) {
	cfg = cfg.withDefaults()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	netConn, err := dialer.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	if cfg.TLSConfig != nil {
		tlsConn := tls.Client(netConn, cfg.TLSConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			netConn.Close()
			return nil, fmt.Errorf("TLS handshake failed: %w", err)
		}
		netConn = tlsConn
	}

	c := &Conn{
		cfg:     cfg,
		conn:    netConn,
		rd:      resp.NewReader(netConn),
		wr:      resp.NewWriter(netConn),
		logger:  log.OrNoop(cfg.Logger),
		id:      uuid.NewString(),
		closeCh: make(chan struct{}),
	}

	c.logState("", "CONNECTED", "")

	if cfg.KeepAlive.Interval > 0 {
		c.keepalive = newKeepAlive(c, cfg.KeepAlive)
		c.keepalive.start()
	}

	return c, nil
}

// ID returns the connection's unique identifier, as used in log events.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Do submits one command and returns its raw reply.
//
// Every argument is lowered to a bulk string on the wire. The reply is
// returned as-is, including Error-typed values; mapping those to Go errors
// is the command layer's concern. A read failure leaves the RESP stream out
// of sync, so the connection is closed before the error is returned.
func (c *Conn) Do(ctx context.Context, args ...resp.Value) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, ErrEmptyCommand
	}

	out := make([]resp.Value, len(args))
	for i, a := range args {
		if a.IsNull() {
			return resp.Value{}, ErrNullArgument
		}
		out[i] = asBulk(a)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.closeCh:
		return resp.Value{}, ErrConnectionClosed
	default:
	}

	name := args[0].String()
	start := time.Now()
	c.logCommand(log.DirectionOut, name, len(args), "", 0)

	if c.cfg.WriteTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if err := c.wr.WriteArray(out); err != nil {
		c.logError("write "+name, err)
		c.closeLocked("write failed")
		return resp.Value{}, fmt.Errorf("write command: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetReadDeadline(deadline)
	} else if c.cfg.ReadTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
	reply, _, err := c.rd.ReadValue()
	if err != nil {
		c.logError("read "+name+" reply", err)
		c.closeLocked("read failed")
		return resp.Value{}, fmt.Errorf("read reply: %w", err)
	}

	if c.keepalive != nil {
		c.keepalive.touch()
	}
	c.logCommand(log.DirectionIn, name, len(args), reply.Type().String(), time.Since(start))

	return reply, nil
}

// Ping performs a PING round trip. Used by the keep-alive loop and usable
// directly as a health check.
func (c *Conn) Ping(ctx context.Context) error {
	reply, err := c.Do(ctx, resp.StringValue("PING"))
	if err != nil {
		return err
	}
	if err := reply.Error(); err != nil {
		return err
	}
	return nil
}

// Close closes the connection. Safe to call multiple times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		if c.keepalive != nil {
			c.keepalive.stop()
		}
		err = c.conn.Close()
		c.logState("CONNECTED", "CLOSED", "")
	})
	return err
}

// closeLocked tears down the connection after a stream failure.
// Caller holds c.mu; the keep-alive goroutine is stopped without waiting.
func (c *Conn) closeLocked(reason string) {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		if c.keepalive != nil {
			c.keepalive.stop()
		}
		c.conn.Close()
		c.logState("CONNECTED", "CLOSED", reason)
	})
}

func (c *Conn) logCommand(dir log.Direction, name string, argc int, replyType string, elapsed time.Duration) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Direction:    dir,
		Layer:        log.LayerTransport,
		Category:     log.CategoryCommand,
		RemoteAddr:   c.conn.RemoteAddr().String(),
		Command: &log.CommandEvent{
			Name:      name,
			ArgCount:  argc,
			ReplyType: replyType,
			Elapsed:   elapsed,
		},
	})
}

func (c *Conn) logState(oldState, newState, reason string) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		RemoteAddr:   c.conn.RemoteAddr().String(),
		StateChange: &log.StateChangeEvent{
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (c *Conn) logError(context string, err error) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Direction:    log.DirectionIn,
		Layer:        log.LayerTransport,
		Category:     log.CategoryError,
		RemoteAddr:   c.conn.RemoteAddr().String(),
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: context,
		},
	})
}

// asBulk lowers a wire argument to a bulk string value. Integer and simple
// string arguments are rendered through their textual form; bulk values pass
// through unchanged.
func asBulk(v resp.Value) resp.Value {
	if v.Type() == resp.BulkString {
		return v
	}
	return resp.BytesValue([]byte(v.String()))
}

// Compile-time interface satisfaction check.
var _ CommandTransport = (*Conn)(nil)
