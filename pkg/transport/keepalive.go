package transport

import (
	"context"
	"sync"
	"time"
)

// Keep-alive defaults.
const (
	// DefaultKeepAliveInterval is the idle time before a PING is sent.
	DefaultKeepAliveInterval = 30 * time.Second

	// DefaultKeepAliveTimeout bounds the PING round trip.
	DefaultKeepAliveTimeout = 5 * time.Second
)

// KeepAliveConfig configures idle-connection liveness checks.
// A PING is issued whenever the connection has been idle for Interval;
// a failed or timed-out PING closes the connection so the redial layer
// can take over.
type KeepAliveConfig struct {
	// Interval is the idle time before a PING. Zero disables keep-alive.
	Interval time.Duration

	// Timeout bounds each PING round trip.
	Timeout time.Duration
}

// DefaultKeepAliveConfig returns the default keep-alive configuration.
func DefaultKeepAliveConfig() KeepAliveConfig {
	return KeepAliveConfig{
		Interval: DefaultKeepAliveInterval,
		Timeout:  DefaultKeepAliveTimeout,
	}
}

// keepAlive pings a connection when it has been idle for the configured
// interval. Regular command traffic counts as liveness and resets the timer.
type keepAlive struct {
	conn *Conn
	cfg  KeepAliveConfig

	mu       sync.Mutex
	lastSeen time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newKeepAlive(conn *Conn, cfg KeepAliveConfig) *keepAlive {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultKeepAliveTimeout
	}
	return &keepAlive{
		conn:     conn,
		cfg:      cfg,
		lastSeen: time.Now(),
		stopCh:   make(chan struct{}),
	}
}

func (k *keepAlive) start() {
	k.wg.Add(1)
	go k.loop()
}

// stop signals the loop to exit. It does not wait: stop may be called from
// Do (which holds the round-trip mutex the loop's Ping would need).
func (k *keepAlive) stop() {
	k.stopOnce.Do(func() {
		close(k.stopCh)
	})
}

// touch records command traffic, deferring the next ping.
func (k *keepAlive) touch() {
	k.mu.Lock()
	k.lastSeen = time.Now()
	k.mu.Unlock()
}

func (k *keepAlive) idle() time.Duration {
	k.mu.Lock()
	defer k.mu.Unlock()
	return time.Since(k.lastSeen)
}

func (k *keepAlive) loop() {
	defer k.wg.Done()

	ticker := time.NewTicker(k.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-k.stopCh:
			return
		case <-ticker.C:
			if k.idle() < k.cfg.Interval {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), k.cfg.Timeout)
			err := k.conn.Ping(ctx)
			cancel()

			if err != nil {
				// The connection is gone; Do has already closed it
				// on a stream error, this covers timeouts.
				k.conn.Close()
				return
			}
			k.touch()
		}
	}
}
