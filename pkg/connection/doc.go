// Package connection provides the redial policy around a transport.
//
// The command layer never retries: a transport failure propagates to the
// caller unmodified. What this package adds is recovery between commands:
// Transport wraps a dial function and lazily re-establishes the connection
// on the next call after a loss, pacing attempts with exponential backoff
// and jitter.
//
// The failed command itself is never replayed; at-most-once submission is
// preserved.
package connection
