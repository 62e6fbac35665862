// Package log provides structured protocol event logging for the client.
//
// Events are captured at two layers: the transport layer (raw RESP traffic)
// and the command layer (decoded hash commands with timing). Applications
// receive events through the Logger interface and decide where they go:
// FileLogger writes a compact CBOR stream suitable for later analysis with
// Reader, SlogAdapter forwards to log/slog for development, and MultiLogger
// fans out to several sinks at once.
//
// Logging never disrupts the client: sinks swallow their own errors and
// NoopLogger discards everything at zero cost.
package log
