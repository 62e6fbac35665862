// Package transport provides the wire transport for the hash command layer.
//
// The transport layer handles:
//   - TCP (optionally TLS) connections to the store
//   - RESP serialization of commands and replies
//   - Strict request/reply pairing: round trips on one connection are
//     serialized, so reply N always corresponds to request N
//   - Optional keep-alive pings on idle connections
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      Typed hash commands       │
//	├────────────────────────────────┤
//	│      RESP values               │
//	├────────────────────────────────┤
//	│      TLS (optional)            │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// Everything above this package operates on already-received resp.Values;
// timeouts, reconnection and retry policy live here and in package
// connection, never in the command layer.
package transport
