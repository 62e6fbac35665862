// Package hash implements the typed command layer for the store's hash data
// type.
//
// A Client wraps a transport.CommandTransport and exposes the counting and
// field-management commands (HDEL, HEXISTS, HLEN, HSTRLEN, HKEYS, HINCRBY,
// HINCRBYFLOAT). The value-carrying commands are generic: a Typed[T] view
// binds a Client to one codec.Codec[T] and exposes HGET, HMGET, HGETALL,
// HSET, HSETNX, HMSET, HVALS and HSCAN with statically typed results.
//
// # Absence
//
// A missing field and a field whose stored value cannot be converted to T
// both come back as an absent codec.Maybe. Neither is an error; errors are
// reserved for the transport boundary (connection failures, timeouts,
// malformed replies) and for error replies from the store (ReplyError).
//
// # Scanning
//
// HSCAN is a cursor-driven, weakly consistent enumeration. Scanner tracks
// the position token between round trips; position 0 means both "start" and
// "complete". The store may return empty pages mid-scan and may repeat
// fields when the hash is mutated concurrently. Completion is signalled
// only by the cursor returning to 0, never by an empty page.
package hash
