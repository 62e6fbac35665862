// Package codec converts between untyped RESP wire values and caller-chosen
// Go types.
//
// The store is schema-less: every stored value arrives as a RESP bulk string,
// integer, or status reply. A Codec[T] supplies the conversion in both
// directions for one Go type. The command layer is generic over Codec and
// never inspects concrete types itself.
//
// # Totality
//
// Decoding never fails with an error. A wire value that cannot be converted
// to the requested type yields an absent Maybe, exactly like a field that
// does not exist on the server. Callers must not rely on distinguishing the
// two cases.
//
// Encoding is the opposite: a value with no wire representation (for example
// a struct that cannot be marshaled) fails synchronously, before any request
// is sent.
package codec
