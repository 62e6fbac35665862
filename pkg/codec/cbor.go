package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/resp"
)

// encMode is the CBOR encoder mode for stored values.
// Configured for deterministic encoding so identical values produce
// byte-identical field contents.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for stored values.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient decoding: values written by newer library versions may carry
	// extra map keys.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// CBOR returns a codec that stores T as a CBOR document in a bulk string.
// CBOR is more compact than JSON and preserves []byte fields without
// base64 detours. Encode fails for values cbor cannot marshal.
func CBOR[T any]() Codec[T] {
	return cborCodec[T]{}
}

type cborCodec[T any] struct{}

func (cborCodec[T]) Encode(v T) (resp.Value, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return resp.Value{}, err
	}
	return resp.BytesValue(data), nil
}

func (cborCodec[T]) Decode(v resp.Value) (T, bool) {
	var out T
	if v.Type() != resp.BulkString {
		return out, false
	}
	if err := decMode.Unmarshal(v.Bytes(), &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}
