package codec

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/tidwall/resp"
)

// Built-in codecs for the common scalar types. These never fail to encode.
var (
	// String stores values verbatim as bulk strings.
	String Codec[string] = stringCodec{}

	// Bytes stores raw byte slices as bulk strings.
	Bytes Codec[[]byte] = bytesCodec{}

	// Int64 stores values in the decimal form HINCRBY operates on.
	Int64 Codec[int64] = int64Codec{}

	// Float64 stores values in strconv 'g' form. Round-tripping preserves
	// the exact float64 bits, but values written by other clients in a
	// different textual form may compare unequal as strings.
	Float64 Codec[float64] = float64Codec{}

	// Bool stores "1" or "0" and accepts the strconv.ParseBool forms.
	Bool Codec[bool] = boolCodec{}

	// Time stores RFC 3339 timestamps with nanosecond precision.
	// The location is normalized to the encoded offset on decode.
	Time Codec[time.Time] = timeCodec{}
)

// convertible reports whether a wire value carries textual content a scalar
// codec can interpret. Arrays and error replies do not.
func convertible(v resp.Value) bool {
	switch v.Type() {
	case resp.SimpleString, resp.BulkString, resp.Integer:
		return true
	default:
		return false
	}
}

type stringCodec struct{}

func (stringCodec) Encode(v string) (resp.Value, error) {
	return resp.StringValue(v), nil
}

func (stringCodec) Decode(v resp.Value) (string, bool) {
	if !convertible(v) {
		return "", false
	}
	return v.String(), true
}

type bytesCodec struct{}

func (bytesCodec) Encode(v []byte) (resp.Value, error) {
	return resp.BytesValue(v), nil
}

func (bytesCodec) Decode(v resp.Value) ([]byte, bool) {
	if !convertible(v) {
		return nil, false
	}
	return v.Bytes(), true
}

type int64Codec struct{}

func (int64Codec) Encode(v int64) (resp.Value, error) {
	return resp.StringValue(strconv.FormatInt(v, 10)), nil
}

func (int64Codec) Decode(v resp.Value) (int64, bool) {
	if !convertible(v) {
		return 0, false
	}
	if v.Type() == resp.Integer {
		return int64(v.Integer()), true
	}
	n, err := strconv.ParseInt(v.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

type float64Codec struct{}

func (float64Codec) Encode(v float64) (resp.Value, error) {
	return resp.StringValue(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

func (float64Codec) Decode(v resp.Value) (float64, bool) {
	if !convertible(v) {
		return 0, false
	}
	if v.Type() == resp.Integer {
		return float64(v.Integer()), true
	}
	f, err := strconv.ParseFloat(v.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

type boolCodec struct{}

func (boolCodec) Encode(v bool) (resp.Value, error) {
	if v {
		return resp.StringValue("1"), nil
	}
	return resp.StringValue("0"), nil
}

func (boolCodec) Decode(v resp.Value) (bool, bool) {
	if !convertible(v) {
		return false, false
	}
	b, err := strconv.ParseBool(v.String())
	if err != nil {
		return false, false
	}
	return b, true
}

type timeCodec struct{}

func (timeCodec) Encode(v time.Time) (resp.Value, error) {
	return resp.StringValue(v.Format(time.RFC3339Nano)), nil
}

func (timeCodec) Decode(v resp.Value) (time.Time, bool) {
	if !convertible(v) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, v.String())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// JSON returns a codec that stores T as a JSON document in a bulk string.
// Encode fails for values encoding/json cannot marshal.
func JSON[T any]() Codec[T] {
	return jsonCodec[T]{}
}

type jsonCodec[T any] struct{}

func (jsonCodec[T]) Encode(v T) (resp.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return resp.Value{}, err
	}
	return resp.BytesValue(data), nil
}

func (jsonCodec[T]) Decode(v resp.Value) (T, bool) {
	var out T
	if v.Type() != resp.BulkString {
		return out, false
	}
	if err := json.Unmarshal(v.Bytes(), &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}
