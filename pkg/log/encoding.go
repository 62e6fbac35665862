package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Events are stored as a CBOR stream: one map per event, integer keys,
// canonical field order. Timestamps keep nanosecond precision. Decoding is
// lenient so readers can process files written by newer versions.
var eventEncMode, eventDecMode = newEventModes()

func newEventModes() (cbor.EncMode, cbor.DecMode) {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("event encoder mode: %v", err))
	}

	dec, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("event decoder mode: %v", err))
	}

	return enc, dec
}

// MarshalEvent encodes one event to its stored CBOR form.
func MarshalEvent(event Event) ([]byte, error) {
	return eventEncMode.Marshal(event)
}

// UnmarshalEvent decodes one event from its stored CBOR form.
func UnmarshalEvent(data []byte) (Event, error) {
	var event Event
	if err := eventDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns a streaming event encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return eventEncMode.NewEncoder(w)
}

// NewDecoder returns a streaming event decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return eventDecMode.NewDecoder(r)
}
