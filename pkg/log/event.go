package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the server address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Command     *CommandEvent     `cbor:"10,keyasint,omitempty"` // Command layer
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"` // Connection state
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming reply.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing request.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the RESP stream layer (raw wire values).
	LayerTransport Layer = 0
	// LayerCommand is the typed command layer.
	LayerCommand Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerCommand:
		return "COMMAND"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCommand indicates a command round trip.
	CategoryCommand Category = 0
	// CategoryState indicates a connection state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCommand:
		return "COMMAND"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CommandEvent captures one command round trip.
type CommandEvent struct {
	// Name is the wire command name (HGET, HSCAN, ...).
	Name string `cbor:"1,keyasint"`

	// Key is the hash key the command addressed, when it has one.
	Key string `cbor:"2,keyasint,omitempty"`

	// ArgCount is the number of wire arguments, including the name.
	ArgCount int `cbor:"3,keyasint"`

	// ReplyType names the RESP type of the reply (Integer, BulkString, ...).
	// Empty for outgoing request events.
	ReplyType string `cbor:"4,keyasint,omitempty"`

	// Elapsed is the round-trip duration. Set on reply events only.
	// Stored as nanoseconds.
	Elapsed time.Duration `cbor:"5,keyasint,omitempty"`
}

// StateChangeEvent captures connection lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
