package log

// MultiLogger fans each event out to several sinks, in registration order.
// The usual pairing is a FileLogger capture plus a SlogAdapter for the
// console.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger creates a fan-out logger over the given sinks. Nil sinks
// are skipped.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	out := make([]Logger, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiLogger{sinks: out}
}

// Log delivers the event to every sink.
func (m *MultiLogger) Log(event Event) {
	for _, s := range m.sinks {
		s.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
