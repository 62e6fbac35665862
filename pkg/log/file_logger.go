package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends events to a CBOR stream file. Safe for concurrent use;
// events from different goroutines are written whole, never interleaved.
type FileLogger struct {
	mu     sync.Mutex
	f      *os.File
	enc    *cbor.Encoder
	closed bool
}

// NewFileLogger opens path for appending, creating it with mode 0644 when it
// does not exist. An existing file gains events at the end, so one capture
// file can span multiple sessions.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{f: f, enc: NewEncoder(f)}, nil
}

// Path returns the file the logger writes to.
func (l *FileLogger) Path() string {
	return l.f.Name()
}

// Log appends the event. Write errors are swallowed; a full disk must not
// take the connection down with it.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	_ = l.enc.Encode(event)
}

// Close closes the file. Further Log calls are dropped; repeated Close calls
// are no-ops.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.f.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
