package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hashkit-io/hashkit-go/pkg/log"
)

// writeCapture writes a small capture file with a mix of event types and
// returns its path.
func writeCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.hklog")

	logger, err := log.NewFileLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	base := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

	logger.Log(log.Event{
		Timestamp:    base,
		ConnectionID: "conn-aaaa-1111",
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		StateChange:  &log.StateChangeEvent{NewState: "CONNECTED"},
	})
	logger.Log(log.Event{
		Timestamp:    base.Add(time.Second),
		ConnectionID: "conn-aaaa-1111",
		Direction:    log.DirectionIn,
		Layer:        log.LayerCommand,
		Category:     log.CategoryCommand,
		Command: &log.CommandEvent{
			Name:      "HSET",
			Key:       "user:42",
			ArgCount:  4,
			ReplyType: "Integer",
			Elapsed:   800 * time.Microsecond,
		},
	})
	logger.Log(log.Event{
		Timestamp:    base.Add(2 * time.Second),
		ConnectionID: "conn-aaaa-1111",
		Direction:    log.DirectionIn,
		Layer:        log.LayerCommand,
		Category:     log.CategoryCommand,
		Command: &log.CommandEvent{
			Name:      "HGET",
			Key:       "user:42",
			ArgCount:  3,
			ReplyType: "BulkString",
			Elapsed:   400 * time.Microsecond,
		},
	})
	logger.Log(log.Event{
		Timestamp:    base.Add(3 * time.Second),
		ConnectionID: "conn-bbbb-2222",
		Direction:    log.DirectionIn,
		Layer:        log.LayerTransport,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: "read reply: connection reset",
			Context: "read HGET reply",
		},
	})

	return path
}
