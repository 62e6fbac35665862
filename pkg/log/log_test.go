package log

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandEvent(ts time.Time, connID, name string) Event {
	return Event{
		Timestamp:    ts,
		ConnectionID: connID,
		Direction:    DirectionIn,
		Layer:        LayerCommand,
		Category:     CategoryCommand,
		RemoteAddr:   "127.0.0.1:6379",
		Command: &CommandEvent{
			Name:      name,
			Key:       "h",
			ArgCount:  2,
			ReplyType: "Integer",
			Elapsed:   250 * time.Microsecond,
		},
	}
}

func TestEventRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	in := commandEvent(ts, "conn-1", "HGET")

	data, err := MarshalEvent(in)
	require.NoError(t, err)

	out, err := UnmarshalEvent(data)
	require.NoError(t, err)

	assert.True(t, in.Timestamp.Equal(out.Timestamp), "nanosecond precision survives")
	assert.Equal(t, in.ConnectionID, out.ConnectionID)
	assert.Equal(t, in.Direction, out.Direction)
	assert.Equal(t, in.Layer, out.Layer)
	assert.Equal(t, in.Category, out.Category)
	require.NotNil(t, out.Command)
	assert.Equal(t, *in.Command, *out.Command)
	assert.Nil(t, out.StateChange)
	assert.Nil(t, out.Error)
}

func TestStateChangeRoundTrip(t *testing.T) {
	in := Event{
		Timestamp: time.Now().UTC(),
		Layer:     LayerTransport,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			OldState: "CONNECTED",
			NewState: "CLOSED",
			Reason:   "read failed",
		},
	}

	data, err := MarshalEvent(in)
	require.NoError(t, err)
	out, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, *in.StateChange, *out.StateChange)
}

func TestMarshalDeterministic(t *testing.T) {
	ev := commandEvent(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), "c", "HSET")

	a, err := MarshalEvent(ev)
	require.NoError(t, err)
	b, err := MarshalEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	l, err := NewFileLogger(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.Path())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.Log(commandEvent(base, "conn-1", "HGET"))
	l.Log(commandEvent(base.Add(time.Second), "conn-2", "HSET"))
	require.NoError(t, l.Close())

	l.Log(commandEvent(base, "conn-3", "dropped"))
	require.NoError(t, l.Close(), "double close")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "conn-1", first.ConnectionID)

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "conn-2", second.ConnectionID)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF, "event after Close was dropped")
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")
	base := time.Now().UTC()

	for i, conn := range []string{"a", "b"} {
		l, err := NewFileLogger(path)
		require.NoError(t, err)
		l.Log(commandEvent(base.Add(time.Duration(i)*time.Second), conn, "HLEN"))
		require.NoError(t, l.Close())
	}

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	var ids []string
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		ids = append(ids, ev.ConnectionID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l, err := NewFileLogger(path)
	require.NoError(t, err)
	l.Log(commandEvent(base, "conn-1", "HGET"))
	l.Log(commandEvent(base.Add(time.Second), "conn-1", "HSET"))
	l.Log(commandEvent(base.Add(2*time.Second), "conn-2", "HGET"))
	l.Log(Event{
		Timestamp: base.Add(3 * time.Second),
		Layer:     LayerTransport,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			NewState: "CLOSED",
		},
	})
	require.NoError(t, l.Close())

	t.Run("by command name", func(t *testing.T) {
		r, err := NewFilteredReader(path, Filter{Command: "HGET"})
		require.NoError(t, err)
		defer r.Close()

		count := 0
		for {
			ev, err := r.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			require.NotNil(t, ev.Command)
			assert.Equal(t, "HGET", ev.Command.Name)
			count++
		}
		assert.Equal(t, 2, count, "state events never match a command filter")
	})

	t.Run("by connection", func(t *testing.T) {
		r, err := NewFilteredReader(path, Filter{ConnectionID: "conn-2"})
		require.NoError(t, err)
		defer r.Close()

		ev, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, "conn-2", ev.ConnectionID)

		_, err = r.Next()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("by time window", func(t *testing.T) {
		start := base.Add(time.Second)
		end := base.Add(2 * time.Second)
		r, err := NewFilteredReader(path, Filter{TimeStart: &start, TimeEnd: &end})
		require.NoError(t, err)
		defer r.Close()

		ev, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, "HSET", ev.Command.Name)

		_, err = r.Next()
		assert.ErrorIs(t, err, io.EOF, "window end is exclusive")
	})

	t.Run("by category", func(t *testing.T) {
		cat := CategoryState
		r, err := NewFilteredReader(path, Filter{Category: &cat})
		require.NoError(t, err)
		defer r.Close()

		ev, err := r.Next()
		require.NoError(t, err)
		require.NotNil(t, ev.StateChange)
		assert.Equal(t, "CLOSED", ev.StateChange.NewState)
	})
}

// recordingLogger collects events in memory.
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(e Event) {
	r.events = append(r.events, e)
}

func TestMultiLogger(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}

	m := NewMultiLogger(a, nil, b)
	m.Log(commandEvent(time.Now(), "c", "HGET"))

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	NewSlogAdapter(logger).Log(commandEvent(time.Now(), "conn-1", "HSCAN"))

	out := buf.String()
	assert.Contains(t, out, "command=HSCAN")
	assert.Contains(t, out, "conn_id=conn-1")
	assert.Contains(t, out, "layer=COMMAND")
}

func TestOrNoop(t *testing.T) {
	assert.IsType(t, NoopLogger{}, OrNoop(nil))

	l := &recordingLogger{}
	assert.Same(t, l, OrNoop(l).(*recordingLogger))
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "IN", DirectionIn.String())
	assert.Equal(t, "OUT", DirectionOut.String())
	assert.Equal(t, "TRANSPORT", LayerTransport.String())
	assert.Equal(t, "COMMAND", LayerCommand.String())
	assert.Equal(t, "COMMAND", CategoryCommand.String())
	assert.Equal(t, "STATE", CategoryState.String())
	assert.Equal(t, "ERROR", CategoryError.String())
}
