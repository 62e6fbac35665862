package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/hashkit-io/hashkit-go/pkg/log"
)

// RunView prints matching events in human-readable form.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}

// formatEvent writes one event: a header line, then indented details.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var typeLabel string
	switch {
	case event.Command != nil:
		typeLabel = event.Command.Name
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n",
		ts, shortenConnID(event.ConnectionID),
		event.Direction.String(), event.Layer.String(), typeLabel)

	switch {
	case event.Command != nil:
		formatCommandDetails(w, event.Command)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatCommandDetails(w io.Writer, cmd *log.CommandEvent) {
	if cmd.Key != "" {
		fmt.Fprintf(w, "  Key: %s\n", cmd.Key)
	}
	fmt.Fprintf(w, "  Args: %d\n", cmd.ArgCount)
	if cmd.ReplyType != "" {
		fmt.Fprintf(w, "  Reply: %s\n", cmd.ReplyType)
	}
	if cmd.Elapsed != 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(cmd.Elapsed))
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, errData *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", errData.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", errData.Message)
	if errData.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", errData.Context)
	}
}

// formatDuration renders sub-millisecond round trips in microseconds so
// short command latencies stay readable.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}
