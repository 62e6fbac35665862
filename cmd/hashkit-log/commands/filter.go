package commands

import (
	"fmt"
	"io"

	"github.com/hashkit-io/hashkit-go/pkg/log"
)

// RunFilter copies matching events into a new capture file.
func RunFilter(path string, filter log.Filter, output string, status io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		logger.Log(event)
		count++
	}

	fmt.Fprintf(status, "Filtered %d events to %s\n", count, output)
	return nil
}
