// Package commands implements the hashkit-log CLI commands.
package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashkit-io/hashkit-go/pkg/log"
)

// FilterFlags holds the raw string values of the filter flags. BuildFilter
// validates and converts them.
type FilterFlags struct {
	ConnID    string
	Command   string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// BuildFilter converts flag values into a log.Filter. Empty flags leave the
// corresponding criterion unset.
func BuildFilter(flags FilterFlags) (log.Filter, error) {
	filter := log.Filter{
		ConnectionID: flags.ConnID,
		Command:      strings.ToUpper(flags.Command),
	}

	if flags.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, flags.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start: %w", err)
		}
		filter.TimeStart = &t
	}
	if flags.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, flags.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end: %w", err)
		}
		filter.TimeEnd = &t
	}

	if flags.Layer != "" {
		l, err := parseLayer(flags.Layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}
	if flags.Direction != "" {
		d, err := parseDirection(flags.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if flags.Category != "" {
		c, err := parseCategory(flags.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}

	return filter, nil
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "command":
		return log.LayerCommand, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport or command)", s)
	}
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "command":
		return log.CategoryCommand, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be command, state, or error)", s)
	}
}
