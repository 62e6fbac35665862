package hash

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/resp"

	"github.com/hashkit-io/hashkit-go/pkg/codec"
)

// ErrScanComplete indicates Next was called on a completed scanner.
// Call Reset to begin a fresh, unrelated enumeration.
var ErrScanComplete = errors.New("scan complete")

// ScanOptions configures one HSCAN round trip or a whole Scanner sequence.
// The zero value means: start position, no pattern, no count hint.
type ScanOptions struct {
	// Cursor is the position token. 0 starts a new scan.
	Cursor uint64

	// Match is a glob-style pattern applied by the store. Empty means no
	// filtering. Filtering is not re-checked locally.
	Match string

	// Count hints at the per-round-trip cost. It is advisory: the store
	// may return more or fewer elements. 0 omits the hint; negative
	// values are passed through uninterpreted.
	Count int64
}

// Entry is one field/value pair from a scan page, in the order the store
// returned it.
type Entry[T any] struct {
	Field string
	Value codec.Maybe[T]
}

// Scan performs a single HSCAN round trip and returns the next position
// token and the page of decoded entries. A returned position of 0 means the
// scan is complete. Scanning a missing key returns (0, nil, nil) on the
// first round trip.
//
// Conversion failures yield absent entry values without aborting the page.
func (t *Typed[T]) Scan(ctx context.Context, key string, opts ScanOptions) (uint64, []Entry[T], error) {
	args := []resp.Value{
		resp.StringValue(strconv.FormatUint(opts.Cursor, 10)),
	}
	if opts.Match != "" {
		args = append(args, resp.StringValue("MATCH"), resp.StringValue(opts.Match))
	}
	if opts.Count != 0 {
		args = append(args, resp.StringValue("COUNT"), resp.StringValue(strconv.FormatInt(opts.Count, 10)))
	}

	reply, err := t.c.do(ctx, "HSCAN", key, args...)
	if err != nil {
		return 0, nil, err
	}

	parts := reply.Array()
	if len(parts) != 2 {
		return 0, nil, fmt.Errorf("malformed HSCAN reply: %d elements", len(parts))
	}

	next, err := strconv.ParseUint(parts[0].String(), 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("malformed HSCAN cursor %q: %w", parts[0].String(), err)
	}

	pairs := parts[1].Array()
	entries := make([]Entry[T], 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		entries = append(entries, Entry[T]{
			Field: pairs[i].String(),
			Value: codec.Decode(t.cd, pairs[i+1]),
		})
	}

	return next, entries, nil
}

// ScanState is the lifecycle state of a Scanner.
type ScanState uint8

const (
	// ScanNotStarted indicates no round trip has been issued yet.
	ScanNotStarted ScanState = iota

	// ScanInProgress indicates at least one round trip completed and more
	// data is expected.
	ScanInProgress

	// ScanComplete indicates the position token returned to 0.
	ScanComplete
)

// String returns a human-readable state name.
func (s ScanState) String() string {
	switch s {
	case ScanNotStarted:
		return "NOT_STARTED"
	case ScanInProgress:
		return "IN_PROGRESS"
	case ScanComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Scanner drives a full HSCAN sequence over one hash. The pattern and count
// hint are fixed for the scan's duration; the position token advances with
// each Next call.
//
// A Scanner is owned by a single caller: round trips must be issued
// sequentially, and concurrent Next calls on the same Scanner have undefined
// results. Independent Scanners, even over the same key, are fully
// independent. Discarding a Scanner mid-sequence is always safe; it holds no
// resources beyond the position integer.
//
// The cumulative result set is weakly consistent: under concurrent mutation
// the store may repeat fields across pages or miss fields added mid-scan.
type Scanner[T any] struct {
	t     *Typed[T]
	key   string
	match string
	count int64

	pos     uint64
	started bool
	done    bool
}

// Scanner creates a scanner for the given key. opts.Cursor is the starting
// position (normally 0); opts.Match and opts.Count are fixed for the
// sequence.
func (t *Typed[T]) Scanner(key string, opts ScanOptions) *Scanner[T] {
	return &Scanner[T]{
		t:     t,
		key:   key,
		match: opts.Match,
		count: opts.Count,
		pos:   opts.Cursor,
	}
}

// State returns the scanner's lifecycle state.
func (s *Scanner[T]) State() ScanState {
	switch {
	case s.done:
		return ScanComplete
	case s.started:
		return ScanInProgress
	default:
		return ScanNotStarted
	}
}

// Done reports whether the scan has completed. Empty pages do not mean
// done; only the position token returning to 0 does.
func (s *Scanner[T]) Done() bool {
	return s.done
}

// Pos returns the current position token. Opaque; only 0 is meaningful to
// callers. Tokens are not resumable across processes.
func (s *Scanner[T]) Pos() uint64 {
	return s.pos
}

// Next performs one round trip and returns the page of entries, which may
// legitimately be empty mid-scan. After the scan completes, Next returns
// ErrScanComplete. A transport failure leaves the position unchanged; the
// scanner does not retry.
func (s *Scanner[T]) Next(ctx context.Context) ([]Entry[T], error) {
	if s.done {
		return nil, ErrScanComplete
	}

	next, page, err := s.t.Scan(ctx, s.key, ScanOptions{
		Cursor: s.pos,
		Match:  s.match,
		Count:  s.count,
	})
	if err != nil {
		return nil, err
	}

	s.started = true
	s.pos = next
	if next == 0 {
		s.done = true
	}
	return page, nil
}

// Reset returns the scanner to the start position. The subsequent
// enumeration is a brand-new scan with no relation to the previous one.
func (s *Scanner[T]) Reset() {
	s.pos = 0
	s.started = false
	s.done = false
}

// All drains the scanner and returns the combined result set as a map.
// When the store repeats a field across pages, the last page wins. The map
// is not a point-in-time snapshot of the hash.
func (s *Scanner[T]) All(ctx context.Context) (map[string]codec.Maybe[T], error) {
	out := make(map[string]codec.Maybe[T])
	for !s.Done() {
		page, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range page {
			out[e.Field] = e.Value
		}
	}
	return out, nil
}
