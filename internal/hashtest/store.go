// Package hashtest provides an in-memory hash store implementing the
// CommandTransport interface, so command-layer tests run without a server
// or a network. Semantics follow the store's hash command family, including
// insertion-ordered enumeration and index-based HSCAN cursors.
package hashtest

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/resp"

	"github.com/hashkit-io/hashkit-go/pkg/transport"
)

// DefaultScanCount is the page size used when HSCAN carries no COUNT hint.
const DefaultScanCount = 10

// Store is an in-memory hash store. The zero value is not usable; call New.
type Store struct {
	mu      sync.Mutex
	keys    map[string]*hashValue
	nextErr error
	closed  bool
}

// hashValue keeps fields in insertion order so enumeration and scan pages
// are deterministic in tests.
type hashValue struct {
	fields map[string]string
	order  []string
}

// New creates an empty store.
func New() *Store {
	return &Store{keys: make(map[string]*hashValue)}
}

// FailNext makes the next Do call fail with err, simulating a transport
// failure. The store's data is unaffected.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	s.nextErr = err
	s.mu.Unlock()
}

// Seed stores field/value pairs directly, bypassing the command surface.
func (s *Store) Seed(key string, pairs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hash(key)
	for i := 0; i+1 < len(pairs); i += 2 {
		h.set(pairs[i], pairs[i+1])
	}
}

// Close marks the store closed; subsequent Do calls fail.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Do dispatches one command. Unknown commands and argument errors produce
// error replies, exactly like a real server; only injected failures and use
// after Close produce Go errors.
func (s *Store) Do(_ context.Context, args ...resp.Value) (resp.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return resp.Value{}, transport.ErrConnectionClosed
	}
	if s.nextErr != nil {
		err := s.nextErr
		s.nextErr = nil
		return resp.Value{}, err
	}
	if len(args) == 0 {
		return resp.Value{}, transport.ErrEmptyCommand
	}

	name := strings.ToUpper(args[0].String())
	rest := args[1:]

	switch name {
	case "PING":
		return resp.SimpleStringValue("PONG"), nil
	case "HGET":
		return s.hget(rest)
	case "HSET":
		return s.hset(rest)
	case "HSETNX":
		return s.hsetnx(rest)
	case "HMSET":
		return s.hmset(rest)
	case "HMGET":
		return s.hmget(rest)
	case "HGETALL":
		return s.hgetall(rest)
	case "HDEL":
		return s.hdel(rest)
	case "HEXISTS":
		return s.hexists(rest)
	case "HLEN":
		return s.hlen(rest)
	case "HSTRLEN":
		return s.hstrlen(rest)
	case "HKEYS":
		return s.hkeys(rest)
	case "HVALS":
		return s.hvals(rest)
	case "HINCRBY":
		return s.hincrby(rest)
	case "HINCRBYFLOAT":
		return s.hincrbyfloat(rest)
	case "HSCAN":
		return s.hscan(rest)
	default:
		return errReply("ERR unknown command '%s'", name), nil
	}
}

// hash returns the hash at key, creating it if needed. Caller holds s.mu.
func (s *Store) hash(key string) *hashValue {
	h, ok := s.keys[key]
	if !ok {
		h = &hashValue{fields: make(map[string]string)}
		s.keys[key] = h
	}
	return h
}

// lookup returns the hash at key without creating it. Caller holds s.mu.
func (s *Store) lookup(key string) *hashValue {
	return s.keys[key]
}

// drop removes the key when its hash became empty. Caller holds s.mu.
func (s *Store) drop(key string) {
	if h, ok := s.keys[key]; ok && len(h.fields) == 0 {
		delete(s.keys, key)
	}
}

func (h *hashValue) set(field, value string) (created bool) {
	if _, ok := h.fields[field]; !ok {
		h.order = append(h.order, field)
		created = true
	}
	h.fields[field] = value
	return created
}

func (h *hashValue) del(field string) bool {
	if _, ok := h.fields[field]; !ok {
		return false
	}
	delete(h.fields, field)
	for i, f := range h.order {
		if f == field {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return true
}

func errReply(format string, args ...any) resp.Value {
	return resp.ErrorValue(fmt.Errorf(format, args...))
}

func wrongArity(cmd string) resp.Value {
	return errReply("ERR wrong number of arguments for '%s' command", strings.ToLower(cmd))
}

func (s *Store) hget(args []resp.Value) (resp.Value, error) {
	if len(args) != 2 {
		return wrongArity("hget"), nil
	}
	h := s.lookup(args[0].String())
	if h == nil {
		return resp.NullValue(), nil
	}
	v, ok := h.fields[args[1].String()]
	if !ok {
		return resp.NullValue(), nil
	}
	return resp.StringValue(v), nil
}

func (s *Store) hset(args []resp.Value) (resp.Value, error) {
	if len(args) < 3 || len(args)%2 != 1 {
		return wrongArity("hset"), nil
	}
	h := s.hash(args[0].String())
	created := 0
	for i := 1; i+1 < len(args); i += 2 {
		if h.set(args[i].String(), args[i+1].String()) {
			created++
		}
	}
	return resp.IntegerValue(created), nil
}

func (s *Store) hsetnx(args []resp.Value) (resp.Value, error) {
	if len(args) != 3 {
		return wrongArity("hsetnx"), nil
	}
	h := s.hash(args[0].String())
	field := args[1].String()
	if _, ok := h.fields[field]; ok {
		s.drop(args[0].String())
		return resp.IntegerValue(0), nil
	}
	h.set(field, args[2].String())
	return resp.IntegerValue(1), nil
}

func (s *Store) hmset(args []resp.Value) (resp.Value, error) {
	if len(args) < 3 || len(args)%2 != 1 {
		return wrongArity("hmset"), nil
	}
	h := s.hash(args[0].String())
	for i := 1; i+1 < len(args); i += 2 {
		h.set(args[i].String(), args[i+1].String())
	}
	return resp.SimpleStringValue("OK"), nil
}

func (s *Store) hmget(args []resp.Value) (resp.Value, error) {
	if len(args) < 2 {
		return wrongArity("hmget"), nil
	}
	h := s.lookup(args[0].String())
	out := make([]resp.Value, 0, len(args)-1)
	for _, f := range args[1:] {
		if h == nil {
			out = append(out, resp.NullValue())
			continue
		}
		if v, ok := h.fields[f.String()]; ok {
			out = append(out, resp.StringValue(v))
		} else {
			out = append(out, resp.NullValue())
		}
	}
	return resp.ArrayValue(out), nil
}

func (s *Store) hgetall(args []resp.Value) (resp.Value, error) {
	if len(args) != 1 {
		return wrongArity("hgetall"), nil
	}
	h := s.lookup(args[0].String())
	if h == nil {
		return resp.ArrayValue(nil), nil
	}
	out := make([]resp.Value, 0, 2*len(h.order))
	for _, f := range h.order {
		out = append(out, resp.StringValue(f), resp.StringValue(h.fields[f]))
	}
	return resp.ArrayValue(out), nil
}

func (s *Store) hdel(args []resp.Value) (resp.Value, error) {
	if len(args) < 2 {
		return wrongArity("hdel"), nil
	}
	key := args[0].String()
	h := s.lookup(key)
	if h == nil {
		return resp.IntegerValue(0), nil
	}
	removed := 0
	for _, f := range args[1:] {
		if h.del(f.String()) {
			removed++
		}
	}
	s.drop(key)
	return resp.IntegerValue(removed), nil
}

func (s *Store) hexists(args []resp.Value) (resp.Value, error) {
	if len(args) != 2 {
		return wrongArity("hexists"), nil
	}
	h := s.lookup(args[0].String())
	if h == nil {
		return resp.IntegerValue(0), nil
	}
	if _, ok := h.fields[args[1].String()]; ok {
		return resp.IntegerValue(1), nil
	}
	return resp.IntegerValue(0), nil
}

func (s *Store) hlen(args []resp.Value) (resp.Value, error) {
	if len(args) != 1 {
		return wrongArity("hlen"), nil
	}
	h := s.lookup(args[0].String())
	if h == nil {
		return resp.IntegerValue(0), nil
	}
	return resp.IntegerValue(len(h.fields)), nil
}

func (s *Store) hstrlen(args []resp.Value) (resp.Value, error) {
	if len(args) != 2 {
		return wrongArity("hstrlen"), nil
	}
	h := s.lookup(args[0].String())
	if h == nil {
		return resp.IntegerValue(0), nil
	}
	return resp.IntegerValue(len(h.fields[args[1].String()])), nil
}

func (s *Store) hkeys(args []resp.Value) (resp.Value, error) {
	if len(args) != 1 {
		return wrongArity("hkeys"), nil
	}
	h := s.lookup(args[0].String())
	if h == nil {
		return resp.ArrayValue(nil), nil
	}
	out := make([]resp.Value, len(h.order))
	for i, f := range h.order {
		out[i] = resp.StringValue(f)
	}
	return resp.ArrayValue(out), nil
}

func (s *Store) hvals(args []resp.Value) (resp.Value, error) {
	if len(args) != 1 {
		return wrongArity("hvals"), nil
	}
	h := s.lookup(args[0].String())
	if h == nil {
		return resp.ArrayValue(nil), nil
	}
	out := make([]resp.Value, len(h.order))
	for i, f := range h.order {
		out[i] = resp.StringValue(h.fields[f])
	}
	return resp.ArrayValue(out), nil
}

func (s *Store) hincrby(args []resp.Value) (resp.Value, error) {
	if len(args) != 3 {
		return wrongArity("hincrby"), nil
	}
	delta, err := strconv.ParseInt(args[2].String(), 10, 64)
	if err != nil {
		return errReply("ERR value is not an integer or out of range"), nil
	}
	h := s.hash(args[0].String())
	field := args[1].String()
	cur := int64(0)
	if raw, ok := h.fields[field]; ok {
		cur, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errReply("ERR hash value is not an integer"), nil
		}
	}
	cur += delta
	h.set(field, strconv.FormatInt(cur, 10))
	return resp.IntegerValue(int(cur)), nil
}

func (s *Store) hincrbyfloat(args []resp.Value) (resp.Value, error) {
	if len(args) != 3 {
		return wrongArity("hincrbyfloat"), nil
	}
	delta, err := strconv.ParseFloat(args[2].String(), 64)
	if err != nil {
		return errReply("ERR value is not a valid float"), nil
	}
	h := s.hash(args[0].String())
	field := args[1].String()
	cur := float64(0)
	if raw, ok := h.fields[field]; ok {
		cur, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return errReply("ERR hash value is not a float"), nil
		}
	}
	cur += delta
	formatted := strconv.FormatFloat(cur, 'f', -1, 64)
	h.set(field, formatted)
	return resp.StringValue(formatted), nil
}

// hscan pages through the hash's insertion order. The cursor is the index
// of the next field to visit; COUNT fields are consumed per round trip
// whether or not they match, mirroring the bucket-walk behavior of a real
// server. The cursor returns to 0 when the walk passes the end.
func (s *Store) hscan(args []resp.Value) (resp.Value, error) {
	if len(args) < 2 {
		return wrongArity("hscan"), nil
	}
	key := args[0].String()

	cursor, err := strconv.ParseUint(args[1].String(), 10, 64)
	if err != nil {
		return errReply("ERR invalid cursor"), nil
	}

	match := ""
	count := int64(DefaultScanCount)
	for i := 2; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return errReply("ERR syntax error"), nil
		}
		switch strings.ToUpper(args[i].String()) {
		case "MATCH":
			match = args[i+1].String()
		case "COUNT":
			count, err = strconv.ParseInt(args[i+1].String(), 10, 64)
			if err != nil {
				return errReply("ERR value is not an integer or out of range"), nil
			}
		default:
			return errReply("ERR syntax error"), nil
		}
	}
	if count < 1 {
		count = DefaultScanCount
	}

	h := s.lookup(key)
	if h == nil {
		return scanReply(0, nil), nil
	}

	start := int(cursor)
	if start >= len(h.order) {
		return scanReply(0, nil), nil
	}
	end := start + int(count)
	next := uint64(end)
	if end >= len(h.order) {
		end = len(h.order)
		next = 0
	}

	var pairs []resp.Value
	for _, f := range h.order[start:end] {
		if match != "" && !globMatch(match, f) {
			continue
		}
		pairs = append(pairs, resp.StringValue(f), resp.StringValue(h.fields[f]))
	}
	return scanReply(next, pairs), nil
}

func scanReply(next uint64, pairs []resp.Value) resp.Value {
	return resp.ArrayValue([]resp.Value{
		resp.StringValue(strconv.FormatUint(next, 10)),
		resp.ArrayValue(pairs),
	})
}

// globMatch applies the store's glob dialect. path.Match covers *, ? and
// character classes; a malformed pattern matches nothing.
func globMatch(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// Compile-time interface satisfaction check.
var _ transport.CommandTransport = (*Store)(nil)
