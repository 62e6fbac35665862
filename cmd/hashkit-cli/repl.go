package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/hashkit-io/hashkit-go/pkg/codec"
	"github.com/hashkit-io/hashkit-go/pkg/hash"
)

// REPL is the interactive command loop.
type REPL struct {
	client *hash.Client
	typed  *hash.Typed[string]
	rl     *readline.Instance
}

// NewREPL creates the interactive handler.
func NewREPL(client *hash.Client, addr string) (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          addr + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &REPL{
		client: client,
		typed:  hash.Over(client, codec.String),
		rl:     rl,
	}, nil
}

// Close releases the readline instance.
func (r *REPL) Close() error {
	return r.rl.Close()
}

// Run reads and executes commands until quit or EOF.
func (r *REPL) Run(ctx context.Context) {
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		cmd := strings.ToLower(fields[0])
		args := fields[1:]

		if cmd == "quit" || cmd == "exit" {
			return
		}
		if cmd == "help" {
			r.printHelp()
			continue
		}

		if err := r.dispatch(ctx, cmd, args); err != nil {
			fmt.Fprintf(r.rl.Stderr(), "(error) %v\n", err)
		}
	}
}

var errUsage = errors.New("wrong number of arguments (try 'help')")

func (r *REPL) dispatch(ctx context.Context, cmd string, args []string) error {
	out := r.rl.Stdout()

	switch cmd {
	case "ping":
		// HLEN on a throwaway key; cheap and exercises the full path.
		_, err := r.client.Len(ctx, "__ping__")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "PONG")

	case "hget":
		if len(args) != 2 {
			return errUsage
		}
		v, err := r.typed.Get(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		printMaybe(out, v)

	case "hset":
		if len(args) != 3 {
			return errUsage
		}
		created, err := r.typed.Set(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "(integer) %d\n", boolInt(created))

	case "hsetnx":
		if len(args) != 3 {
			return errUsage
		}
		stored, err := r.typed.SetNX(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "(integer) %d\n", boolInt(stored))

	case "hmget":
		if len(args) < 2 {
			return errUsage
		}
		vals, err := r.typed.MGet(ctx, args[0], args[1:]...)
		if err != nil {
			return err
		}
		for i, v := range vals {
			fmt.Fprintf(out, "%d) ", i+1)
			printMaybe(out, v)
		}

	case "hmset":
		if len(args) < 3 || len(args)%2 != 1 {
			return errUsage
		}
		m := make(map[string]string, len(args)/2)
		for i := 1; i+1 < len(args); i += 2 {
			m[args[i]] = args[i+1]
		}
		if err := r.typed.MSet(ctx, args[0], m); err != nil {
			return err
		}
		fmt.Fprintln(out, "OK")

	case "hgetall":
		if len(args) != 1 {
			return errUsage
		}
		m, err := r.typed.GetAll(ctx, args[0])
		if err != nil {
			return err
		}
		printFieldMap(out, m)

	case "hdel":
		if len(args) < 2 {
			return errUsage
		}
		n, err := r.client.Del(ctx, args[0], args[1:]...)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "(integer) %d\n", n)

	case "hexists":
		if len(args) != 2 {
			return errUsage
		}
		ok, err := r.client.Exists(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "(integer) %d\n", boolInt(ok))

	case "hlen":
		if len(args) != 1 {
			return errUsage
		}
		n, err := r.client.Len(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "(integer) %d\n", n)

	case "hstrlen":
		if len(args) != 2 {
			return errUsage
		}
		n, err := r.client.StrLen(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "(integer) %d\n", n)

	case "hkeys":
		if len(args) != 1 {
			return errUsage
		}
		keys, err := r.client.Keys(ctx, args[0])
		if err != nil {
			return err
		}
		for i, k := range keys {
			fmt.Fprintf(out, "%d) %q\n", i+1, k)
		}

	case "hvals":
		if len(args) != 1 {
			return errUsage
		}
		vals, err := r.typed.Vals(ctx, args[0])
		if err != nil {
			return err
		}
		for i, v := range vals {
			fmt.Fprintf(out, "%d) ", i+1)
			printMaybe(out, v)
		}

	case "hincrby":
		if len(args) != 3 {
			return errUsage
		}
		delta, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("increment must be an integer: %q", args[2])
		}
		n, err := r.client.IncrBy(ctx, args[0], args[1], delta)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "(integer) %d\n", n)

	case "hincrbyfloat":
		if len(args) != 3 {
			return errUsage
		}
		delta, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("increment must be a float: %q", args[2])
		}
		f, err := r.client.IncrByFloat(ctx, args[0], args[1], delta)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%g\n", f)

	case "hscan":
		if len(args) < 2 || len(args) > 4 {
			return errUsage
		}
		opts, err := scanOptions(args[1:])
		if err != nil {
			return err
		}
		next, page, err := r.typed.Scan(ctx, args[0], opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "cursor: %d\n", next)
		for _, e := range page {
			fmt.Fprintf(out, "  %q = ", e.Field)
			printMaybe(out, e.Value)
		}

	case "scanall":
		if len(args) < 1 || len(args) > 3 {
			return errUsage
		}
		opts, err := scanOptions(append([]string{"0"}, args[1:]...))
		if err != nil {
			return err
		}
		all, err := r.typed.Scanner(args[0], opts).All(ctx)
		if err != nil {
			return err
		}
		printFieldMap(out, all)

	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}

	return nil
}

// scanOptions parses [cursor [match [count]]].
func scanOptions(args []string) (hash.ScanOptions, error) {
	var opts hash.ScanOptions

	cursor, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return opts, fmt.Errorf("cursor must be an unsigned integer: %q", args[0])
	}
	opts.Cursor = cursor

	if len(args) > 1 {
		opts.Match = args[1]
	}
	if len(args) > 2 {
		count, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return opts, fmt.Errorf("count must be an integer: %q", args[2])
		}
		opts.Count = count
	}
	return opts, nil
}

func printMaybe(out io.Writer, v codec.Maybe[string]) {
	if !v.Present {
		fmt.Fprintln(out, "(nil)")
		return
	}
	fmt.Fprintf(out, "%q\n", v.Value)
}

func printFieldMap(out io.Writer, m map[string]codec.Maybe[string]) {
	if len(m) == 0 {
		fmt.Fprintln(out, "(empty hash)")
		return
	}
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(out, "  %q = ", f)
		printMaybe(out, m[f])
	}
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.rl.Stdout(), `Commands:
  hget <key> <field>
  hset <key> <field> <value>
  hsetnx <key> <field> <value>
  hmget <key> <field> [field ...]
  hmset <key> <field> <value> [field value ...]
  hgetall <key>
  hdel <key> <field> [field ...]
  hexists <key> <field>
  hlen <key>
  hstrlen <key> <field>
  hkeys <key>
  hvals <key>
  hincrby <key> <field> <n>
  hincrbyfloat <key> <field> <x>
  hscan <key> <cursor> [match [count]]
  scanall <key> [match [count]]
  ping
  quit
`)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
