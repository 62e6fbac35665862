// Command hashkit-cli is an interactive client for the hash command family.
//
// It connects to a store, binds the string codec, and exposes the full hash
// surface as REPL commands, including a cursor-correct scan loop.
//
// Usage:
//
//	hashkit-cli [flags]
//
// Flags:
//
//	-config string   Configuration file path (YAML)
//	-addr string     Store address (overrides config, default "localhost:6379")
//	-log-file string Protocol event log file (CBOR; overrides config)
//	-verbose         Mirror protocol events to the console via slog
//	-version         Print the version and exit
//
// Interactive Commands:
//
//	hget <key> <field>                 - Get one field
//	hset <key> <field> <value>         - Set one field
//	hsetnx <key> <field> <value>       - Set only when absent
//	hmget <key> <field> [field ...]    - Get several fields
//	hmset <key> <field> <value> [...]  - Set several fields
//	hgetall <key>                      - Get every field
//	hdel <key> <field> [field ...]     - Delete fields
//	hexists <key> <field>              - Field existence
//	hlen <key>                         - Field count
//	hstrlen <key> <field>              - Stored value length
//	hkeys <key>                        - Field names
//	hvals <key>                        - Field values
//	hincrby <key> <field> <n>          - Integer increment
//	hincrbyfloat <key> <field> <x>     - Float increment
//	hscan <key> <cursor> [match [count]] - One scan round trip
//	scanall <key> [match [count]]      - Full scan, following the cursor
//	ping                               - Health check
//	quit                               - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hashkit-io/hashkit-go/pkg/connection"
	"github.com/hashkit-io/hashkit-go/pkg/hash"
	"github.com/hashkit-io/hashkit-go/pkg/log"
	"github.com/hashkit-io/hashkit-go/pkg/transport"
	"github.com/hashkit-io/hashkit-go/pkg/version"
)

func main() {
	configFile := flag.String("config", "", "configuration file path (YAML)")
	addr := flag.String("addr", "", "store address (overrides config)")
	logFile := flag.String("log-file", "", "protocol event log file (overrides config)")
	verbose := flag.Bool("verbose", false, "mirror protocol events to the console")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hashkit-cli %s\n", version.String())
		return
	}

	cfg := DefaultConfig()
	if *configFile != "" {
		loaded, err := LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	logger, closeLogger, err := buildLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLogger()

	// Redial between commands; a dropped store connection recovers on the
	// next REPL command instead of killing the session.
	rt := connection.NewTransport(func(ctx context.Context) (transport.CommandTransport, error) {
		return transport.Dial(ctx, transport.Config{
			Addr:           cfg.Addr,
			ConnectTimeout: cfg.ConnectTimeout,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			KeepAlive:      transport.KeepAliveConfig{Interval: cfg.KeepAliveInterval},
			Logger:         logger,
		})
	})
	defer rt.Close()

	client := hash.NewClient(rt, hash.WithLogger(logger))

	repl, err := NewREPL(client, cfg.Addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start repl: %v\n", err)
		os.Exit(1)
	}
	defer repl.Close()

	repl.Run(context.Background())
}

// buildLogger assembles the event logger from config and flags.
func buildLogger(cfg Config, verbose bool) (log.Logger, func(), error) {
	var sinks []log.Logger
	var closers []func()

	if cfg.LogFile != "" {
		fl, err := log.NewFileLogger(cfg.LogFile)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fl)
		closers = append(closers, func() { fl.Close() })
	}
	if verbose {
		sinks = append(sinks, log.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	switch len(sinks) {
	case 0:
		return log.NoopLogger{}, closeAll, nil
	case 1:
		return sinks[0], closeAll, nil
	default:
		return log.NewMultiLogger(sinks...), closeAll, nil
	}
}
