// Command hashkit-log views and analyzes protocol capture files.
//
// Capture files are written by the log package's FileLogger, for example by
// running hashkit-cli with the -log-file flag.
//
// Usage:
//
//	hashkit-log <command> [flags] <file.hklog>
//
// Commands:
//
//	view     Print events in human-readable form
//	export   Export events to JSONL or CSV
//	filter   Write matching events to a new capture file
//	stats    Summarize the capture file
//	version  Print the version and exit
//
// Examples:
//
//	# View all events
//	hashkit-log view session.hklog
//
//	# View only command-layer events
//	hashkit-log view -layer command session.hklog
//
//	# Export to JSONL
//	hashkit-log export -format jsonl session.hklog
//
//	# Keep only HSCAN round trips
//	hashkit-log filter -command HSCAN -o scans.hklog session.hklog
//
//	# Per-command counts and latencies
//	hashkit-log stats session.hklog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hashkit-io/hashkit-go/cmd/hashkit-log/commands"
	"github.com/hashkit-io/hashkit-go/pkg/version"
)

const usage = `hashkit-log - protocol capture analyzer

Usage:
  hashkit-log <command> [flags] <file.hklog>

Commands:
  view     Print events in human-readable form
  export   Export events to JSONL or CSV
  filter   Write matching events to a new capture file
  stats    Summarize the capture file
  version  Print the version and exit

Use "hashkit-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "version":
		fmt.Printf("hashkit-log %s\n", version.String())
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireFile(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	layer := fs.String("layer", "", "Filter by layer (transport, command)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (command, state, error)")
	name := fs.String("command", "", "Filter by wire command name (HGET, HSCAN, ...)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	filter, err := commands.BuildFilter(commands.FilterFlags{
		Layer:     *layer,
		Direction: *direction,
		Category:  *category,
		Command:   *name,
	})
	if err != nil {
		fatalf("Error: %v", err)
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatalf("Error: %v", err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fatalf("Error: %v", err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	output := fs.String("o", "", "Output file (required)")
	connID := fs.String("conn-id", "", "Filter by connection ID")
	name := fs.String("command", "", "Filter by wire command name")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (transport, command)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (command, state, error)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	filter, err := commands.BuildFilter(commands.FilterFlags{
		ConnID:    *connID,
		Command:   *name,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Direction: *direction,
		Category:  *category,
	})
	if err != nil {
		fatalf("Error: %v", err)
	}

	if err := commands.RunFilter(path, filter, *output, os.Stdout); err != nil {
		fatalf("Error: %v", err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatalf("Error: %v", err)
	}
}
