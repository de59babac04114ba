// Command blueline-log views and analyzes adapter event log files.
//
// Log files are created by running blueline-adapter with the -log-file
// flag.
//
// Usage:
//
//	blueline-log <command> [flags] <file.cbor>
//
// Commands:
//
//	view     View log file in human-readable format
//	stats    Show per-component and per-category event counts
//
// Examples:
//
//	# View all events
//	blueline-log view adapter.cbor
//
//	# View only state machine dispatches
//	blueline-log view -component machine -category dispatch adapter.cbor
//
//	# Show statistics
//	blueline-log stats adapter.cbor
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/blueline-project/blueline-go/pkg/log"
)

const usage = `blueline-log - Adapter Event Log Analyzer

Usage:
  blueline-log <command> [flags] <file.cbor>

Commands:
  view     View log file in human-readable format
  stats    Show per-component and per-category event counts

Use "blueline-log <command> -help" for more information about a command.
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
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	component := fs.String("component", "", "Filter by component (machine, registry, service, controller)")
	category := fs.String("category", "", "Filter by category (dispatch, state, broadcast, subscriber, error, fatal)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		os.Exit(1)
	}

	filter, err := buildFilter(*component, *category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	reader, err := log.NewFilteredReader(fs.Arg(0), filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	for {
		ev, err := reader.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(formatEvent(ev))
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		os.Exit(1)
	}

	reader, err := log.NewReader(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	total := 0
	byComponent := make(map[string]int)
	byCategory := make(map[string]int)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		total++
		byComponent[ev.Component.String()]++
		byCategory[ev.Category.String()]++
	}

	fmt.Printf("Events: %d\n\nBy component:\n", total)
	printCounts(byComponent)
	fmt.Printf("\nBy category:\n")
	printCounts(byCategory)
}

func printCounts(counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-12s %d\n", k, counts[k])
	}
}

func buildFilter(component, category string) (log.Filter, error) {
	var filter log.Filter

	if component != "" {
		c, err := parseComponent(component)
		if err != nil {
			return filter, err
		}
		filter.Component = &c
	}
	if category != "" {
		c, err := parseCategory(category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	return filter, nil
}

func parseComponent(s string) (log.Component, error) {
	switch strings.ToLower(s) {
	case "machine":
		return log.ComponentMachine, nil
	case "registry":
		return log.ComponentRegistry, nil
	case "service":
		return log.ComponentService, nil
	case "controller":
		return log.ComponentController, nil
	default:
		return 0, fmt.Errorf("unknown component %q", s)
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "dispatch":
		return log.CategoryDispatch, nil
	case "state":
		return log.CategoryState, nil
	case "broadcast":
		return log.CategoryBroadcast, nil
	case "subscriber":
		return log.CategorySubscriber, nil
	case "error":
		return log.CategoryError, nil
	case "fatal":
		return log.CategoryFatal, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

func formatEvent(ev log.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-10s %-10s",
		ev.Timestamp.Format("15:04:05.000000"), ev.Component, ev.Category)

	switch {
	case ev.Dispatch != nil:
		fmt.Fprintf(&b, " state=%s event=%s outcome=%s",
			ev.Dispatch.State, ev.Dispatch.Event, ev.Dispatch.Outcome)
	case ev.StateChange != nil:
		fmt.Fprintf(&b, " %s -> %s", ev.StateChange.OldState, ev.StateChange.NewState)
		if ev.StateChange.Reason != "" {
			fmt.Fprintf(&b, " (%s)", ev.StateChange.Reason)
		}
	case ev.Broadcast != nil:
		fmt.Fprintf(&b, " %s -> %s", ev.Broadcast.OldState, ev.Broadcast.NewState)
	case ev.Subscriber != nil:
		fmt.Fprintf(&b, " action=%s count=%d", ev.Subscriber.Action, ev.Subscriber.Count)
		if ev.Subscriber.Handle != "" {
			fmt.Fprintf(&b, " handle=%s", ev.Subscriber.Handle)
		}
		if ev.Subscriber.Size > 0 {
			fmt.Fprintf(&b, " size=%d", ev.Subscriber.Size)
		}
	case ev.Error != nil:
		fmt.Fprintf(&b, " op=%s msg=%q", ev.Error.Op, ev.Error.Message)
	}
	return b.String()
}
