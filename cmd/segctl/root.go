package main

import (
	"fmt"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/segalloc/heap/memlib"
	"github.com/joshuapare/segalloc/heap/trace"
	"github.com/joshuapare/segalloc/internal/format"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logJSON bool

	// Arena flags
	useMmap bool
	maxHeap int
	chunk   int
)

var rootCmd = &cobra.Command{
	Use:   "segctl",
	Short: "Replay and check allocation traces against the segregated-fit allocator",
	Long: `segctl replays allocation traces against a fresh arena, validating every
returned block, and reports utilization, allocator counters and the result of
the heap consistency checker. It can also generate random traces.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit debug logs as JSON (with --verbose)")

	rootCmd.PersistentFlags().BoolVar(&useMmap, "mmap", false, "Back arenas with an anonymous memory mapping")
	rootCmd.PersistentFlags().IntVar(&maxHeap, "max-heap", memlib.DefaultMaxHeap, "Maximum arena size in bytes")
	rootCmd.PersistentFlags().IntVar(&chunk, "chunk", format.ChunkSize, "Arena growth chunk in bytes")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// replayOptions builds trace options from the global flags.
func replayOptions() trace.Options {
	opts := trace.DefaultOptions
	opts.UseMmap = useMmap
	opts.MaxHeap = maxHeap
	opts.ChunkSize = chunk
	opts.Logger = newLogger()
	return opts
}

// newLogger returns a debug logger on stderr with --verbose, otherwise nil so
// the allocator falls back to its own default.
func newLogger() *slog.Logger {
	if !verbose || quiet {
		return nil
	}
	hopts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if logJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, hopts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, hopts))
}

// Helper functions for output

// printer formats numbers with thousands separators.
var printer = message.NewPrinter(language.English)

// printInfo prints an info message if not in quiet mode
func printInfo(msg string, args ...any) {
	if !quiet {
		printer.Fprintf(os.Stdout, msg, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(msg string, args ...any) {
	if verbose && !quiet {
		printer.Fprintf(os.Stdout, msg, args...)
	}
}

var jsonAPI = jsoniter.Config{
	EscapeHTML:    true,
	SortMapKeys:   true,
	IndentionStep: 2,
}.Froze()

// printJSON outputs data as JSON
func printJSON(v any) error {
	return jsonAPI.NewEncoder(os.Stdout).Encode(v)
}
