package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/segalloc/heap/trace"
)

var (
	runJobs       int
	runCheckEvery int
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVarP(&runJobs, "jobs", "j", runtime.NumCPU(), "Number of traces replayed in parallel")
	cmd.Flags().IntVar(&runCheckEvery, "check-every", 0, "Run the heap checker every N operations (0 disables)")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <trace>...",
		Short: "Replay traces and report utilization",
		Long: `The run command replays each trace against its own fresh arena,
validating every block the allocator returns, and prints the peak payload,
final heap size and utilization per trace.

Traces ending in .zst or .lz4 are decompressed on the fly.

Example:
  segctl run traces/*.rep
  segctl run binary.rep.zst --jobs 4 --check-every 100
  segctl run traces/*.rep --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), args)
		},
	}
	return cmd
}

type runResult struct {
	Trace       string  `json:"trace"`
	Ops         int     `json:"ops"`
	HeapSize    int     `json:"heap_size"`
	PeakPayload int     `json:"peak_payload"`
	Utilization float64 `json:"utilization"`
	Error       string  `json:"error,omitempty"`
}

func runRun(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Every trace gets its own arena, so replays share nothing.
	results := make([]runResult, len(args))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(runJobs, 1))

	for i, path := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			printVerbose("Replaying %s\n", path)
			results[i] = replayFile(path, runCheckEvery)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		printRunTable(results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d traces failed", failed, len(results))
	}
	return nil
}

func replayFile(path string, checkEvery int) runResult {
	out := runResult{Trace: trace.Name(path)}

	tr, err := trace.Open(path)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	opts := replayOptions()
	opts.CheckEvery = checkEvery
	res, err := trace.Replay(tr, &opts)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	out.Ops = res.Ops
	out.HeapSize = res.HeapSize
	out.PeakPayload = res.PeakPayload
	out.Utilization = res.Utilization
	return out
}

func printRunTable(results []runResult) {
	printInfo("%-24s %10s %12s %12s %7s\n", "TRACE", "OPS", "HEAP", "PEAK", "UTIL")

	var sum float64
	ok := 0
	for _, r := range results {
		if r.Error != "" {
			printInfo("%-24s FAILED: %s\n", r.Trace, r.Error)
			continue
		}
		printInfo("%-24s %10d %12d %12d %6.1f%%\n", r.Trace, r.Ops, r.HeapSize, r.PeakPayload, 100*r.Utilization)
		sum += r.Utilization
		ok++
	}

	if ok > 0 {
		printInfo("\nAverage utilization: %.1f%% over %d traces\n", 100*sum/float64(ok), ok)
	}
}
