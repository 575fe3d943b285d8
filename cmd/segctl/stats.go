package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/segalloc/heap/alloc"
	"github.com/joshuapare/segalloc/heap/trace"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <trace>",
		Short: "Show allocator counters and free-list occupancy after a replay",
		Long: `The stats command replays a trace and prints the allocator counters
(fast and slow path allocations, splits, merges, arena growth) together with
the length of every segregated free list at the end of the trace.

Example:
  segctl stats binary.rep
  segctl stats binary.rep --chunk 8192
  segctl stats binary.rep --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

type statsResult struct {
	Trace       string             `json:"trace"`
	HeapSize    int                `json:"heap_size"`
	PeakPayload int                `json:"peak_payload"`
	Utilization float64            `json:"utilization"`
	Stats       alloc.Stats        `json:"stats"`
	Buckets     []alloc.BucketStat `json:"buckets"`
}

func runStats(args []string) error {
	path := args[0]
	printVerbose("Replaying %s\n", path)

	tr, err := trace.Open(path)
	if err != nil {
		return err
	}
	opts := replayOptions()
	res, err := trace.Replay(tr, &opts)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(statsResult{
			Trace:       tr.Name,
			HeapSize:    res.HeapSize,
			PeakPayload: res.PeakPayload,
			Utilization: res.Utilization,
			Stats:       res.Stats,
			Buckets:     res.Buckets,
		})
	}

	s := res.Stats
	printInfo("Trace: %s (%d ops)\n\n", tr.Name, res.Ops)

	printInfo("Allocations:\n")
	printInfo("  Calls:          %d\n", s.AllocCalls)
	printInfo("  From free list: %d\n", s.AllocFastPath)
	printInfo("  After growth:   %d\n", s.AllocSlowPath)
	printInfo("  Splits:         %d\n", s.SplitCount)
	printInfo("  Bytes:          %d\n", s.BytesAllocated)

	printInfo("\nFrees:\n")
	printInfo("  Calls:          %d\n", s.FreeCalls)
	printInfo("  Merged forward: %d\n", s.CoalesceForward)
	printInfo("  Merged back:    %d\n", s.CoalesceBackward)
	printInfo("  Bytes:          %d\n", s.BytesFreed)

	printInfo("\nResizes:\n")
	printInfo("  Calls:          %d\n", s.ReallocCalls)
	printInfo("  In place:       %d\n", s.ReallocInPlace)
	printInfo("  Grown in place: %d\n", s.ReallocGrowInPlace)
	printInfo("  Moved:          %d\n", s.ReallocMoved)

	printInfo("\nArena:\n")
	printInfo("  Extensions:     %d\n", s.GrowCalls)
	printInfo("  Grown by:       %d bytes\n", s.GrowBytes)
	printInfo("  Heap size:      %d bytes\n", res.HeapSize)
	printInfo("  Peak payload:   %d bytes\n", res.PeakPayload)
	printInfo("  Utilization:    %.1f%%\n", 100*res.Utilization)

	printInfo("\nFree lists:\n")
	printInfo("  %-5s %-14s %8s %12s\n", "CLASS", "SIZES", "BLOCKS", "BYTES")
	for _, b := range res.Buckets {
		printInfo("  %-5d %-14s %8d %12d\n", b.Class, classRange(b), b.Count, b.Bytes)
	}
	return nil
}

func classRange(b alloc.BucketStat) string {
	if b.Hi < 0 {
		return printer.Sprintf("%d+", b.Lo)
	}
	return printer.Sprintf("%d-%d", b.Lo, b.Hi)
}
