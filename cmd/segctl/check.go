package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/segalloc/heap/alloc"
	"github.com/joshuapare/segalloc/heap/trace"
	"github.com/joshuapare/segalloc/heap/verify"
)

var (
	checkEvery int
	checkDump  string
	checkImage bool
)

func init() {
	cmd := newCheckCmd()
	cmd.Flags().IntVar(&checkEvery, "check-every", 0, "Also run the checker every N operations")
	cmd.Flags().StringVar(&checkDump, "dump", "", "Write the final arena image to this file")
	cmd.Flags().BoolVar(&checkImage, "image", false, "Treat the argument as an arena image instead of a trace")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <trace>",
		Short: "Replay a trace and print the heap consistency report",
		Long: `The check command replays a trace and runs the consistency checker on
the final heap: block alignment, header/footer agreement, the prologue and
epilogue sentinels, free-list membership and coalescing.

With --verbose every block is listed. --dump saves the final arena so it can
be checked again later with --image, without replaying.

Example:
  segctl check binary.rep
  segctl check binary.rep --verbose
  segctl check binary.rep --check-every 50 --json
  segctl check binary.rep --dump binary.img
  segctl check --image binary.img`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkImage {
				return runCheckImage(args)
			}
			return runCheck(args)
		},
	}
	return cmd
}

type checkViolation struct {
	Kind    string `json:"kind"`
	Addr    int    `json:"addr"`
	Message string `json:"message"`
}

type checkResult struct {
	Trace           string           `json:"trace"`
	Consistent      bool             `json:"consistent"`
	Coalesced       bool             `json:"coalesced"`
	HeapSize        int              `json:"heap_size"`
	AllocatedBlocks int              `json:"allocated_blocks"`
	FreeBlocks      int              `json:"free_blocks"`
	Violations      []checkViolation `json:"violations,omitempty"`
	Error           string           `json:"error,omitempty"`
}

func runCheck(args []string) error {
	path := args[0]
	printVerbose("Checking %s\n", path)

	tr, err := trace.Open(path)
	if err != nil {
		return err
	}

	opts := replayOptions()
	opts.Verify = true
	opts.CheckEvery = checkEvery
	opts.ImagePath = checkDump
	res, err := trace.Replay(tr, &opts)
	if res == nil {
		return err
	}

	if checkDump != "" {
		printVerbose("Wrote arena image %s\n", checkDump)
	}
	return printCheck(tr.Name, res.Report, err)
}

func runCheckImage(args []string) error {
	path := args[0]
	printVerbose("Checking arena image %s\n", path)

	r, err := verify.WalkFile(path, alloc.ClassOf)
	if err != nil {
		return err
	}
	if !r.OK() {
		err = fmt.Errorf("%w: %w", trace.ErrInconsistent, r.Err())
	}
	return printCheck(filepath.Base(path), r, err)
}

func printCheck(name string, r *verify.Report, err error) error {
	if jsonOut {
		if jerr := printJSON(newCheckResult(name, r, err)); jerr != nil {
			return jerr
		}
		return err
	}

	if !quiet {
		r.Print(os.Stdout, verbose)
		printInfo("%s: %s\n", name, r.Summary())
	}
	if errors.Is(err, trace.ErrInconsistent) {
		return fmt.Errorf("%s: %d violations", name, len(r.Violations))
	}
	return err
}

func newCheckResult(name string, r *verify.Report, err error) checkResult {
	out := checkResult{
		Trace:           name,
		Consistent:      r.ListsConsistent(),
		Coalesced:       r.Coalesced(),
		HeapSize:        r.HeapSize,
		AllocatedBlocks: r.AllocatedBlocks,
		FreeBlocks:      r.FreeBlocks,
	}
	for _, v := range r.Violations {
		out.Violations = append(out.Violations, checkViolation{
			Kind:    v.Kind.String(),
			Addr:    v.Addr,
			Message: v.Message,
		})
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}
