package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/segalloc/heap/trace"
)

var (
	genOutput     string
	genSeed       int64
	genIDs        int
	genMaxSize    int
	genReallocPct int
)

func init() {
	cmd := newGenCmd()
	d := trace.DefaultGenOptions
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (.zst and .lz4 are compressed); stdout when empty")
	cmd.Flags().Int64Var(&genSeed, "seed", d.Seed, "Random seed")
	cmd.Flags().IntVar(&genIDs, "ids", d.NumIDs, "Number of distinct blocks")
	cmd.Flags().IntVar(&genMaxSize, "max-size", d.MaxSize, "Largest request in bytes")
	cmd.Flags().IntVar(&genReallocPct, "realloc-pct", d.ReallocPct, "Percent of live-block operations that resize")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a random allocation trace",
		Long: `The gen command writes a random but well-formed trace: every block id
is allocated once, may be resized, and is freed before the end. The same
flags always produce the same trace.

Example:
  segctl gen --ids 5000 -o random.rep
  segctl gen --seed 7 --max-size 65536 -o big.rep.zst
  segctl gen --ids 10 | segctl run /dev/stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen()
		},
	}
	return cmd
}

func runGen() error {
	tr := trace.Generate(trace.GenOptions{
		Seed:       genSeed,
		NumIDs:     genIDs,
		MaxSize:    genMaxSize,
		ReallocPct: genReallocPct,
	})

	if genOutput == "" {
		return trace.Write(os.Stdout, tr)
	}

	if err := trace.Create(genOutput, tr); err != nil {
		return err
	}
	printInfo("Wrote %d ops (%d ids) to %s (compression: %s)\n",
		len(tr.Ops), tr.NumIDs, genOutput, trace.CompressionFor(genOutput))
	return nil
}
