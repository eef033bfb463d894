// cmd/vectoradd/main.go
//
// vectoradd is a CPU vector-add benchmark that speaks the external
// benchmark contract: it accepts --size, --runs, --warmup and --block-size,
// prints diagnostics, and ends with a one-line JSON summary.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/external"
	"github.com/mwiater/kernbench/internal/timing"
)

type options struct {
	size      int
	runs      int
	warmup    int
	blockSize int
}

func newRootCmd(out io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "vectoradd",
		Short:         "Time c = a + b over float64 vectors and print a JSON summary",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), out, opts)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&opts.size, "size", 1<<20, "number of elements")
	flags.IntVar(&opts.runs, "runs", 10, "measured runs")
	flags.IntVar(&opts.warmup, "warmup", 3, "discarded warm-up runs")
	flags.IntVar(&opts.blockSize, "block-size", 0, "elements per block (0 = whole vector)")
	cmd.SetOut(out)
	return cmd
}

func run(ctx context.Context, out io.Writer, opts options) error {
	if _, err := external.BuildArgs(external.Request{Size: opts.size, Runs: opts.runs, Warmup: opts.warmup, BlockSize: opts.blockSize}); err != nil {
		return err
	}
	a := make([]float64, opts.size)
	b := make([]float64, opts.size)
	c := make([]float64, opts.size)
	for i := range a {
		a[i], b[i] = 1, 2
	}
	block := opts.blockSize
	if block <= 0 {
		block = opts.size
	}
	fmt.Fprintf(out, "device: cpu %s/%s (%d CPUs)\n", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	fmt.Fprintf(out, "size=%d block=%d\n", opts.size, block)

	sample, err := timing.Measure(ctx, func(context.Context) error {
		addBlocks(c, a, b, block)
		return nil
	}, opts.warmup, opts.runs)
	if err != nil {
		return err
	}
	for i := range c {
		if c[i] != 3 {
			return errs.NumericDomain("c[%d] = %v, want 3", i, c[i])
		}
	}

	sum := timing.Summarize(sample)
	result := c[0]
	payload := external.Payload{
		Backend:   "cpu",
		Kernel:    "vector_add",
		Size:      opts.size,
		Runs:      opts.runs,
		Warmup:    opts.warmup,
		BlockSize: opts.blockSize,
		MeanMS:    sum.Mean * 1e3,
		MedianMS:  sum.P50 * 1e3,
		MinMS:     sum.Min * 1e3,
		MaxMS:     sum.Max * 1e3,
		Result:    &result,
	}
	if sum.Mean > 0 {
		bytesMoved := float64(3 * 8 * opts.size)
		payload.BandwidthGBPS = bytesMoved / sum.Mean / 1e9
		payload.GFLOPS = float64(opts.size) / sum.Mean / 1e9
	}
	line, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", line)
	return err
}

// addBlocks computes c = a + b in chunks of block elements.
func addBlocks(c, a, b []float64, block int) {
	for start := 0; start < len(c); start += block {
		end := min(start+block, len(c))
		for i := start; i < end; i++ {
			c[i] = a[i] + b[i]
		}
	}
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vectoradd:", err)
		os.Exit(1)
	}
}
