package kernbench

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// runCmd executes the kernel catalog and prints the report.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the kernel catalog and print the report",
	Long: `The 'run' command executes every registered kernel (or those selected with --kernel),
verifies each result against its oracle and reports timing statistics. Seeded fixtures use
--seed, the config seed, or the profile's seed (42), and the seed used is recorded in the report.
Interrupting a run keeps completed results and marks the rest as skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		if err := applyRunFlags(cmd, &cfg); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r, err := runBenchmark(ctx, cfg)
		if err != nil {
			return err
		}
		if err := render(cmd.OutOrStdout(), r, cfg); err != nil {
			return err
		}
		if err := exportReport(r, cfg); err != nil {
			return err
		}
		if _, failed, _ := r.Counts(); failed > 0 {
			return fmt.Errorf("%d kernel(s) failed", failed)
		}
		return nil
	},
}

func init() {
	flags := runCmd.Flags()
	flags.String("profile", "", "warm-up/run preset: quick, standard or thorough")
	flags.Int("warmup", 3, "discarded warm-up runs per kernel")
	flags.Int("runs", 10, "measured runs per kernel")
	flags.StringSliceP("kernel", "k", nil, "kernel name or family to run (repeatable)")
	flags.Uint64("seed", 0, "seed for seeded fixtures")
	flags.Int("timeout", 60, "timeout in seconds for external benchmark processes")
	flags.String("export", "", "write the JSON report to this file (or directory)")
	flags.String("exportMarkdown", "", "write a Markdown report to this file")
	rootCmd.AddCommand(runCmd)
}
