package kernbench

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwiater/kernbench/internal/external"
)

// externalCmd runs one external benchmark binary outside the catalog.
var externalCmd = &cobra.Command{
	Use:   "external --binary PATH [flags] [-- extra args]",
	Short: "Run an external benchmark binary and print its payload",
	Long: `The 'external' command invokes a separately built benchmark with --size, --runs and --warmup,
validates the JSON summary on its last output line and prints it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		binary, _ := flags.GetString("binary")
		timeout, _ := flags.GetInt("timeout")
		var req external.Request
		req.Size, _ = flags.GetInt("size")
		req.Runs, _ = flags.GetInt("runs")
		req.Warmup, _ = flags.GetInt("warmup")
		req.BlockSize, _ = flags.GetInt("blockSize")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		runner := external.Runner{Binary: binary, ExtraArgs: args, Timeout: time.Duration(timeout) * time.Second}
		return runExternal(ctx, cmd.OutOrStdout(), runner, req, GetConfig().JSONMode)
	},
}

func init() {
	flags := externalCmd.Flags()
	flags.String("binary", "", "path to the benchmark binary")
	flags.Int("size", 1<<20, "problem size passed as --size")
	flags.Int("runs", 10, "measured runs passed as --runs")
	flags.Int("warmup", 3, "warm-up runs passed as --warmup")
	flags.Int("blockSize", 0, "optional --block-size")
	flags.Int("timeout", 60, "process timeout in seconds")
	_ = externalCmd.MarkFlagRequired("binary")
	rootCmd.AddCommand(externalCmd)
}
