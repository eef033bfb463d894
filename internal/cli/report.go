package kernbench

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/kernbench/internal/oracle"
)

// reportCmd groups commands that work on exported reports.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Group commands for validating and comparing exported reports",
}

var reportValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a JSON report against the report schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReportValidate(cmd.OutOrStdout(), args[0])
	},
}

var reportDiffCmd = &cobra.Command{
	Use:   "diff <baseline> <candidate>",
	Short: "Compare two JSON reports kernel by kernel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, _ := cmd.Flags().GetFloat64("abs")
		failOnRegression, _ := cmd.Flags().GetBool("failOnRegression")
		return runReportDiff(cmd.OutOrStdout(), args[0], args[1], oracle.Abs(abs), failOnRegression)
	},
}

func init() {
	reportDiffCmd.Flags().Float64("abs", 1e-9, "absolute tolerance for value drift")
	reportDiffCmd.Flags().Bool("failOnRegression", true, "exit non-zero when any kernel regressed")
	reportCmd.AddCommand(reportValidateCmd, reportDiffCmd)
	rootCmd.AddCommand(reportCmd)
}
