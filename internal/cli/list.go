package kernbench

import "github.com/spf13/cobra"

// listCmd represents the 'list' command group for listing resources.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group commands for listing resources",
	Long:  `The 'list' command groups subcommands that list kernels, fixtures and commands.`,
}

var listKernelsCmd = &cobra.Command{
	Use:   "kernels",
	Short: "List registered kernels with their backend and fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListKernels(cmd.OutOrStdout(), *GetConfig())
	},
}

var listFixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "List fixture identifiers, versions and dtypes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListFixtures(cmd.OutOrStdout())
	},
}

// commandsCmd implements 'list commands', which prints the available
// commands and subcommands in a hierarchical, indented, two-column format.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Long:  `The 'commands' subcommand lists all commands and subcommands in a hierarchical, indented format, with the command path in the first column and its short description in the second column.`,
	Run: func(cmd *cobra.Command, args []string) {
		runListCommands(cmd.OutOrStdout(), rootCmd)
	},
}

func init() {
	listCmd.AddCommand(listKernelsCmd, listFixturesCmd, commandsCmd)
	rootCmd.AddCommand(listCmd)
}
