package kernbench

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/kernbench/internal/appconfig"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying resources",
	Long:  `The 'show' command groups subcommands that display information related to kernbench.`,
}

var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := *GetConfig()
		appconfig.ShowConfig(cmd.OutOrStdout(), cfg.ConfigPath, cfg)
		if dump, _ := cmd.Flags().GetBool("dump"); dump || cfg.Debug {
			pp.Fprintln(cmd.OutOrStdout(), cfg)
		}
	},
}

func init() {
	showConfigCmd.Flags().Bool("dump", false, "also print the raw merged config struct")
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
