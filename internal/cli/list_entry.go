package kernbench

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mwiater/kernbench/internal/appconfig"
	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/catalog"
	"github.com/mwiater/kernbench/internal/util"
)

const descriptionWidth = 60

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	familyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

func runListKernels(out io.Writer, cfg appconfig.Config) error {
	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	specs := registry.Specs()
	width := 0
	for _, s := range specs {
		width = max(width, len(s.Name))
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d kernels", len(specs))))
	family := ""
	for _, s := range specs {
		if f := benchmark.Family(s.Name); f != family {
			family = f
			fmt.Fprintln(out, familyStyle.Render(family))
		}
		fixtures := strings.Join(s.Fixtures, ",")
		if fixtures == "" {
			fixtures = "-"
		}
		lines := util.WrapLines(s.Description, descriptionWidth)
		fmt.Fprintf(out, "  %-*s  %-9s  %-10s  %s\n", width, s.Name, s.Backend, fixtures, lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(out, "  %-*s  %s\n", width+9+10+4, "", line)
		}
	}
	return nil
}

func runListFixtures(out io.Writer) error {
	provider, err := catalog.NewProvider()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, headerStyle.Render("Fixtures:"))
	for _, id := range provider.IDs() {
		info, err := provider.Describe(id)
		if err != nil {
			return err
		}
		seeded := ""
		if info.Seeded {
			seeded = fmt.Sprintf("  (seeded, default seed %d)", appconfig.DefaultSeed)
		}
		fmt.Fprintf(out, "  %-12s %-4s %-6s%s\n", info.ID, info.Version, info.DType, seeded)
	}
	return nil
}

// runListCommands prints the command tree in a two-column layout.
func runListCommands(out io.Writer, rootCmd *cobra.Command) {
	commandData := collectCommandData(rootCmd, "", "")

	maxPathLength := 0
	for _, data := range commandData {
		if len(data.path) > maxPathLength {
			maxPathLength = len(data.path)
		}
	}

	fmt.Fprintln(out, "Commands and Subcommands:")
	for _, data := range commandData {
		if strings.Contains(data.path, "completion") {
			continue
		}
		fmt.Fprintf(out, "  %s%s%s\n", data.path, strings.Repeat(" ", maxPathLength-len(data.path)+2), data.description)
	}
}

// commandInfo holds the path and description of a command for display.
type commandInfo struct {
	path        string
	description string
}

// collectCommandData walks the command tree and returns a flattened slice
// of path/description pairs.
func collectCommandData(cmd *cobra.Command, currentPath string, indent string) []commandInfo {
	var allData []commandInfo

	fullPath := currentPath + cmd.Name()
	if currentPath != "" {
		fullPath = currentPath + " " + cmd.Name()
	}

	allData = append(allData, commandInfo{
		path:        indent + fullPath,
		description: cmd.Short,
	})

	for _, subCmd := range cmd.Commands() {
		allData = append(allData, collectCommandData(subCmd, fullPath, indent+"  ")...)
	}

	return allData
}
