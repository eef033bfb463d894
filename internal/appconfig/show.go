package appconfig

import (
	"fmt"
	"io"
	"sort"
)

// ShowConfig prints the effective configuration summary.
func ShowConfig(out io.Writer, file string, cfg Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Profile:         %s\n", ProfileFor(cfg.Profile).Name)
	fmt.Fprintf(out, "  Warmup:          %d\n", cfg.WarmupCount())
	fmt.Fprintf(out, "  Runs:            %d\n", cfg.RunCount())
	fmt.Fprintf(out, "  Timeout:         %s\n", cfg.Timeout())
	if cfg.Seed != nil {
		fmt.Fprintf(out, "  Seed:            %d\n", *cfg.Seed)
	} else {
		fmt.Fprintf(out, "  Seed:            %d (profile)\n", *cfg.SeedValue())
	}
	if len(cfg.Kernels) > 0 {
		fmt.Fprintf(out, "  Kernels:         %v\n", cfg.Kernels)
	} else {
		fmt.Fprintln(out, "  Kernels:         (all)")
	}
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  JSON Mode:       %v\n", cfg.JSONMode)
	fmt.Fprintf(out, "  Styled:          %v\n", cfg.Styled)
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	if cfg.ExportPath != "" {
		fmt.Fprintf(out, "  Export:          %s\n", cfg.ExportPath)
	}
	if cfg.ExportMarkdownPath != "" {
		fmt.Fprintf(out, "  Export Markdown: %s\n", cfg.ExportMarkdownPath)
	}
	if len(cfg.Tolerances) > 0 {
		keys := make([]string, 0, len(cfg.Tolerances))
		for k := range cfg.Tolerances {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(out, "  Tolerances:")
		for _, k := range keys {
			fmt.Fprintf(out, "    %-20s %s\n", k, cfg.Tolerances[k].Tolerance())
		}
	}
	for _, e := range cfg.External {
		fmt.Fprintf(out, "  External:        %s -> %s (size %d)\n", e.Name, e.Binary, e.Size)
	}
}
