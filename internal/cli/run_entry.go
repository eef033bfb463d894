package kernbench

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mwiater/kernbench/internal/appconfig"
	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/catalog"
	"github.com/mwiater/kernbench/internal/report"
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// applyRunFlags copies explicitly set run flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *appconfig.Config) error {
	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile, _ = flags.GetString("profile")
		cfg.Warmup, cfg.Runs = nil, 0
	}
	if flags.Changed("warmup") {
		w, _ := flags.GetInt("warmup")
		cfg.Warmup = &w
	}
	if flags.Changed("runs") {
		cfg.Runs, _ = flags.GetInt("runs")
	}
	if flags.Changed("kernel") {
		cfg.Kernels, _ = flags.GetStringSlice("kernel")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetUint64("seed")
		cfg.Seed = &seed
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds, _ = flags.GetInt("timeout")
	}
	if flags.Changed("export") {
		cfg.ExportPath, _ = flags.GetString("export")
	}
	if flags.Changed("exportMarkdown") {
		cfg.ExportMarkdownPath, _ = flags.GetString("exportMarkdown")
	}
	return cfg.Validate()
}

// buildRegistry returns the built-in catalog plus the configured external
// benchmarks.
func buildRegistry(cfg appconfig.Config) (*benchmark.Registry, error) {
	registry, err := catalog.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, e := range cfg.External {
		if err := registry.Register(catalog.External(e.Name, e.Runner(cfg.Timeout()), e.Request())); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func runBenchmark(ctx context.Context, cfg appconfig.Config) (*report.Report, error) {
	provider, err := catalog.NewProvider()
	if err != nil {
		return nil, err
	}
	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	h, err := benchmark.New(provider, registry, benchmark.Options{
		Warmup:     cfg.WarmupCount(),
		Runs:       cfg.RunCount(),
		Seed:       cfg.SeedValue(),
		Filter:     cfg.Kernels,
		Tolerances: cfg.ToleranceMap(),
	})
	if err != nil {
		return nil, err
	}
	return h.Run(ctx)
}

// render writes r as JSON in JSON mode, styled on a terminal, and as plain
// text otherwise.
func render(out io.Writer, r *report.Report, cfg appconfig.Config) error {
	switch {
	case cfg.JSONMode:
		s, err := report.Serialize(r)
		if err != nil {
			return err
		}
		_, err = out.Write(s.Structured)
		return err
	case cfg.Styled && isTerminal(out):
		_, err := fmt.Fprintln(out, report.Styled(r))
		return err
	default:
		_, err := fmt.Fprint(out, report.Text(r))
		return err
	}
}

// exportReport writes the configured report files. An export path that is
// a directory, or ends in a separator, gets a host-and-time file name.
func exportReport(r *report.Report, cfg appconfig.Config) error {
	jsonPath := cfg.ExportPath
	if jsonPath != "" {
		if info, err := os.Stat(jsonPath); (err == nil && info.IsDir()) || strings.HasSuffix(jsonPath, string(os.PathSeparator)) {
			jsonPath = benchmark.DefaultExportPath(jsonPath, r)
		}
	}
	if jsonPath == "" && cfg.ExportMarkdownPath == "" {
		return nil
	}
	return benchmark.Export(r, jsonPath, cfg.ExportMarkdownPath)
}
