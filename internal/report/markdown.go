package report

import (
	"fmt"
	"strings"
)

// Markdown renders r as a Markdown document with one table row per kernel.
func Markdown(r *Report) string {
	var b strings.Builder
	b.WriteString("# kernbench report\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Host: %s %s/%s, %d CPUs, %s\n", r.Host.Hostname, r.Host.OS, r.Host.Arch, r.Host.CPUs, r.Host.GoVersion)
	ok, failed, skipped := r.Counts()
	fmt.Fprintf(&b, "- Kernels: %d ok, %d failed, %d skipped\n", ok, failed, skipped)
	fmt.Fprintf(&b, "- Total: %s\n", FormatSeconds(r.TotalSeconds))
	if r.Partial {
		b.WriteString("- **Partial run**: execution was interrupted\n")
	}
	b.WriteString("\n| Kernel | Backend | Outcome | Max abs delta | Mean | P95 | Runs |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|\n")
	for _, res := range r.Results {
		delta := "-"
		if res.MaxAbsDelta != nil {
			delta = fmt.Sprintf("%.3g", *res.MaxAbsDelta)
		}
		mean, p95, runs := "-", "-", "-"
		if res.Timing != nil {
			mean = FormatSeconds(res.Timing.MeanSeconds)
			p95 = FormatSeconds(res.Timing.P95Seconds)
			runs = fmt.Sprintf("%d", res.Timing.Runs)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			escapeCell(res.Name), escapeCell(res.Backend), Outcome(res), delta, mean, p95, runs)
	}

	var notes []string
	for _, res := range r.Results {
		if res.Error != "" {
			notes = append(notes, fmt.Sprintf("- `%s`: %s", res.Name, res.Error))
		} else if res.Verdict != "" && res.Detail != "" && res.Status == StatusFailed {
			notes = append(notes, fmt.Sprintf("- `%s`: %s", res.Name, res.Detail))
		}
	}
	if len(notes) > 0 {
		b.WriteString("\n## Failures\n\n")
		b.WriteString(strings.Join(notes, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
