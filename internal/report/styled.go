package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/kernbench/internal/oracle"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	matchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	withinStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("124")).Padding(0, 1)
)

// Styled renders r for an interactive terminal.
func Styled(r *Report) string {
	width := 4
	for _, res := range r.Results {
		if len(res.Name) > width {
			width = len(res.Name)
		}
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("kernbench · %s/%s · %d CPUs", r.Host.OS, r.Host.Arch, r.Host.CPUs)))
	b.WriteString("\n")
	for _, res := range r.Results {
		name := nameStyle.Render(fmt.Sprintf("%-*s", width, res.Name))
		outcome := outcomeStyle(res).Render(fmt.Sprintf("%-18s", Outcome(res)))
		fmt.Fprintf(&b, "%s  %s  %s\n", name, outcome, faintStyle.Render(meanColumn(res)))
	}
	ok, failed, skipped := r.Counts()
	summary := fmt.Sprintf("%d ok  %d failed  %d skipped  in %s", ok, failed, skipped, FormatSeconds(r.TotalSeconds))
	if failed > 0 {
		b.WriteString(failStyle.Render(summary))
	} else {
		b.WriteString(matchStyle.Render(summary))
	}
	b.WriteString("\n")
	if r.Partial {
		b.WriteString(bannerStyle.Render("partial run: interrupted before all kernels executed"))
		b.WriteString("\n")
	}
	return b.String()
}

func outcomeStyle(res Result) lipgloss.Style {
	switch {
	case res.Status == StatusSkipped:
		return skippedStyle
	case res.Status == StatusFailed:
		return failStyle
	case res.Verdict == oracle.WithinTolerance:
		return withinStyle
	}
	return matchStyle
}
