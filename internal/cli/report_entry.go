package kernbench

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/mwiater/kernbench/internal/oracle"
	"github.com/mwiater/kernbench/internal/report"
)

var (
	okText       = color.New(color.FgGreen).SprintFunc()
	failedText   = color.New(color.FgRed, color.Bold).SprintFunc()
	addedText    = color.New(color.FgYellow).SprintFunc()
	unchangedTxt = color.New(color.Faint).SprintFunc()
)

func readReport(path string) (*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	r, err := report.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func runReportValidate(out io.Writer, path string) error {
	r, err := readReport(path)
	if err != nil {
		fmt.Fprintln(out, failedText("invalid: "+path))
		return err
	}
	ok, failed, skipped := r.Counts()
	fmt.Fprintf(out, "%s %s: %d results (%d ok, %d failed, %d skipped)\n",
		okText("valid:"), path, len(r.Results), ok, failed, skipped)
	return nil
}

func runReportDiff(out io.Writer, baselinePath, candidatePath string, tol oracle.Tolerance, failOnRegression bool) error {
	baseline, err := readReport(baselinePath)
	if err != nil {
		return err
	}
	candidate, err := readReport(candidatePath)
	if err != nil {
		return err
	}

	regressed := 0
	for _, e := range report.Diff(baseline, candidate, tol) {
		line := e.String()
		switch {
		case e.Regressed():
			regressed++
			line = failedText(line)
		case e.Change == report.ChangeAdded:
			line = addedText(line)
		default:
			line = unchangedTxt(line)
		}
		fmt.Fprintln(out, line)
	}
	if regressed == 0 {
		fmt.Fprintln(out, okText("no regressions"))
		return nil
	}
	fmt.Fprintln(out, failedText(fmt.Sprintf("%d regression(s)", regressed)))
	if failOnRegression {
		return fmt.Errorf("%d kernel(s) regressed against %s", regressed, baselinePath)
	}
	return nil
}
