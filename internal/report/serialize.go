package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Serialized holds both renderings of a report.
type Serialized struct {
	Text       string
	Structured []byte
}

// Serialize renders r without touching any sink.
func Serialize(r *Report) (Serialized, error) {
	if r == nil {
		return Serialized{}, fmt.Errorf("report is nil")
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return Serialized{}, fmt.Errorf("encode report: %w", err)
	}
	return Serialized{Text: Text(r), Structured: append(data, '\n')}, nil
}

// Text renders one line per kernel in registration order followed by a
// total line.
func Text(r *Report) string {
	width := 4
	for _, res := range r.Results {
		if len(res.Name) > width {
			width = len(res.Name)
		}
	}
	var b strings.Builder
	for _, res := range r.Results {
		fmt.Fprintf(&b, "%-*s  %-18s  %s\n", width, res.Name, Outcome(res), meanColumn(res))
	}
	ok, failed, skipped := r.Counts()
	fmt.Fprintf(&b, "%-*s  %-18s  %s", width, "total", fmt.Sprintf("%d/%d/%d", ok, failed, skipped), FormatSeconds(r.TotalSeconds))
	if r.Partial {
		b.WriteString("  (partial)")
	}
	b.WriteString("\n")
	return b.String()
}

// Outcome is the verdict for verified kernels, otherwise the status and
// error kind.
func Outcome(res Result) string {
	switch res.Status {
	case StatusSkipped:
		return "SKIPPED"
	case StatusFailed:
		if res.ErrorKind != "" {
			return "FAILED:" + res.ErrorKind
		}
		if res.Verdict != "" {
			return string(res.Verdict)
		}
		return "FAILED"
	}
	if res.Verdict == "" {
		return "OK"
	}
	return string(res.Verdict)
}

func meanColumn(res Result) string {
	if res.Timing == nil {
		return "-"
	}
	return "mean=" + FormatSeconds(res.Timing.MeanSeconds)
}

// FormatSeconds prints a duration in seconds with a unit suited to its size.
func FormatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second))
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%.0fns", s*1e9)
	case d < time.Millisecond:
		return fmt.Sprintf("%.3fµs", s*1e6)
	case d < time.Second:
		return fmt.Sprintf("%.3fms", s*1e3)
	default:
		return fmt.Sprintf("%.3fs", s)
	}
}
