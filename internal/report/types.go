// Package report assembles benchmark results into a versioned report and
// renders it as text, JSON, Markdown or styled terminal output.
package report

import (
	"os"
	"runtime"
	"time"

	"github.com/mwiater/kernbench/internal/oracle"
	"github.com/mwiater/kernbench/internal/timing"
)

// SchemaVersion is bumped on any incompatible change to the JSON layout.
const SchemaVersion = 1

// ToolName identifies the producer in every report.
const ToolName = "kernbench"

// Status is the lifecycle outcome of one kernel.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Report is the aggregated record of one harness invocation.
type Report struct {
	SchemaVersion int       `json:"schema_version"`
	Tool          string    `json:"tool"`
	GeneratedAt   time.Time `json:"generated_at"`
	Host          HostInfo  `json:"host"`
	TotalSeconds  float64   `json:"total_seconds"`
	Partial       bool      `json:"partial"`
	Results       []Result  `json:"results"`
}

// HostInfo describes the machine the numbers were measured on.
type HostInfo struct {
	Hostname  string `json:"hostname,omitempty"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUs      int    `json:"cpus"`
	GoVersion string `json:"go_version"`
}

// Result is the outcome of one kernel. Failed and skipped kernels carry an
// error kind and message instead of timing.
type Result struct {
	Name        string         `json:"name"`
	Backend     string         `json:"backend"`
	Status      Status         `json:"status"`
	Verdict     oracle.Verdict `json:"verdict,omitempty"`
	Actual      *Value         `json:"actual"`
	Expected    *Value         `json:"expected"`
	MaxAbsDelta *float64       `json:"max_abs_delta,omitempty"`
	Tolerance   string         `json:"tolerance,omitempty"`
	ErrorKind   string         `json:"error_kind,omitempty"`
	Error       string         `json:"error,omitempty"`
	Detail      string         `json:"detail,omitempty"`
	Seed        *uint64        `json:"seed,omitempty"`
	Timing      *Timing        `json:"timing,omitempty"`
}

// Timing is the serialized timing summary. Self-timed kernels report no
// individual samples.
type Timing struct {
	Warmup         int       `json:"warmup"`
	Runs           int       `json:"runs"`
	MeanSeconds    float64   `json:"mean_seconds"`
	MinSeconds     float64   `json:"min_seconds"`
	MaxSeconds     float64   `json:"max_seconds"`
	StdDevSeconds  float64   `json:"stddev_seconds"`
	P50Seconds     float64   `json:"p50_seconds"`
	P95Seconds     float64   `json:"p95_seconds"`
	SamplesSeconds []float64 `json:"samples_seconds,omitempty"`
}

// NewTiming summarizes a measured sample.
func NewTiming(s timing.Sample) *Timing {
	sum := timing.Summarize(s)
	t := FromSummary(s.Warmup, sum)
	t.SamplesSeconds = append([]float64(nil), s.Runs...)
	return t
}

// FromSummary builds a Timing from an already aggregated summary.
func FromSummary(warmup int, sum timing.Summary) *Timing {
	return &Timing{
		Warmup:        warmup,
		Runs:          sum.Count,
		MeanSeconds:   sum.Mean,
		MinSeconds:    sum.Min,
		MaxSeconds:    sum.Max,
		StdDevSeconds: sum.StdDev,
		P50Seconds:    sum.P50,
		P95Seconds:    sum.P95,
	}
}

// New builds a report stamped with the current host and time.
func New(results []Result, totalSeconds float64, partial bool) *Report {
	return &Report{
		SchemaVersion: SchemaVersion,
		Tool:          ToolName,
		GeneratedAt:   time.Now().UTC(),
		Host:          CurrentHost(),
		TotalSeconds:  totalSeconds,
		Partial:       partial,
		Results:       results,
	}
}

// CurrentHost describes the running machine.
func CurrentHost() HostInfo {
	name, _ := os.Hostname()
	return HostInfo{
		Hostname:  name,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		GoVersion: runtime.Version(),
	}
}

// Counts tallies results by status.
func (r *Report) Counts() (ok, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusOK:
			ok++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return ok, failed, skipped
}

// Lookup finds a result by kernel name.
func (r *Report) Lookup(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return Result{}, false
}
