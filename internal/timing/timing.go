// Package timing measures kernels with the monotonic clock.
package timing

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/mwiater/kernbench/internal/errs"
)

// now is the clock source; time.Now carries a monotonic reading that Sub
// uses, so wall-clock adjustments never leak into a sample.
var now = time.Now

// Sample holds the retained measurements of one kernel. Warm-up runs are
// counted but never stored; Runs stays in execution order.
type Sample struct {
	Warmup int       `json:"warmup"`
	Runs   []float64 `json:"runs"`
}

// Func is one execution of the code under measurement.
type Func func(ctx context.Context) error

// Measure runs fn warmup times, discarding the results, then runs times
// under the clock. The first failure aborts the measurement without retry.
func Measure(ctx context.Context, fn Func, warmup, runs int) (Sample, error) {
	if warmup < 0 {
		return Sample{}, errs.InvalidConfig("warm-up count must be >= 0, got %d", warmup)
	}
	if runs <= 0 {
		return Sample{}, errs.InvalidConfig("run count must be > 0, got %d", runs)
	}

	for i := 0; i < warmup; i++ {
		if err := ctx.Err(); err != nil {
			return Sample{}, err
		}
		if err := fn(ctx); err != nil {
			return Sample{}, errs.KernelExecution(err, "warm-up run %d", i)
		}
	}

	s := Sample{Warmup: warmup, Runs: make([]float64, 0, runs)}
	for i := 0; i < runs; i++ {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		start := now()
		err := fn(ctx)
		elapsed := now().Sub(start)
		if err != nil {
			return s, errs.KernelExecution(err, "measured run %d", i)
		}
		s.Runs = append(s.Runs, elapsed.Seconds())
	}
	return s, nil
}

// Summary aggregates a Sample. All values are seconds.
type Summary struct {
	Count  int
	Mean   float64
	Min    float64
	Max    float64
	StdDev float64
	P50    float64
	P95    float64
}

// runningStat accumulates with Welford's online algorithm.
type runningStat struct {
	count int
	mean  float64
	m2    float64
	min   float64
	max   float64
}

func (rs *runningStat) add(value float64) {
	rs.count++
	if rs.count == 1 {
		rs.min = value
		rs.max = value
	} else {
		if value < rs.min {
			rs.min = value
		}
		if value > rs.max {
			rs.max = value
		}
	}
	delta := value - rs.mean
	rs.mean += delta / float64(rs.count)
	rs.m2 += delta * (value - rs.mean)
}

// stddev is the sample standard deviation; zero below two observations.
func (rs *runningStat) stddev() float64 {
	if rs.count < 2 {
		return 0
	}
	return math.Sqrt(rs.m2 / float64(rs.count-1))
}

// Summarize computes the summary statistics of s.
func Summarize(s Sample) Summary {
	if len(s.Runs) == 0 {
		return Summary{}
	}
	var rs runningStat
	for _, v := range s.Runs {
		rs.add(v)
	}
	sorted := append([]float64(nil), s.Runs...)
	sort.Float64s(sorted)
	return Summary{
		Count:  rs.count,
		Mean:   rs.mean,
		Min:    rs.min,
		Max:    rs.max,
		StdDev: rs.stddev(),
		P50:    Percentile(sorted, 50),
		P95:    Percentile(sorted, 95),
	}
}

// Percentile returns the nearest-rank percentile of an ascending slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// Stopwatch tracks total elapsed time for a run.
type Stopwatch struct {
	start time.Time
}

// Start begins a stopwatch.
func Start() Stopwatch { return Stopwatch{start: now()} }

// Seconds since Start.
func (w Stopwatch) Seconds() float64 { return now().Sub(w.start).Seconds() }
