package timing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mwiater/kernbench/internal/errs"
)

// fakeClock advances by step on every reading.
func fakeClock(t *testing.T, step time.Duration) {
	t.Helper()
	base := time.Unix(0, 0)
	var ticks int64
	orig := now
	now = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * step)
	}
	t.Cleanup(func() { now = orig })
}

func TestMeasureExcludesWarmup(t *testing.T) {
	fakeClock(t, time.Millisecond)
	calls := 0
	s, err := Measure(context.Background(), func(context.Context) error {
		calls++
		return nil
	}, 5, 20)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if calls != 25 {
		t.Fatalf("fn called %d times, want 25", calls)
	}
	if len(s.Runs) != 20 || s.Warmup != 5 {
		t.Fatalf("sample has %d runs and warmup %d, want 20 and 5", len(s.Runs), s.Warmup)
	}
	for i, v := range s.Runs {
		if v != 0.001 {
			t.Fatalf("run %d = %v, want 0.001", i, v)
		}
	}
}

func TestMeasureInvalidConfig(t *testing.T) {
	noop := func(context.Context) error { return nil }
	for _, tc := range []struct{ warmup, runs int }{{0, 0}, {1, -1}, {-1, 5}} {
		if _, err := Measure(context.Background(), noop, tc.warmup, tc.runs); !errors.Is(err, errs.ErrInvalidConfig) {
			t.Fatalf("warmup=%d runs=%d: expected ErrInvalidConfig, got %v", tc.warmup, tc.runs, err)
		}
	}
}

func TestMeasureFailureNoRetry(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	s, err := Measure(context.Background(), func(context.Context) error {
		calls++
		if calls == 4 {
			return boom
		}
		return nil
	}, 1, 10)
	if !errors.Is(err, errs.ErrKernelExecution) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped KernelExecution, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("fn called %d times after failure, want 4", calls)
	}
	if len(s.Runs) != 2 {
		t.Fatalf("kept %d runs, want the 2 before the failure", len(s.Runs))
	}
}

func TestMeasureCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Measure(ctx, func(context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return nil
	}, 0, 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("fn called %d times, want 2", calls)
	}
}

func TestSummarize(t *testing.T) {
	s := Sample{Runs: []float64{4, 1, 3, 2, 5}}
	sum := Summarize(s)
	if sum.Count != 5 || sum.Mean != 3 || sum.Min != 1 || sum.Max != 5 {
		t.Fatalf("summary = %+v", sum)
	}
	if math.Abs(sum.StdDev-math.Sqrt(2.5)) > 1e-12 {
		t.Fatalf("stddev = %v, want sqrt(2.5)", sum.StdDev)
	}
	if sum.P50 != 3 || sum.P95 != 5 {
		t.Fatalf("p50=%v p95=%v", sum.P50, sum.P95)
	}
	if s.Runs[0] != 4 {
		t.Fatalf("Summarize reordered the sample")
	}
	if got := Summarize(Sample{Runs: []float64{7}}); got.StdDev != 0 || got.Mean != 7 {
		t.Fatalf("single-run summary = %+v", got)
	}
	if got := Summarize(Sample{}); got.Count != 0 {
		t.Fatalf("empty summary = %+v", got)
	}
}

func TestStopwatch(t *testing.T) {
	fakeClock(t, 2*time.Second)
	w := Start()
	if got := w.Seconds(); got != 2 {
		t.Fatalf("Seconds = %v, want 2", got)
	}
}
