package benchmark

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/fixtures"
	"github.com/mwiater/kernbench/internal/logging"
	"github.com/mwiater/kernbench/internal/oracle"
	"github.com/mwiater/kernbench/internal/report"
	"github.com/mwiater/kernbench/internal/tensor"
	"github.com/mwiater/kernbench/internal/timing"
)

// Options controls one harness run.
type Options struct {
	Warmup int
	Runs   int
	// Seed feeds seeded fixtures for kernels that do not pin their own.
	Seed   *uint64
	Filter []string
	// Tolerances override the registered policy, keyed by kernel name or
	// family.
	Tolerances map[string]oracle.Tolerance
}

// Harness executes a registry against a fixture provider.
type Harness struct {
	provider *fixtures.Provider
	registry *Registry
	opts     Options
}

// New validates opts and returns a harness.
func New(provider *fixtures.Provider, registry *Registry, opts Options) (*Harness, error) {
	if provider == nil || registry == nil {
		return nil, errs.InvalidConfig("provider and registry are required")
	}
	if opts.Warmup < 0 {
		return nil, errs.InvalidConfig("warmup must be >= 0, got %d", opts.Warmup)
	}
	if opts.Runs <= 0 {
		return nil, errs.InvalidConfig("runs must be > 0, got %d", opts.Runs)
	}
	return &Harness{provider: provider, registry: registry, opts: opts}, nil
}

type prepared struct {
	spec KernelSpec
	in   Inputs
	seed *uint64
}

// Run executes the selected kernels sequentially in registration order.
// Configuration errors abort before any kernel runs. Kernel failures are
// recorded and the run continues. When ctx is canceled the remaining
// kernels are reported as skipped and the report is marked partial.
func (h *Harness) Run(ctx context.Context) (*report.Report, error) {
	specs, err := h.registry.Select(h.opts.Filter)
	if err != nil {
		return nil, err
	}
	jobs := make([]prepared, 0, len(specs))
	for _, spec := range specs {
		job, err := h.prepare(spec)
		if err != nil {
			return nil, fmt.Errorf("kernel %s: %w", spec.Name, err)
		}
		jobs = append(jobs, job)
	}

	logging.LogEvent("running %d kernels (warmup=%d runs=%d)", len(jobs), h.opts.Warmup, h.opts.Runs)
	watch := timing.Start()
	results := make([]report.Result, 0, len(jobs))
	partial := false
	for _, job := range jobs {
		if cause := ctx.Err(); cause != nil {
			partial = true
			results = append(results, skippedResult(job, cause))
			continue
		}
		res := h.runOne(ctx, job)
		if res.Status == report.StatusSkipped {
			partial = true
		}
		results = append(results, res)
	}
	return report.New(results, watch.Seconds(), partial), nil
}

// prepare resolves every fixture a spec declares. Seeded fixtures get the
// spec's seed, else the run's default seed.
func (h *Harness) prepare(spec KernelSpec) (prepared, error) {
	seed := spec.Seed
	if seed == nil {
		seed = h.opts.Seed
	}
	job := prepared{spec: spec}
	spec.Tolerance = h.tolerance(spec)
	job.spec = spec

	resolved := make([]*fixtures.Fixture, 0, len(spec.Fixtures))
	for _, id := range spec.Fixtures {
		info, err := h.provider.Describe(id)
		if err != nil {
			return prepared{}, err
		}
		var opts []fixtures.Option
		if info.Seeded && seed != nil {
			opts = append(opts, fixtures.WithSeed(*seed))
			s := *seed
			job.seed = &s
		}
		f, err := h.provider.Get(id, opts...)
		if err != nil {
			return prepared{}, err
		}
		resolved = append(resolved, f)
	}
	if spec.Seed != nil && job.seed == nil {
		s := *spec.Seed
		job.seed = &s
	}
	job.in = NewInputs(resolved...)
	return job, nil
}

func (h *Harness) tolerance(spec KernelSpec) oracle.Tolerance {
	if t, ok := h.opts.Tolerances[spec.Name]; ok {
		return t
	}
	if t, ok := h.opts.Tolerances[Family(spec.Name)]; ok {
		return t
	}
	return spec.Tolerance
}

func (h *Harness) runOne(ctx context.Context, job prepared) report.Result {
	spec := job.spec
	res := report.Result{
		Name:      spec.Name,
		Backend:   spec.Backend,
		Status:    report.StatusOK,
		Tolerance: spec.Tolerance.String(),
		Seed:      job.seed,
	}
	logging.LogKernel("start", spec.Name, spec.Backend, map[string]any{"fixtures": job.in.IDs()})

	if st, ok := spec.Kernel.(SelfTimed); ok {
		out, sum, err := executeTimed(ctx, st, job.in, h.opts.Warmup, h.opts.Runs)
		if err != nil {
			return failResult(res, err)
		}
		res = verify(ctx, res, spec, job.in, out, nil)
		res.Timing = report.FromSummary(h.opts.Warmup, sum)
		logKernelDone(res)
		return res
	}

	out, err := execute(ctx, spec.Kernel, job.in)
	if spec.ExpectError == nil && err != nil {
		return failResult(res, err)
	}
	res = verify(ctx, res, spec, job.in, out, err)
	if res.ErrorKind != "" {
		logKernelDone(res)
		return res
	}

	measured := func(ctx context.Context) error {
		_, err := execute(ctx, spec.Kernel, job.in)
		if spec.ExpectError != nil && errors.Is(err, spec.ExpectError) {
			return nil
		}
		return err
	}
	sample, err := timing.Measure(ctx, measured, h.opts.Warmup, h.opts.Runs)
	if err != nil {
		return failResult(res, err)
	}
	res.Timing = report.NewTiming(sample)
	logKernelDone(res)
	return res
}

// verify applies the spec's oracle to the first execution.
func verify(ctx context.Context, res report.Result, spec KernelSpec, in Inputs, out *tensor.Tensor, runErr error) report.Result {
	if spec.ExpectError != nil {
		switch {
		case runErr == nil:
			res.Actual = report.NewValue(out)
			return mismatchResult(res, fmt.Sprintf("expected %v, kernel succeeded", spec.ExpectError))
		case errors.Is(runErr, spec.ExpectError):
			res.Verdict = oracle.Match
			res.Detail = "raised " + errs.Kind(runErr)
			return res
		default:
			res = failResult(res, runErr)
			res.Verdict = oracle.Mismatch
			res.Detail = fmt.Sprintf("expected %v", spec.ExpectError)
			return res
		}
	}

	res.Actual = report.NewValue(out)
	var outcome oracle.Outcome
	switch {
	case spec.Expected != nil:
		res.Expected = report.NewValue(spec.Expected)
		outcome = oracle.Verify(out, spec.Expected, spec.Tolerance)
	case spec.Reference != nil:
		ref, err := execute(ctx, spec.Reference, in)
		if err != nil {
			return failResult(res, fmt.Errorf("reference: %w", err))
		}
		res.Expected = report.NewValue(ref)
		outcome = oracle.Compare(out, ref, spec.Tolerance)
	case spec.Check != nil:
		if out == nil {
			return mismatchResult(res, "kernel produced no value to check")
		}
		outcome = spec.Check(out, spec.Tolerance)
	default:
		return res
	}

	res.Verdict = outcome.Verdict
	res.Detail = outcome.Detail
	if outcome.Index >= 0 {
		d := outcome.MaxAbsDelta
		res.MaxAbsDelta = &d
	}
	if outcome.Verdict == oracle.Mismatch {
		res.Status = report.StatusFailed
	}
	return res
}

func mismatchResult(res report.Result, detail string) report.Result {
	res.Verdict = oracle.Mismatch
	res.Status = report.StatusFailed
	res.Detail = detail
	return res
}

func failResult(res report.Result, err error) report.Result {
	res.Status = report.StatusFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, errs.ErrCanceled) {
		res.Status = report.StatusSkipped
	}
	res.ErrorKind = errs.Kind(err)
	res.Error = err.Error()
	res.Timing = nil
	logging.LogKernel("error", res.Name, res.Backend, err)
	return res
}

func skippedResult(job prepared, cause error) report.Result {
	err := fmt.Errorf("%w: %v", errs.ErrCanceled, cause)
	return report.Result{
		Name:      job.spec.Name,
		Backend:   job.spec.Backend,
		Status:    report.StatusSkipped,
		Tolerance: job.spec.Tolerance.String(),
		ErrorKind: errs.KindCanceled,
		Error:     err.Error(),
		Seed:      job.seed,
	}
}

func logKernelDone(res report.Result) {
	payload := map[string]any{"status": res.Status}
	if res.Verdict != "" {
		payload["verdict"] = res.Verdict
	}
	if res.Timing != nil {
		payload["mean_seconds"] = res.Timing.MeanSeconds
	}
	logging.LogKernel("done", res.Name, res.Backend, payload)
}

// execute runs k once, turning panics into execution errors and non-finite
// output into a numeric domain error.
func execute(ctx context.Context, k Kernel, in Inputs) (out *tensor.Tensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errs.KernelExecution(nil, "kernel panicked: %v", r)
		}
	}()
	out, err = k.Execute(ctx, in)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := out.CheckFinite(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func executeTimed(ctx context.Context, k SelfTimed, in Inputs, warmup, runs int) (out *tensor.Tensor, sum timing.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, sum, err = nil, timing.Summary{}, errs.KernelExecution(nil, "kernel panicked: %v", r)
		}
	}()
	out, sum, err = k.ExecuteTimed(ctx, in, warmup, runs)
	if err != nil {
		return nil, timing.Summary{}, err
	}
	if out != nil {
		if err := out.CheckFinite(); err != nil {
			return nil, timing.Summary{}, err
		}
	}
	return out, sum, nil
}
