// Package benchmark runs registered kernels against their fixtures, verifies
// the first execution of each and times the rest.
package benchmark

import (
	"context"
	"sort"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/external"
	"github.com/mwiater/kernbench/internal/fixtures"
	"github.com/mwiater/kernbench/internal/oracle"
	"github.com/mwiater/kernbench/internal/tensor"
	"github.com/mwiater/kernbench/internal/timing"
)

// Backend names recorded in reports.
const (
	BackendNative    = "native"
	BackendReference = "reference"
	BackendExternal  = "external"
)

// Inputs gives a kernel read access to the fixtures it declared.
type Inputs struct {
	fixtures map[string]*fixtures.Fixture
}

// NewInputs indexes fs by fixture id.
func NewInputs(fs ...*fixtures.Fixture) Inputs {
	in := Inputs{fixtures: make(map[string]*fixtures.Fixture, len(fs))}
	for _, f := range fs {
		in.fixtures[f.ID()] = f
	}
	return in
}

// Fixture returns a declared fixture.
func (in Inputs) Fixture(id string) (*fixtures.Fixture, error) {
	f, ok := in.fixtures[id]
	if !ok {
		return nil, errs.UnknownFixture(id)
	}
	return f, nil
}

// Array returns a fixture array without copying. Kernels must treat it as
// read-only.
func (in Inputs) Array(id, name string) (*tensor.Tensor, error) {
	f, err := in.Fixture(id)
	if err != nil {
		return nil, err
	}
	return f.View(name)
}

// Scalar returns a fixture scalar.
func (in Inputs) Scalar(id, name string) (float64, error) {
	f, err := in.Fixture(id)
	if err != nil {
		return 0, err
	}
	return f.Scalar(name)
}

// IDs lists the resolved fixture ids in sorted order.
func (in Inputs) IDs() []string {
	ids := make([]string, 0, len(in.fixtures))
	for id := range in.fixtures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Kernel computes one result from its inputs. Implementations must be
// deterministic and must not modify the inputs.
type Kernel interface {
	Execute(ctx context.Context, in Inputs) (*tensor.Tensor, error)
}

// KernelFunc adapts a plain function to Kernel.
type KernelFunc func(ctx context.Context, in Inputs) (*tensor.Tensor, error)

// Execute calls f.
func (f KernelFunc) Execute(ctx context.Context, in Inputs) (*tensor.Tensor, error) {
	return f(ctx, in)
}

// SelfTimed is implemented by kernels that measure themselves, such as
// external binaries. The harness calls ExecuteTimed once instead of timing
// Execute.
type SelfTimed interface {
	ExecuteTimed(ctx context.Context, in Inputs, warmup, runs int) (*tensor.Tensor, timing.Summary, error)
}

// KernelSpec registers one kernel with the harness.
type KernelSpec struct {
	Name        string
	Backend     string
	Description string
	Fixtures    []string
	Kernel      Kernel
	// Expected is the known-good output. When nil and Reference is set,
	// the output is cross-checked against Reference instead.
	Expected  *tensor.Tensor
	Reference Kernel
	// Check is a custom oracle for outputs that carry their own evidence,
	// such as a loss before and after a checkpoint round trip.
	Check func(out *tensor.Tensor, tol oracle.Tolerance) oracle.Outcome
	// ExpectError marks kernels whose correct behavior is to fail with
	// an error matching this sentinel.
	ExpectError error
	Tolerance   oracle.Tolerance
	Seed        *uint64
}

// ExternalKernel runs a benchmark binary as a self-timed kernel. The
// payload's optional result becomes the kernel output.
type ExternalKernel struct {
	Runner  external.Runner
	Request external.Request
}

// Execute runs the binary with the configured request.
func (k ExternalKernel) Execute(ctx context.Context, _ Inputs) (*tensor.Tensor, error) {
	res, err := k.Runner.Run(ctx, k.Request)
	if err != nil {
		return nil, err
	}
	return payloadValue(res.Payload), nil
}

// ExecuteTimed runs the binary once with the harness warm-up and run counts
// and converts its self-reported milliseconds to a summary in seconds.
func (k ExternalKernel) ExecuteTimed(ctx context.Context, _ Inputs, warmup, runs int) (*tensor.Tensor, timing.Summary, error) {
	req := k.Request
	req.Warmup = warmup
	req.Runs = runs
	res, err := k.Runner.Run(ctx, req)
	if err != nil {
		return nil, timing.Summary{}, err
	}
	p := res.Payload
	if p.Runs != runs {
		return nil, timing.Summary{}, errs.KernelExecution(nil, "%s reported %d runs, requested %d", k.Runner.Binary, p.Runs, runs)
	}
	median := p.MedianMS
	if median == 0 {
		median = p.MeanMS
	}
	sum := timing.Summary{
		Count: p.Runs,
		Mean:  p.MeanMS / 1e3,
		Min:   p.MinMS / 1e3,
		Max:   p.MaxMS / 1e3,
		P50:   median / 1e3,
	}
	return payloadValue(p), sum, nil
}

func payloadValue(p external.Payload) *tensor.Tensor {
	if p.Result == nil {
		return nil
	}
	return tensor.Scalar(tensor.Float, *p.Result)
}
