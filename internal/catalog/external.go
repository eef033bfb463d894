package catalog

import (
	"fmt"

	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/external"
)

// External wraps a benchmark binary as a self-timed kernel. The binary's
// optional result is reported without a verdict.
func External(name string, runner external.Runner, req external.Request) benchmark.KernelSpec {
	return benchmark.KernelSpec{
		Name:        name,
		Backend:     benchmark.BackendExternal,
		Description: fmt.Sprintf("external binary %s (size %d)", runner.Binary, req.Size),
		Kernel:      benchmark.ExternalKernel{Runner: runner, Request: req},
	}
}
