package catalog

import (
	"context"

	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/tensor"
)

// kernelFn is the body of a catalog kernel; the context is unused by
// in-process kernels.
type kernelFn func(in benchmark.Inputs) (*tensor.Tensor, error)

func fn(f kernelFn) benchmark.KernelFunc {
	return func(_ context.Context, in benchmark.Inputs) (*tensor.Tensor, error) {
		return f(in)
	}
}

// NewRegistry returns a registry holding every built-in kernel.
func NewRegistry() (*benchmark.Registry, error) {
	r := benchmark.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds the built-in kernels to r in their canonical order.
func Register(r *benchmark.Registry) error {
	groups := [][]benchmark.KernelSpec{
		linalg3Specs(),
		matrix4Specs(),
		nnSpecs(),
		cnnSpecs(),
		attentionSpecs(),
		regressionSpecs(),
		mlpSpecs(),
		checkpointSpecs(),
		referenceSpecs(),
	}
	for _, group := range groups {
		for _, spec := range group {
			if err := r.Register(spec); err != nil {
				return err
			}
		}
	}
	return nil
}
