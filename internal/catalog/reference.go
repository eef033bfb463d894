package catalog

import (
	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/reference"
	"github.com/mwiater/kernbench/internal/tensor"
)

type unaryOp func(a *tensor.Tensor) (*tensor.Tensor, error)
type binaryOp func(a, b *tensor.Tensor) (*tensor.Tensor, error)

// referenceSpecs runs the gonum backend as the kernel under test and the
// native kernel as its cross-check, so the report carries gonum timings
// next to the native ones.
func referenceSpecs() []benchmark.KernelSpec {
	uses := []string{FixtureLinalg3}
	unary := func(name string, op unaryOp) benchmark.KernelFunc {
		return fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
			a, err := in.Array(FixtureLinalg3, name)
			if err != nil {
				return nil, err
			}
			return op(a)
		})
	}
	binary := func(left, right string, op binaryOp) benchmark.KernelFunc {
		return fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
			s := from(in, FixtureLinalg3)
			a, b := s.array(left), s.array(right)
			if s.err != nil {
				return nil, s.err
			}
			return op(a, b)
		})
	}
	nativeEigen := func(a *tensor.Tensor) (*tensor.Tensor, error) {
		return kernels.DominantEigenvalue(a, eigenMaxIter, eigenTol)
	}
	// Scaled down so the distribution is not one-hot.
	softmaxOf := func(op unaryOp) unaryOp {
		return func(a *tensor.Tensor) (*tensor.Tensor, error) {
			scaled, err := kernels.Map(a, tensor.Float, func(v float64) float64 { return v / 10 })
			if err != nil {
				return nil, err
			}
			return op(scaled)
		}
	}

	pairs := []struct {
		name, description string
		kernel, native    benchmark.KernelFunc
	}{
		{"matmul", "A·B with gonum mat.Dense", binary("a", "b", reference.MatMul), binary("a", "b", kernels.MatMul)},
		{"matvec", "C·u with gonum mat.VecDense", binary("c", "u", reference.MatVec), binary("c", "u", kernels.MatVec)},
		{"dot", "u·v with gonum floats", binary("u", "v", reference.Dot), binary("u", "v", kernels.Dot)},
		{"det", "determinant of C by LU factorization", unary("c", reference.Det), unary("c", kernels.Det)},
		{"inverse", "inverse of C by LU factorization", unary("c", reference.Inverse), unary("c", kernels.Inverse)},
		{"eigen", "dominant eigenvalue of A from gonum mat.Eigen", unary("a", reference.DominantEigenvalue), unary("a", nativeEigen)},
		{"mean", "mean of the data points with gonum stat", unary("points", reference.Mean), unary("points", kernels.Mean)},
		{"std", "population standard deviation with gonum stat", unary("points", reference.Std), unary("points", kernels.Std)},
		{"trapz", "trapezoidal integral with gonum integrate", fn(trapzSquare(reference.Trapz)), fn(trapzSquare(kernels.Trapz))},
		{"softmax", "softmax of the scaled data points by log-sum-exp",
			unary("points", softmaxOf(reference.Softmax)), unary("points", softmaxOf(kernels.Softmax))},
	}

	specs := make([]benchmark.KernelSpec, 0, len(pairs))
	for _, p := range pairs {
		specs = append(specs, benchmark.KernelSpec{
			Name:        "reference." + p.name,
			Backend:     benchmark.BackendReference,
			Description: p.description,
			Fixtures:    uses,
			Kernel:      p.kernel,
			Reference:   p.native,
		})
	}
	return specs
}
