package catalog

import (
	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/tensor"
)

const (
	eigenMaxIter = 1000
	eigenTol     = 1e-14
)

func linalg3Specs() []benchmark.KernelSpec {
	pair := func(left, right string, op func(a, b *tensor.Tensor) (*tensor.Tensor, error)) benchmark.KernelFunc {
		return fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
			s := from(in, FixtureLinalg3)
			a, b := s.array(left), s.array(right)
			if s.err != nil {
				return nil, s.err
			}
			return op(a, b)
		})
	}
	unary := func(name string, op func(a *tensor.Tensor) (*tensor.Tensor, error)) benchmark.KernelFunc {
		return fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
			a, err := in.Array(FixtureLinalg3, name)
			if err != nil {
				return nil, err
			}
			return op(a)
		})
	}
	uses := []string{FixtureLinalg3}

	return []benchmark.KernelSpec{
		{
			Name: "linalg3.matmul", Description: "3x3 integer matrix product A·B", Fixtures: uses,
			Kernel:   pair("a", "b", kernels.MatMul),
			Expected: ints([]int{30, 24, 18}, []int{84, 69, 54}, []int{138, 114, 90}),
		},
		{
			Name: "linalg3.dot", Description: "dot product u·v", Fixtures: uses,
			Kernel: pair("u", "v", kernels.Dot), Expected: intScalar(32),
		},
		{
			Name: "linalg3.magnitude_sq", Description: "squared magnitude |u|²", Fixtures: uses,
			Kernel: unary("u", kernels.SumSquares), Expected: intScalar(14),
		},
		{
			Name: "linalg3.cross", Description: "cross product u×v", Fixtures: uses,
			Kernel: pair("u", "v", kernels.Cross), Expected: tensor.IntVector(-3, 6, -3),
		},
		{
			Name: "linalg3.polyval", Description: "p(x) = 2x³+3x²+4x+5 at x=2", Fixtures: uses,
			Kernel: fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
				s := from(in, FixtureLinalg3)
				coeffs, x := s.array("poly"), s.scalar("poly_x")
				if s.err != nil {
					return nil, s.err
				}
				return kernels.Polyval(coeffs, x)
			}),
			Expected: intScalar(41),
		},
		{
			Name: "linalg3.mean", Description: "mean of the data points", Fixtures: uses,
			Kernel: unary("points", kernels.Mean), Expected: floatScalar(35),
		},
		{
			Name: "linalg3.det", Description: "determinant of the singular matrix A", Fixtures: uses,
			Kernel: unary("a", kernels.Det), Expected: floatScalar(0),
		},
		{
			Name: "linalg3.trace", Description: "trace of A", Fixtures: uses,
			Kernel: unary("a", kernels.Trace), Expected: intScalar(15),
		},
		{
			Name: "linalg3.sum", Description: "sum of the array", Fixtures: uses,
			Kernel: unary("array", kernels.Sum), Expected: intScalar(150),
		},
		{
			Name: "linalg3.std", Description: "population standard deviation of the data points", Fixtures: uses,
			Kernel: unary("points", kernels.Std), Expected: floatScalar(14.142135623730951),
		},
		{
			Name: "linalg3.trapz", Description: "trapezoidal integral of x² over linspace(0, 1, 100)", Fixtures: uses,
			Kernel: fn(trapzSquare(kernels.Trapz)), Expected: floatScalar(0.33335033840084344),
		},
		{
			Name: "linalg3.inverse_singular", Description: "inverse of the singular matrix B must fail", Fixtures: uses,
			Kernel: unary("b", kernels.Inverse), ExpectError: errs.ErrNumericDomain,
		},
		{
			Name: "linalg3.eigen", Description: "dominant eigenvalue of A by power iteration", Fixtures: uses,
			Kernel: unary("a", func(a *tensor.Tensor) (*tensor.Tensor, error) {
				return kernels.DominantEigenvalue(a, eigenMaxIter, eigenTol)
			}),
			Expected: floatScalar(16.116843969807043),
		},
	}
}

// trapzSquare integrates x² over the fixture's linspace with integrate.
func trapzSquare(integrate func(y, x *tensor.Tensor) (*tensor.Tensor, error)) kernelFn {
	return func(in benchmark.Inputs) (*tensor.Tensor, error) {
		s := from(in, FixtureLinalg3)
		lo, hi, n := s.scalar("trapz_lo"), s.scalar("trapz_hi"), s.count("trapz_n")
		if s.err != nil {
			return nil, s.err
		}
		x, err := kernels.Linspace(lo, hi, n)
		if err != nil {
			return nil, err
		}
		y, err := kernels.Map(x, tensor.Float, func(v float64) float64 { return v * v })
		if err != nil {
			return nil, err
		}
		return integrate(y, x)
	}
}

func matrix4Specs() []benchmark.KernelSpec {
	pair := func(left, right string, op func(a, b *tensor.Tensor) (*tensor.Tensor, error)) benchmark.KernelFunc {
		return fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
			s := from(in, FixtureMatrix4)
			a, b := s.array(left), s.array(right)
			if s.err != nil {
				return nil, s.err
			}
			return op(a, b)
		})
	}
	unary := func(name string, op func(a *tensor.Tensor) (*tensor.Tensor, error)) benchmark.KernelFunc {
		return fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
			a, err := in.Array(FixtureMatrix4, name)
			if err != nil {
				return nil, err
			}
			return op(a)
		})
	}
	uses := []string{FixtureMatrix4}

	return []benchmark.KernelSpec{
		{
			Name: "matrix4.matmul", Description: "4x4 integer matrix product", Fixtures: uses,
			Kernel: pair("a", "b", kernels.MatMul),
			Expected: ints(
				[]int{250, 260, 270, 280},
				[]int{618, 644, 670, 696},
				[]int{986, 1028, 1070, 1112},
				[]int{1354, 1412, 1470, 1528},
			),
		},
		{
			Name: "matrix4.dot", Description: "dot product of two 8-vectors", Fixtures: uses,
			Kernel: pair("u", "v", kernels.Dot), Expected: intScalar(492),
		},
		{
			Name: "matrix4.matvec", Description: "matrix-vector product A·x", Fixtures: uses,
			Kernel: pair("a", "x", kernels.MatVec), Expected: tensor.IntVector(30, 70, 110, 150),
		},
		{
			Name: "matrix4.add", Description: "elementwise sum A+B", Fixtures: uses,
			Kernel: pair("a", "b", kernels.Add),
			Expected: ints(
				[]int{18, 20, 22, 24},
				[]int{26, 28, 30, 32},
				[]int{34, 36, 38, 40},
				[]int{42, 44, 46, 48},
			),
		},
		{
			Name: "matrix4.hadamard", Description: "elementwise product A∘B", Fixtures: uses,
			Kernel: pair("a", "b", kernels.Hadamard),
			Expected: ints(
				[]int{17, 36, 57, 80},
				[]int{105, 132, 161, 192},
				[]int{225, 260, 297, 336},
				[]int{377, 420, 465, 512},
			),
		},
		{
			Name: "matrix4.transpose", Description: "transpose of A", Fixtures: uses,
			Kernel: unary("a", kernels.Transpose),
			Expected: ints(
				[]int{1, 5, 9, 13},
				[]int{2, 6, 10, 14},
				[]int{3, 7, 11, 15},
				[]int{4, 8, 12, 16},
			),
		},
		{
			Name: "matrix4.frobenius_sq", Description: "sum of squared entries of A", Fixtures: uses,
			Kernel: unary("a", kernels.SumSquares), Expected: intScalar(1496),
		},
		{
			Name: "matrix4.norm_sq", Description: "squared norm of u", Fixtures: uses,
			Kernel: unary("u", kernels.SumSquares), Expected: intScalar(204),
		},
		{
			Name: "matrix4.trace", Description: "trace of A", Fixtures: uses,
			Kernel: unary("a", kernels.Trace), Expected: intScalar(34),
		},
		{
			Name: "matrix4.det2", Description: "determinant of the leading 2x2 block of A", Fixtures: uses,
			Kernel: unary("a", func(a *tensor.Tensor) (*tensor.Tensor, error) {
				block, err := leadingBlock(a, 2)
				if err != nil {
					return nil, err
				}
				return kernels.Det(block)
			}),
			Expected: floatScalar(-4),
		},
		{
			Name: "matrix4.composite", Description: "sum of the leading entry of every matrix4 result", Fixtures: uses,
			Kernel: fn(matrix4Composite), Expected: intScalar(2538),
		},
	}
}

func leadingBlock(a *tensor.Tensor, n int) (*tensor.Tensor, error) {
	rows, err := kernels.SliceRows(a, 0, n)
	if err != nil {
		return nil, err
	}
	return kernels.SliceCols(rows, 0, n)
}

// matrix4Composite folds every matrix4 operation into one integer: C[0][0]
// + u·v + (A·x)[0] + (A+B)[0][0] + (A∘B)[0][0] + Aᵀ[0][0] + ‖A‖² + ‖u‖² +
// tr(A) + det₂(A).
func matrix4Composite(in benchmark.Inputs) (*tensor.Tensor, error) {
	s := from(in, FixtureMatrix4)
	a, b, u, v, x := s.array("a"), s.array("b"), s.array("u"), s.array("v"), s.array("x")
	if s.err != nil {
		return nil, s.err
	}
	steps := []func() (float64, error){
		func() (float64, error) { return first(kernels.MatMul(a, b)) },
		func() (float64, error) { return first(kernels.Dot(u, v)) },
		func() (float64, error) { return first(kernels.MatVec(a, x)) },
		func() (float64, error) { return first(kernels.Add(a, b)) },
		func() (float64, error) { return first(kernels.Hadamard(a, b)) },
		func() (float64, error) { return first(kernels.Transpose(a)) },
		func() (float64, error) { return first(kernels.SumSquares(a)) },
		func() (float64, error) { return first(kernels.SumSquares(u)) },
		func() (float64, error) { return first(kernels.Trace(a)) },
		func() (float64, error) {
			// exact integer 2x2 determinant
			return a.At(0, 0)*a.At(1, 1) - a.At(0, 1)*a.At(1, 0), nil
		},
	}
	var total float64
	for _, step := range steps {
		v, err := step()
		if err != nil {
			return nil, err
		}
		total += v
	}
	return intScalar(total), nil
}

// first returns the leading element of a kernel result.
func first(t *tensor.Tensor, err error) (float64, error) {
	if err != nil {
		return 0, err
	}
	return t.Float64s()[0], nil
}
