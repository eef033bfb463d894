// Package kernels is the native (hand-written) numeric backend.
//
// Every kernel is a pure function: it never mutates its inputs, holds no
// state between calls and returns an explicit error instead of NaN, Inf or a
// silent default. Integer-dtype inputs produce integer-dtype outputs wherever
// the operation is closed over the integers.
package kernels

import (
	"math"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

// singularEpsilon is the relative pivot magnitude below which a matrix is
// treated as singular.
const singularEpsilon = 1e-12

func resultType(ts ...*tensor.Tensor) tensor.DType {
	for _, t := range ts {
		if t.DType() != tensor.Int {
			return tensor.Float
		}
	}
	return tensor.Int
}

func requireMatrix(name string, t *tensor.Tensor) error {
	if t == nil || t.Dims() != 2 {
		return errs.ShapeMismatch("%s must be a matrix", name)
	}
	return nil
}

func requireVector(name string, t *tensor.Tensor) error {
	if t == nil || t.Dims() != 1 {
		return errs.ShapeMismatch("%s must be a vector", name)
	}
	return nil
}

func requireSquare(name string, t *tensor.Tensor) error {
	if err := requireMatrix(name, t); err != nil {
		return err
	}
	if t.Rows() != t.Cols() {
		return errs.ShapeMismatch("%s must be square, got %v", name, t.Shape())
	}
	return nil
}

// MatMul computes C = A·B for A (m×k) and B (k×n).
func MatMul(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireMatrix("A", a); err != nil {
		return nil, err
	}
	if err := requireMatrix("B", b); err != nil {
		return nil, err
	}
	m, k, n := a.Rows(), a.Cols(), b.Cols()
	if b.Rows() != k {
		return nil, errs.ShapeMismatch("cannot multiply %v by %v", a.Shape(), b.Shape())
	}

	ad, bd := a.Float64s(), b.Float64s()
	out := make([]float64, m*n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for p := 0; p < k; p++ {
				sum += ad[i*k+p] * bd[p*n+j]
			}
			out[i*n+j] = sum
		}
	}
	return tensor.FromSlice(resultType(a, b), out, m, n)
}

// MatVec computes y = A·x for A (m×k) and x (k).
func MatVec(a, x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireMatrix("A", a); err != nil {
		return nil, err
	}
	if err := requireVector("x", x); err != nil {
		return nil, err
	}
	m, k := a.Rows(), a.Cols()
	if x.Size() != k {
		return nil, errs.ShapeMismatch("cannot multiply %v by vector of length %d", a.Shape(), x.Size())
	}
	ad, xd := a.Float64s(), x.Float64s()
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		var sum float64
		for p := 0; p < k; p++ {
			sum += ad[i*k+p] * xd[p]
		}
		out[i] = sum
	}
	return tensor.FromSlice(resultType(a, x), out, m)
}

// Transpose returns Aᵀ.
func Transpose(a *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireMatrix("A", a); err != nil {
		return nil, err
	}
	m, n := a.Rows(), a.Cols()
	ad := a.Float64s()
	out := make([]float64, m*n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out[j*m+i] = ad[i*n+j]
		}
	}
	return tensor.FromSlice(a.DType(), out, n, m)
}

// Add is elementwise addition.
func Add(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return elementwise(a, b, func(x, y float64) float64 { return x + y })
}

// Hadamard is elementwise multiplication.
func Hadamard(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return elementwise(a, b, func(x, y float64) float64 { return x * y })
}

func elementwise(a, b *tensor.Tensor, op func(x, y float64) float64) (*tensor.Tensor, error) {
	if !a.SameShape(b) {
		return nil, errs.ShapeMismatch("elementwise operands %v and %v differ", a.Shape(), b.Shape())
	}
	ad, bd := a.Float64s(), b.Float64s()
	out := make([]float64, len(ad))
	for i := range ad {
		out[i] = op(ad[i], bd[i])
	}
	return tensor.FromSlice(resultType(a, b), out, a.Shape()...)
}

// Trace sums the diagonal of a square matrix.
func Trace(a *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireSquare("A", a); err != nil {
		return nil, err
	}
	var sum float64
	for i := 0; i < a.Rows(); i++ {
		sum += a.At(i, i)
	}
	return tensor.Scalar(a.DType(), sum), nil
}

// Dot returns u·v.
func Dot(u, v *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireVector("u", u); err != nil {
		return nil, err
	}
	if err := requireVector("v", v); err != nil {
		return nil, err
	}
	if u.Size() != v.Size() {
		return nil, errs.ShapeMismatch("dot of lengths %d and %d", u.Size(), v.Size())
	}
	ud, vd := u.Float64s(), v.Float64s()
	var sum float64
	for i := range ud {
		sum += ud[i] * vd[i]
	}
	return tensor.Scalar(resultType(u, v), sum), nil
}

// Cross returns u×v for 3-vectors.
func Cross(u, v *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireVector("u", u); err != nil {
		return nil, err
	}
	if err := requireVector("v", v); err != nil {
		return nil, err
	}
	if u.Size() != 3 || v.Size() != 3 {
		return nil, errs.ShapeMismatch("cross product needs 3-vectors, got %d and %d", u.Size(), v.Size())
	}
	a, b := u.Float64s(), v.Float64s()
	return tensor.FromSlice(resultType(u, v), []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}, 3)
}

// SumSquares returns Σ aᵢ², the squared Frobenius norm for matrices and the
// squared magnitude for vectors.
func SumSquares(a *tensor.Tensor) (*tensor.Tensor, error) {
	var sum float64
	for _, v := range a.Float64s() {
		sum += v * v
	}
	return tensor.Scalar(a.DType(), sum), nil
}

// Det returns the determinant using Gaussian elimination with partial
// pivoting. A matrix whose pivot falls below the singularity threshold has a
// determinant of exactly zero.
func Det(a *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireSquare("A", a); err != nil {
		return nil, err
	}
	n := a.Rows()
	m := a.Data()
	tol := singularEpsilon * maxAbs(m)
	det := 1.0
	for col := 0; col < n; col++ {
		pivot := pivotRow(m, n, col)
		if math.Abs(m[pivot*n+col]) <= tol {
			return tensor.Scalar(tensor.Float, 0), nil
		}
		if pivot != col {
			swapRows(m, n, pivot, col)
			det = -det
		}
		p := m[col*n+col]
		det *= p
		for r := col + 1; r < n; r++ {
			f := m[r*n+col] / p
			for c := col; c < n; c++ {
				m[r*n+c] -= f * m[col*n+c]
			}
		}
	}
	return tensor.Scalar(tensor.Float, det), nil
}

// Inverse returns A⁻¹ by Gauss-Jordan elimination. A singular matrix is a
// numeric domain error, never a zero matrix.
func Inverse(a *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireSquare("A", a); err != nil {
		return nil, err
	}
	n := a.Rows()
	m := a.Data()
	tol := singularEpsilon * maxAbs(m)
	inv := make([]float64, n*n)
	for i := 0; i < n; i++ {
		inv[i*n+i] = 1
	}
	for col := 0; col < n; col++ {
		pivot := pivotRow(m, n, col)
		if math.Abs(m[pivot*n+col]) <= tol {
			return nil, errs.NumericDomain("matrix %v is singular", a.Shape())
		}
		swapRows(m, n, pivot, col)
		swapRows(inv, n, pivot, col)
		p := m[col*n+col]
		for c := 0; c < n; c++ {
			m[col*n+c] /= p
			inv[col*n+c] /= p
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := m[r*n+col]
			for c := 0; c < n; c++ {
				m[r*n+c] -= f * m[col*n+c]
				inv[r*n+c] -= f * inv[col*n+c]
			}
		}
	}
	out, err := tensor.FromSlice(tensor.Float, inv, n, n)
	if err != nil {
		return nil, err
	}
	return out, out.CheckFinite()
}

// DominantEigenvalue estimates the largest-magnitude eigenvalue by power
// iteration with a Rayleigh quotient.
func DominantEigenvalue(a *tensor.Tensor, maxIter int, tol float64) (*tensor.Tensor, error) {
	if err := requireSquare("A", a); err != nil {
		return nil, err
	}
	n := a.Rows()
	ad := a.Float64s()
	x := make([]float64, n)
	for i := range x {
		x[i] = 1
	}
	y := make([]float64, n)
	lambda := 0.0
	for iter := 0; iter < maxIter; iter++ {
		for i := 0; i < n; i++ {
			var s float64
			for j := 0; j < n; j++ {
				s += ad[i*n+j] * x[j]
			}
			y[i] = s
		}
		var num, den, norm float64
		for i := 0; i < n; i++ {
			num += x[i] * y[i]
			den += x[i] * x[i]
			norm += y[i] * y[i]
		}
		if norm == 0 {
			return nil, errs.NumericDomain("power iteration collapsed to the zero vector")
		}
		next := num / den
		norm = math.Sqrt(norm)
		for i := range x {
			x[i] = y[i] / norm
		}
		if iter > 0 && math.Abs(next-lambda) <= tol*math.Max(1, math.Abs(next)) {
			return tensor.Scalar(tensor.Float, next), nil
		}
		lambda = next
	}
	return nil, errs.NumericDomain("power iteration did not converge in %d iterations", maxIter)
}

func pivotRow(m []float64, n, col int) int {
	best := col
	for r := col + 1; r < n; r++ {
		if math.Abs(m[r*n+col]) > math.Abs(m[best*n+col]) {
			best = r
		}
	}
	return best
}

func swapRows(m []float64, n, i, j int) {
	if i == j {
		return
	}
	for c := 0; c < n; c++ {
		m[i*n+c], m[j*n+c] = m[j*n+c], m[i*n+c]
	}
}

func maxAbs(m []float64) float64 {
	best := 0.0
	for _, v := range m {
		if a := math.Abs(v); a > best {
			best = a
		}
	}
	return best
}
