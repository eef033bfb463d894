// Package reference is an independent backend built on gonum. It exists to
// cross-check the hand-written kernels: the arithmetic paths differ (BLAS
// blocking, LU factorization, LAPACK eigen solvers), so agreement within a
// tolerance is meaningful evidence that both are right.
package reference

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

func toDense(name string, t *tensor.Tensor) (*mat.Dense, error) {
	if t == nil || t.Dims() != 2 {
		return nil, errs.ShapeMismatch("%s must be a matrix", name)
	}
	return mat.NewDense(t.Rows(), t.Cols(), t.Data()), nil
}

func toVec(name string, t *tensor.Tensor) (*mat.VecDense, error) {
	if t == nil || t.Dims() != 1 {
		return nil, errs.ShapeMismatch("%s must be a vector", name)
	}
	return mat.NewVecDense(t.Size(), t.Data()), nil
}

func fromMatrix(m mat.Matrix) (*tensor.Tensor, error) {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	t, err := tensor.FromSlice(tensor.Float, out, r, c)
	if err != nil {
		return nil, err
	}
	return t, t.CheckFinite()
}

// recoverShape turns gonum's dimension panics into shape errors.
func recoverShape(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(mat.Error); ok {
			*err = errs.ShapeMismatch("gonum: %s", e.Error())
			return
		}
		panic(r)
	}
}

// MatMul computes A·B with gonum's Dense.Mul.
func MatMul(a, b *tensor.Tensor) (out *tensor.Tensor, err error) {
	defer recoverShape(&err)
	da, err := toDense("A", a)
	if err != nil {
		return nil, err
	}
	db, err := toDense("B", b)
	if err != nil {
		return nil, err
	}
	if _, k := da.Dims(); k != b.Rows() {
		return nil, errs.ShapeMismatch("cannot multiply %v by %v", a.Shape(), b.Shape())
	}
	var c mat.Dense
	c.Mul(da, db)
	return fromMatrix(&c)
}

// MatVec computes A·x.
func MatVec(a, x *tensor.Tensor) (out *tensor.Tensor, err error) {
	defer recoverShape(&err)
	da, err := toDense("A", a)
	if err != nil {
		return nil, err
	}
	vx, err := toVec("x", x)
	if err != nil {
		return nil, err
	}
	if _, k := da.Dims(); k != vx.Len() {
		return nil, errs.ShapeMismatch("cannot multiply %v by vector of length %d", a.Shape(), vx.Len())
	}
	var y mat.VecDense
	y.MulVec(da, vx)
	return tensor.FromSlice(tensor.Float, y.RawVector().Data, y.Len())
}

// Dot returns u·v.
func Dot(u, v *tensor.Tensor) (*tensor.Tensor, error) {
	if u.Dims() != 1 || v.Dims() != 1 || u.Size() != v.Size() {
		return nil, errs.ShapeMismatch("dot of %v and %v", u.Shape(), v.Shape())
	}
	return tensor.Scalar(tensor.Float, floats.Dot(u.Data(), v.Data())), nil
}

// Det returns det(A) via LU factorization.
func Det(a *tensor.Tensor) (*tensor.Tensor, error) {
	da, err := toDense("A", a)
	if err != nil {
		return nil, err
	}
	if r, c := da.Dims(); r != c {
		return nil, errs.ShapeMismatch("determinant of non-square %v", a.Shape())
	}
	return tensor.Scalar(tensor.Float, mat.Det(da)), nil
}

// Inverse returns A⁻¹. gonum reports both exact singularity and an
// ill-conditioned factorization; either is a numeric domain error here.
func Inverse(a *tensor.Tensor) (*tensor.Tensor, error) {
	da, err := toDense("A", a)
	if err != nil {
		return nil, err
	}
	if r, c := da.Dims(); r != c {
		return nil, errs.ShapeMismatch("inverse of non-square %v", a.Shape())
	}
	var inv mat.Dense
	if err := inv.Inverse(da); err != nil {
		return nil, errs.NumericDomain("matrix %v is singular: %v", a.Shape(), err)
	}
	return fromMatrix(&inv)
}

// DominantEigenvalue returns the eigenvalue of largest magnitude. Complex
// dominant eigenvalues are outside this harness's fixtures and rejected.
func DominantEigenvalue(a *tensor.Tensor) (*tensor.Tensor, error) {
	da, err := toDense("A", a)
	if err != nil {
		return nil, err
	}
	var eig mat.Eigen
	if ok := eig.Factorize(da, mat.EigenNone); !ok {
		return nil, errs.NumericDomain("eigen decomposition did not converge")
	}
	var best complex128
	for _, v := range eig.Values(nil) {
		if cmplx.Abs(v) > cmplx.Abs(best) {
			best = v
		}
	}
	if math.Abs(imag(best)) > 1e-12 {
		return nil, errs.NumericDomain("dominant eigenvalue %v is complex", best)
	}
	return tensor.Scalar(tensor.Float, real(best)), nil
}

// Mean is the unweighted arithmetic mean.
func Mean(a *tensor.Tensor) (*tensor.Tensor, error) {
	if a.Size() == 0 {
		return nil, errs.NumericDomain("mean of empty tensor")
	}
	return tensor.Scalar(tensor.Float, stat.Mean(a.Data(), nil)), nil
}

// Std is the population standard deviation.
func Std(a *tensor.Tensor) (*tensor.Tensor, error) {
	if a.Size() == 0 {
		return nil, errs.NumericDomain("std of empty tensor")
	}
	_, std := stat.PopMeanStdDev(a.Data(), nil)
	return tensor.Scalar(tensor.Float, std), nil
}

// Trapz integrates y over x with gonum's trapezoidal rule.
func Trapz(y, x *tensor.Tensor) (*tensor.Tensor, error) {
	if y.Dims() != 1 || x.Dims() != 1 || y.Size() != x.Size() || x.Size() < 2 {
		return nil, errs.ShapeMismatch("trapz of %v over %v", y.Shape(), x.Shape())
	}
	return tensor.Scalar(tensor.Float, integrate.Trapezoidal(x.Data(), y.Data())), nil
}

// Softmax normalizes each row via log-sum-exp rather than max subtraction.
func Softmax(x *tensor.Tensor) (*tensor.Tensor, error) {
	var rows, cols int
	switch x.Dims() {
	case 1:
		rows, cols = 1, x.Size()
	case 2:
		rows, cols = x.Rows(), x.Cols()
	default:
		return nil, errs.ShapeMismatch("softmax input must be a vector or matrix, got %v", x.Shape())
	}
	data := x.Data()
	for i := 0; i < rows; i++ {
		row := data[i*cols : (i+1)*cols]
		lse := floats.LogSumExp(row)
		for j := range row {
			row[j] = math.Exp(row[j] - lse)
		}
	}
	t, err := tensor.FromSlice(tensor.Float, data, x.Shape()...)
	if err != nil {
		return nil, err
	}
	return t, t.CheckFinite()
}
