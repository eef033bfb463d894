package reference

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/tensor"
)

// MLPGradients backpropagates the MSE loss of m through gonum matrix
// products. It mirrors kernels.MLP.Gradients with batched matrix algebra
// instead of explicit loops.
func MLPGradients(m kernels.MLP, x, y *tensor.Tensor) (g kernels.MLPGrads, err error) {
	defer recoverShape(&err)
	X, err := toDense("X", x)
	if err != nil {
		return kernels.MLPGrads{}, err
	}
	Y, err := toDense("Y", y)
	if err != nil {
		return kernels.MLPGrads{}, err
	}
	W1, err := toDense("W1", m.W1)
	if err != nil {
		return kernels.MLPGrads{}, err
	}
	W2, err := toDense("W2", m.W2)
	if err != nil {
		return kernels.MLPGrads{}, err
	}
	if m.B1.Size() != m.W1.Rows() || m.B2.Size() != m.W2.Rows() {
		return kernels.MLPGrads{}, errs.ShapeMismatch("bias sizes do not match layer widths")
	}
	n, _ := X.Dims()
	b1, b2 := m.B1.Data(), m.B2.Data()

	var z1 mat.Dense
	z1.Mul(X, W1.T())
	z1.Apply(func(_, j int, v float64) float64 { return v + b1[j] }, &z1)
	var a1 mat.Dense
	a1.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, &z1)

	var out mat.Dense
	out.Mul(&a1, W2.T())
	out.Apply(func(_, j int, v float64) float64 { return 1 / (1 + math.Exp(-(v + b2[j]))) }, &out)

	if r, c := out.Dims(); r != y.Rows() || c != y.Cols() {
		return kernels.MLPGrads{}, errs.ShapeMismatch("prediction %dx%d and target %v differ", r, c, y.Shape())
	}
	_, outs := out.Dims()
	scale := 2 / float64(n*outs)

	var dz2 mat.Dense
	dz2.Sub(&out, Y)
	dz2.Apply(func(i, j int, v float64) float64 {
		p := out.At(i, j)
		return scale * v * p * (1 - p)
	}, &dz2)

	var dW2, da1, dz1, dW1 mat.Dense
	dW2.Mul(dz2.T(), &a1)
	da1.Mul(&dz2, W2)
	dz1.Apply(func(i, j int, v float64) float64 {
		if z1.At(i, j) <= 0 {
			return 0
		}
		return v
	}, &da1)
	dW1.Mul(dz1.T(), X)

	if g.W1, err = fromMatrix(&dW1); err != nil {
		return kernels.MLPGrads{}, err
	}
	if g.W2, err = fromMatrix(&dW2); err != nil {
		return kernels.MLPGrads{}, err
	}
	if g.B1, err = columnSums(&dz1); err != nil {
		return kernels.MLPGrads{}, err
	}
	if g.B2, err = columnSums(&dz2); err != nil {
		return kernels.MLPGrads{}, err
	}
	return g, nil
}

func columnSums(m *mat.Dense) (*tensor.Tensor, error) {
	_, c := m.Dims()
	sums := make([]float64, c)
	for j := 0; j < c; j++ {
		sums[j] = mat.Sum(m.ColView(j))
	}
	return tensor.FromSlice(tensor.Float, sums, c)
}
