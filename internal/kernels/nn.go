package kernels

import (
	"math"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

// Activation selects the nonlinearity applied to a network's output layer.
type Activation int

const (
	ActivationNone Activation = iota
	ActivationReLU
	ActivationSigmoid
	ActivationSoftmax
)

// Dense is a fully connected layer y = W·x + B with W shaped (out×in).
type Dense struct {
	W *tensor.Tensor
	B *tensor.Tensor
}

// Apply runs the affine transform on a vector (in) or a batch matrix
// (n×in, one sample per row).
func (d Dense) Apply(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireMatrix("W", d.W); err != nil {
		return nil, err
	}
	if err := requireVector("B", d.B); err != nil {
		return nil, err
	}
	if d.B.Size() != d.W.Rows() {
		return nil, errs.ShapeMismatch("bias length %d does not match %d outputs", d.B.Size(), d.W.Rows())
	}
	switch x.Dims() {
	case 1:
		z, err := MatVec(d.W, x)
		if err != nil {
			return nil, err
		}
		return Add(z, d.B)
	case 2:
		wt, err := Transpose(d.W)
		if err != nil {
			return nil, err
		}
		z, err := MatMul(x, wt)
		if err != nil {
			return nil, err
		}
		return addRowVector(z, d.B)
	default:
		return nil, errs.ShapeMismatch("dense input must be a vector or batch matrix, got %v", x.Shape())
	}
}

func addRowVector(m, v *tensor.Tensor) (*tensor.Tensor, error) {
	rows, cols := m.Rows(), m.Cols()
	if v.Size() != cols {
		return nil, errs.ShapeMismatch("cannot broadcast vector of %d over %d columns", v.Size(), cols)
	}
	md, vd := m.Float64s(), v.Float64s()
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = md[i*cols+j] + vd[j]
		}
	}
	return tensor.FromSlice(resultType(m, v), out, rows, cols)
}

// Forward runs x through layers with ReLU between them and final applied
// to the last layer's output.
func Forward(layers []Dense, x *tensor.Tensor, final Activation) (*tensor.Tensor, error) {
	if len(layers) == 0 {
		return nil, errs.ShapeMismatch("network has no layers")
	}
	h := x
	for i, layer := range layers {
		z, err := layer.Apply(h)
		if err != nil {
			return nil, err
		}
		if i < len(layers)-1 {
			if h, err = ReLU(z); err != nil {
				return nil, err
			}
			continue
		}
		h = z
	}
	return Activate(h, final)
}

// Activate applies a to x.
func Activate(x *tensor.Tensor, a Activation) (*tensor.Tensor, error) {
	switch a {
	case ActivationNone:
		return x, nil
	case ActivationReLU:
		return ReLU(x)
	case ActivationSigmoid:
		return Sigmoid(x)
	case ActivationSoftmax:
		return Softmax(x)
	default:
		return nil, errs.InvalidConfig("unknown activation %d", a)
	}
}

// Sigmoid is the elementwise logistic function.
func Sigmoid(x *tensor.Tensor) (*tensor.Tensor, error) {
	return Map(x, tensor.Float, func(v float64) float64 { return 1 / (1 + math.Exp(-v)) })
}

// Softmax normalizes a vector, or each row of a matrix, subtracting the
// maximum first so large logits cannot overflow.
func Softmax(x *tensor.Tensor) (*tensor.Tensor, error) {
	return SoftmaxTemperature(x, 1)
}

// SoftmaxTemperature is Softmax over (x - max) / t.
func SoftmaxTemperature(x *tensor.Tensor, t float64) (*tensor.Tensor, error) {
	if t <= 0 {
		return nil, errs.NumericDomain("softmax temperature must be positive, got %v", t)
	}
	var rows, cols int
	switch x.Dims() {
	case 1:
		rows, cols = 1, x.Size()
	case 2:
		rows, cols = x.Rows(), x.Cols()
	default:
		return nil, errs.ShapeMismatch("softmax input must be a vector or matrix, got %v", x.Shape())
	}
	xd := x.Float64s()
	out := make([]float64, len(xd))
	for i := 0; i < rows; i++ {
		row := xd[i*cols : (i+1)*cols]
		peak := math.Inf(-1)
		for _, v := range row {
			peak = math.Max(peak, v)
		}
		var sum float64
		for j, v := range row {
			e := v - peak
			if t != 1 {
				e /= t
			}
			e = math.Exp(e)
			out[i*cols+j] = e
			sum += e
		}
		for j := range row {
			out[i*cols+j] /= sum
		}
	}
	res, err := tensor.FromSlice(tensor.Float, out, x.Shape()...)
	if err != nil {
		return nil, err
	}
	return res, res.CheckFinite()
}

// Attention computes softmax(Q·Kᵀ / √d_k)·V.
func Attention(q, k, v *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireMatrix("Q", q); err != nil {
		return nil, err
	}
	return AttentionScaled(q, k, v, math.Sqrt(float64(q.Cols())))
}

// AttentionScaled is Attention with an explicit score divisor; a divisor of
// one leaves the scores unscaled.
func AttentionScaled(q, k, v *tensor.Tensor, divisor float64) (*tensor.Tensor, error) {
	weights, err := AttentionWeights(q, k, divisor)
	if err != nil {
		return nil, err
	}
	return MatMul(weights, v)
}

// AttentionWeights returns the row-stochastic matrix softmax(Q·Kᵀ / divisor).
func AttentionWeights(q, k *tensor.Tensor, divisor float64) (*tensor.Tensor, error) {
	if divisor <= 0 {
		return nil, errs.NumericDomain("attention divisor must be positive, got %v", divisor)
	}
	kt, err := Transpose(k)
	if err != nil {
		return nil, err
	}
	scores, err := MatMul(q, kt)
	if err != nil {
		return nil, err
	}
	if divisor != 1 {
		if scores, err = Map(scores, tensor.Float, func(s float64) float64 { return s / divisor }); err != nil {
			return nil, err
		}
	}
	return Softmax(scores)
}

// Log is the elementwise natural logarithm; non-positive inputs are a
// numeric domain error.
func Log(x *tensor.Tensor) (*tensor.Tensor, error) {
	for i, v := range x.Float64s() {
		if v <= 0 {
			return nil, errs.NumericDomain("log of non-positive element %d (%v)", i, v)
		}
	}
	return Map(x, tensor.Float, math.Log)
}

// CrossEntropy returns -Σ target·log(max(p, eps)).
func CrossEntropy(p, target *tensor.Tensor, eps float64) (*tensor.Tensor, error) {
	if !p.SameShape(target) {
		return nil, errs.ShapeMismatch("prediction %v and target %v differ", p.Shape(), target.Shape())
	}
	clamped, err := Map(p, tensor.Float, func(v float64) float64 { return math.Max(v, eps) })
	if err != nil {
		return nil, err
	}
	logs, err := Log(clamped)
	if err != nil {
		return nil, err
	}
	var loss float64
	td, ld := target.Float64s(), logs.Float64s()
	for i := range td {
		loss -= td[i] * ld[i]
	}
	return tensor.Scalar(tensor.Float, loss), nil
}
