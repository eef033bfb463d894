package kernels

import (
	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

// MLP is a one-hidden-layer perceptron: ReLU hidden units, a sigmoid output
// and mean squared error loss. W1 is (hidden×in), W2 is (out×hidden).
type MLP struct {
	W1, B1 *tensor.Tensor
	W2, B2 *tensor.Tensor
}

// MLPGrads holds dLoss/dParam for every MLP parameter.
type MLPGrads struct {
	W1, B1 *tensor.Tensor
	W2, B2 *tensor.Tensor
}

type mlpPass struct {
	z1, a1, out *tensor.Tensor
}

func (m MLP) layers() (Dense, Dense) {
	return Dense{W: m.W1, B: m.B1}, Dense{W: m.W2, B: m.B2}
}

func (m MLP) pass(x *tensor.Tensor) (mlpPass, error) {
	if err := requireMatrix("X", x); err != nil {
		return mlpPass{}, err
	}
	l1, l2 := m.layers()
	z1, err := l1.Apply(x)
	if err != nil {
		return mlpPass{}, err
	}
	a1, err := ReLU(z1)
	if err != nil {
		return mlpPass{}, err
	}
	z2, err := l2.Apply(a1)
	if err != nil {
		return mlpPass{}, err
	}
	out, err := Sigmoid(z2)
	if err != nil {
		return mlpPass{}, err
	}
	return mlpPass{z1: z1, a1: a1, out: out}, nil
}

// Forward returns the network's predictions for the batch x (n×in).
func (m MLP) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	p, err := m.pass(x)
	if err != nil {
		return nil, err
	}
	return p.out, nil
}

// Loss is MSE(Forward(x), y).
func (m MLP) Loss(x, y *tensor.Tensor) (float64, error) {
	pred, err := m.Forward(x)
	if err != nil {
		return 0, err
	}
	loss, err := MSE(pred, y)
	if err != nil {
		return 0, err
	}
	return loss.Value(), nil
}

// Gradients backpropagates the MSE loss analytically. The ReLU derivative
// at exactly zero is taken as zero.
func (m MLP) Gradients(x, y *tensor.Tensor) (MLPGrads, error) {
	p, err := m.pass(x)
	if err != nil {
		return MLPGrads{}, err
	}
	if !p.out.SameShape(y) {
		return MLPGrads{}, errs.ShapeMismatch("prediction %v and target %v differ", p.out.Shape(), y.Shape())
	}

	n, hidden, in, outs := x.Rows(), m.W1.Rows(), m.W1.Cols(), m.W2.Rows()
	scale := 2 / float64(n*outs)
	od, yd := p.out.Float64s(), y.Float64s()
	dz2 := make([]float64, n*outs)
	for i := range dz2 {
		dz2[i] = scale * (od[i] - yd[i]) * od[i] * (1 - od[i])
	}

	a1, z1, xd, w2 := p.a1.Float64s(), p.z1.Float64s(), x.Float64s(), m.W2.Float64s()
	dW2 := make([]float64, outs*hidden)
	dB2 := make([]float64, outs)
	dz1 := make([]float64, n*hidden)
	for r := 0; r < n; r++ {
		for o := 0; o < outs; o++ {
			g := dz2[r*outs+o]
			dB2[o] += g
			for h := 0; h < hidden; h++ {
				dW2[o*hidden+h] += g * a1[r*hidden+h]
				dz1[r*hidden+h] += g * w2[o*hidden+h]
			}
		}
		for h := 0; h < hidden; h++ {
			if z1[r*hidden+h] <= 0 {
				dz1[r*hidden+h] = 0
			}
		}
	}

	dW1 := make([]float64, hidden*in)
	dB1 := make([]float64, hidden)
	for r := 0; r < n; r++ {
		for h := 0; h < hidden; h++ {
			g := dz1[r*hidden+h]
			dB1[h] += g
			for c := 0; c < in; c++ {
				dW1[h*in+c] += g * xd[r*in+c]
			}
		}
	}

	var grads MLPGrads
	for _, f := range []struct {
		dst   **tensor.Tensor
		data  []float64
		shape []int
	}{
		{&grads.W1, dW1, m.W1.Shape()},
		{&grads.B1, dB1, m.B1.Shape()},
		{&grads.W2, dW2, m.W2.Shape()},
		{&grads.B2, dB2, m.B2.Shape()},
	} {
		t, err := tensor.FromSlice(tensor.Float, f.data, f.shape...)
		if err != nil {
			return MLPGrads{}, err
		}
		if err := t.CheckFinite(); err != nil {
			return MLPGrads{}, err
		}
		*f.dst = t
	}
	return grads, nil
}

// Step returns a new MLP with one SGD update applied; m is unchanged.
func (m MLP) Step(g MLPGrads, lr float64) (MLP, error) {
	var next MLP
	var err error
	if next.W1, err = GradientStep(m.W1, g.W1, lr); err != nil {
		return MLP{}, err
	}
	if next.B1, err = GradientStep(m.B1, g.B1, lr); err != nil {
		return MLP{}, err
	}
	if next.W2, err = GradientStep(m.W2, g.W2, lr); err != nil {
		return MLP{}, err
	}
	if next.B2, err = GradientStep(m.B2, g.B2, lr); err != nil {
		return MLP{}, err
	}
	return next, nil
}

// Train runs epochs full-batch SGD steps and returns the trained network
// together with the loss measured before each step.
func (m MLP) Train(x, y *tensor.Tensor, lr float64, epochs int) (MLP, []float64, error) {
	if epochs <= 0 {
		return MLP{}, nil, errs.InvalidConfig("epochs must be positive, got %d", epochs)
	}
	losses := make([]float64, 0, epochs)
	cur := m
	for epoch := 0; epoch < epochs; epoch++ {
		loss, err := cur.Loss(x, y)
		if err != nil {
			return MLP{}, nil, err
		}
		losses = append(losses, loss)
		g, err := cur.Gradients(x, y)
		if err != nil {
			return MLP{}, nil, err
		}
		if cur, err = cur.Step(g, lr); err != nil {
			return MLP{}, nil, err
		}
	}
	return cur, losses, nil
}
