package kernels

import (
	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

// GradientStep returns params - lr·grads.
func GradientStep(params, grads *tensor.Tensor, lr float64) (*tensor.Tensor, error) {
	if !params.SameShape(grads) {
		return nil, errs.ShapeMismatch("params %v and grads %v differ", params.Shape(), grads.Shape())
	}
	pd, gd := params.Float64s(), grads.Float64s()
	out := make([]float64, len(pd))
	for i := range pd {
		out[i] = pd[i] - lr*gd[i]
	}
	t, err := tensor.FromSlice(tensor.Float, out, params.Shape()...)
	if err != nil {
		return nil, err
	}
	return t, t.CheckFinite()
}

// MSE is the mean squared difference between pred and target.
func MSE(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	if !pred.SameShape(target) {
		return nil, errs.ShapeMismatch("prediction %v and target %v differ", pred.Shape(), target.Shape())
	}
	pd, td := pred.Float64s(), target.Float64s()
	var sum float64
	for i := range pd {
		d := td[i] - pd[i]
		sum += d * d
	}
	loss := tensor.Scalar(tensor.Float, sum/float64(len(pd)))
	return loss, loss.CheckFinite()
}

// LinearFit is the outcome of TrainLinear. Losses[i] is the MSE measured
// before the i-th update.
type LinearFit struct {
	Weight float64
	Bias   float64
	Losses []float64
}

// TrainLinear fits y ≈ w·x + b by full-batch gradient descent on MSE.
func TrainLinear(x, y *tensor.Tensor, w, b, lr float64, epochs int) (LinearFit, error) {
	if err := requireVector("x", x); err != nil {
		return LinearFit{}, err
	}
	if !x.SameShape(y) {
		return LinearFit{}, errs.ShapeMismatch("x %v and y %v differ", x.Shape(), y.Shape())
	}
	if epochs <= 0 {
		return LinearFit{}, errs.InvalidConfig("epochs must be positive, got %d", epochs)
	}
	xd, yd := x.Float64s(), y.Float64s()
	n := float64(len(xd))
	fit := LinearFit{Losses: make([]float64, 0, epochs)}
	for epoch := 0; epoch < epochs; epoch++ {
		var sq, gw, gb float64
		for i := range xd {
			e := yd[i] - (w*xd[i] + b)
			sq += e * e
			gw += e * xd[i]
			gb += e
		}
		fit.Losses = append(fit.Losses, sq/n)
		w -= lr * (-2 * gw / n)
		b -= lr * (-2 * gb / n)
	}
	fit.Weight, fit.Bias = w, b
	loss := tensor.Vector(tensor.Float, fit.Losses...)
	if err := loss.CheckFinite(); err != nil {
		return LinearFit{}, err
	}
	return fit, nil
}
