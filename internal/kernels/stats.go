package kernels

import (
	"math"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

// Polyval evaluates a polynomial with coefficients ordered from the highest
// power down, using Horner's rule.
func Polyval(coeffs *tensor.Tensor, x float64) (*tensor.Tensor, error) {
	if err := requireVector("coeffs", coeffs); err != nil {
		return nil, err
	}
	var acc float64
	for _, c := range coeffs.Float64s() {
		acc = acc*x + c
	}
	dtype := coeffs.DType()
	if x != math.Trunc(x) {
		dtype = tensor.Float
	}
	return tensor.Scalar(dtype, acc), nil
}

// Sum adds every element.
func Sum(a *tensor.Tensor) (*tensor.Tensor, error) {
	var s float64
	for _, v := range a.Float64s() {
		s += v
	}
	return tensor.Scalar(a.DType(), s), nil
}

// Mean is the arithmetic mean of every element.
func Mean(a *tensor.Tensor) (*tensor.Tensor, error) {
	if a.Size() == 0 {
		return nil, errs.NumericDomain("mean of empty tensor")
	}
	s, _ := Sum(a)
	return tensor.Scalar(tensor.Float, s.Value()/float64(a.Size())), nil
}

// Std is the population standard deviation of every element.
func Std(a *tensor.Tensor) (*tensor.Tensor, error) {
	mean, err := Mean(a)
	if err != nil {
		return nil, err
	}
	mu := mean.Value()
	var ss float64
	for _, v := range a.Float64s() {
		d := v - mu
		ss += d * d
	}
	return tensor.Scalar(tensor.Float, math.Sqrt(ss/float64(a.Size()))), nil
}

// Linspace returns n evenly spaced samples over [start, stop].
func Linspace(start, stop float64, n int) (*tensor.Tensor, error) {
	if n < 2 {
		return nil, errs.ShapeMismatch("linspace needs at least 2 samples, got %d", n)
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return tensor.FromSlice(tensor.Float, out, n)
}

// Trapz integrates y over x with the trapezoidal rule.
func Trapz(y, x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireVector("y", y); err != nil {
		return nil, err
	}
	if err := requireVector("x", x); err != nil {
		return nil, err
	}
	if y.Size() != x.Size() {
		return nil, errs.ShapeMismatch("trapz of lengths %d and %d", y.Size(), x.Size())
	}
	yd, xd := y.Float64s(), x.Float64s()
	var area float64
	for i := 1; i < len(yd); i++ {
		area += (xd[i] - xd[i-1]) * (yd[i] + yd[i-1]) / 2
	}
	return tensor.Scalar(tensor.Float, area), nil
}

// Map applies fn elementwise and tags the result with dtype.
func Map(a *tensor.Tensor, dtype tensor.DType, fn func(float64) float64) (*tensor.Tensor, error) {
	src := a.Float64s()
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = fn(v)
	}
	t, err := tensor.FromSlice(dtype, out, a.Shape()...)
	if err != nil {
		return nil, err
	}
	return t, t.CheckFinite()
}

// Max returns the largest element.
func Max(a *tensor.Tensor) (*tensor.Tensor, error) {
	d := a.Float64s()
	if len(d) == 0 {
		return nil, errs.NumericDomain("max of empty tensor")
	}
	best := d[0]
	for _, v := range d[1:] {
		if v > best {
			best = v
		}
	}
	return tensor.Scalar(a.DType(), best), nil
}

// Argmax returns the index of the first largest element.
func Argmax(a *tensor.Tensor) (int, error) {
	d := a.Float64s()
	if len(d) == 0 {
		return 0, errs.NumericDomain("argmax of empty tensor")
	}
	best := 0
	for i, v := range d {
		if v > d[best] {
			best = i
		}
	}
	return best, nil
}
