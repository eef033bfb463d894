package reference

import (
	"errors"
	"math"
	"testing"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/tensor"
)

func matrix(t *testing.T, rows [][]float64) *tensor.Tensor {
	t.Helper()
	m, err := tensor.Matrix(tensor.Float, rows)
	if err != nil {
		t.Fatalf("Matrix: %v", err)
	}
	return m
}

func maxDelta(a, b *tensor.Tensor) float64 {
	var d float64
	ad, bd := a.Data(), b.Data()
	for i := range ad {
		d = math.Max(d, math.Abs(ad[i]-bd[i]))
	}
	return d
}

func TestMatMulAgreesWithNative(t *testing.T) {
	a := matrix(t, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	b := matrix(t, [][]float64{{9, 8, 7}, {6, 5, 4}, {3, 2, 1}})
	ref, err := MatMul(a, b)
	if err != nil {
		t.Fatalf("MatMul: %v", err)
	}
	native, err := kernels.MatMul(a, b)
	if err != nil {
		t.Fatalf("kernels.MatMul: %v", err)
	}
	if d := maxDelta(ref, native); d > 1e-12 {
		t.Fatalf("max delta %v", d)
	}
	if _, err := MatMul(a, matrix(t, [][]float64{{1, 2}})); !errors.Is(err, errs.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestInverseSingular(t *testing.T) {
	b := matrix(t, [][]float64{{9, 8, 7}, {6, 5, 4}, {3, 2, 1}})
	if _, err := Inverse(b); !errors.Is(err, errs.ErrNumericDomain) {
		t.Fatalf("expected ErrNumericDomain, got %v", err)
	}
}

func TestDominantEigenvalue(t *testing.T) {
	a := matrix(t, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	ev, err := DominantEigenvalue(a)
	if err != nil {
		t.Fatalf("DominantEigenvalue: %v", err)
	}
	if math.Abs(ev.Value()-16.116843969807043) > 1e-9 {
		t.Fatalf("eigenvalue = %v", ev.Value())
	}
}

func TestStatistics(t *testing.T) {
	data := tensor.Vector(tensor.Float, 15, 25, 35, 45, 55)
	mean, err := Mean(data)
	if err != nil || mean.Value() != 35 {
		t.Fatalf("Mean = %v, %v", mean, err)
	}
	std, err := Std(data)
	if err != nil || math.Abs(std.Value()-math.Sqrt(200)) > 1e-12 {
		t.Fatalf("Std = %v, %v", std, err)
	}
}

func TestSoftmaxAgreesWithNative(t *testing.T) {
	x := matrix(t, [][]float64{{1, 2, 3}, {1000, 999, 998}})
	ref, err := Softmax(x)
	if err != nil {
		t.Fatalf("Softmax: %v", err)
	}
	native, err := kernels.Softmax(x)
	if err != nil {
		t.Fatalf("kernels.Softmax: %v", err)
	}
	if d := maxDelta(ref, native); d > 1e-12 {
		t.Fatalf("max delta %v", d)
	}
}

func TestMLPGradientsAgreeWithNative(t *testing.T) {
	m := kernels.MLP{
		W1: matrix(t, [][]float64{{0.5, -0.4}, {-0.2, 0.6}, {0.8, -0.1}}),
		B1: tensor.Vector(tensor.Float, 0.1, -0.1, 0),
		W2: matrix(t, [][]float64{{0.7, -0.5, 0.3}}),
		B2: tensor.Vector(tensor.Float, -0.2),
	}
	x := matrix(t, [][]float64{{2, 3}})
	y := matrix(t, [][]float64{{1}})

	ref, err := MLPGradients(m, x, y)
	if err != nil {
		t.Fatalf("MLPGradients: %v", err)
	}
	native, err := m.Gradients(x, y)
	if err != nil {
		t.Fatalf("Gradients: %v", err)
	}
	for name, pair := range map[string][2]*tensor.Tensor{
		"W1": {ref.W1, native.W1},
		"B1": {ref.B1, native.B1},
		"W2": {ref.W2, native.W2},
		"B2": {ref.B2, native.B2},
	} {
		if !pair[0].SameShape(pair[1]) {
			t.Fatalf("%s shapes %v vs %v", name, pair[0].Shape(), pair[1].Shape())
		}
		if d := maxDelta(pair[0], pair[1]); d > 1e-7 {
			t.Fatalf("%s max delta %v exceeds 1e-7", name, d)
		}
	}
}
