package kernels

import (
	"math"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

// SliceRows returns rows [from, to) of a matrix.
func SliceRows(a *tensor.Tensor, from, to int) (*tensor.Tensor, error) {
	if err := requireMatrix("A", a); err != nil {
		return nil, err
	}
	if from < 0 || to > a.Rows() || from >= to {
		return nil, errs.ShapeMismatch("row range [%d,%d) outside %v", from, to, a.Shape())
	}
	cols := a.Cols()
	return tensor.FromSlice(a.DType(), a.Float64s()[from*cols:to*cols], to-from, cols)
}

// SliceCols returns columns [from, to) of a matrix.
func SliceCols(a *tensor.Tensor, from, to int) (*tensor.Tensor, error) {
	if err := requireMatrix("A", a); err != nil {
		return nil, err
	}
	if from < 0 || to > a.Cols() || from >= to {
		return nil, errs.ShapeMismatch("column range [%d,%d) outside %v", from, to, a.Shape())
	}
	rows, cols, width := a.Rows(), a.Cols(), to-from
	ad := a.Float64s()
	out := make([]float64, 0, rows*width)
	for i := 0; i < rows; i++ {
		out = append(out, ad[i*cols+from:i*cols+to]...)
	}
	return tensor.FromSlice(a.DType(), out, rows, width)
}

// ConcatCols joins matrices with equal row counts side by side.
func ConcatCols(parts ...*tensor.Tensor) (*tensor.Tensor, error) {
	if len(parts) == 0 {
		return nil, errs.ShapeMismatch("nothing to concatenate")
	}
	rows, width := -1, 0
	for i, p := range parts {
		if err := requireMatrix("part", p); err != nil {
			return nil, err
		}
		if rows >= 0 && p.Rows() != rows {
			return nil, errs.ShapeMismatch("part %d has %d rows, want %d", i, p.Rows(), rows)
		}
		rows = p.Rows()
		width += p.Cols()
	}
	out := make([]float64, 0, rows*width)
	for i := 0; i < rows; i++ {
		for _, p := range parts {
			c := p.Cols()
			out = append(out, p.Float64s()[i*c:(i+1)*c]...)
		}
	}
	return tensor.FromSlice(resultType(parts...), out, rows, width)
}

// Outer returns the outer product u⊗v.
func Outer(u, v *tensor.Tensor) (*tensor.Tensor, error) {
	if err := requireVector("u", u); err != nil {
		return nil, err
	}
	if err := requireVector("v", v); err != nil {
		return nil, err
	}
	ud, vd := u.Float64s(), v.Float64s()
	out := make([]float64, 0, len(ud)*len(vd))
	for _, a := range ud {
		for _, b := range vd {
			out = append(out, a*b)
		}
	}
	return tensor.FromSlice(resultType(u, v), out, len(ud), len(vd))
}

// Scale multiplies every element by s. The result is integer only when a
// is integer and s is integral.
func Scale(a *tensor.Tensor, s float64) (*tensor.Tensor, error) {
	dtype := a.DType()
	if s != math.Trunc(s) {
		dtype = tensor.Float
	}
	return Map(a, dtype, func(v float64) float64 { return v * s })
}

// Sub is elementwise subtraction.
func Sub(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return elementwise(a, b, func(x, y float64) float64 { return x - y })
}
