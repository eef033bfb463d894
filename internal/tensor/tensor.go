// Package tensor provides the dense, row-major value type exchanged between
// fixtures, kernels, the oracle and the report.
//
// A Tensor carries a dtype tag. Integer tensors hold integral float64 values,
// which are exact up to 2^53; kernels that care about integer semantics (such
// as truncating normalization) consult the tag instead of guessing.
package tensor

import (
	"fmt"
	"math"

	"github.com/mwiater/kernbench/internal/errs"
)

// DType is the declared element type of a tensor.
type DType string

const (
	Int   DType = "int"
	Float DType = "float"
)

// Tensor is an immutable-by-convention n-dimensional array. Scalars have an
// empty shape and exactly one element.
//
// Tensor is not safe for concurrent mutation; the harness only shares
// tensors read-only.
type Tensor struct {
	data  []float64
	shape []int
	dtype DType
}

// New returns a zero-filled tensor. Panics if a dimension is non-positive;
// shape errors at construction time are programmer bugs.
func New(dtype DType, shape ...int) *Tensor {
	size := 1
	for i, dim := range shape {
		if dim <= 0 {
			panic(fmt.Sprintf("tensor: shape[%d] must be positive, got %d", i, dim))
		}
		size *= dim
	}
	return &Tensor{
		data:  make([]float64, size),
		shape: append([]int(nil), shape...),
		dtype: dtype,
	}
}

// FromSlice copies data into a tensor of the given shape.
func FromSlice(dtype DType, data []float64, shape ...int) (*Tensor, error) {
	size := 1
	for i, dim := range shape {
		if dim <= 0 {
			return nil, errs.ShapeMismatch("shape[%d] must be positive, got %d", i, dim)
		}
		size *= dim
	}
	if size != len(data) {
		return nil, errs.ShapeMismatch("shape %v needs %d elements, got %d", shape, size, len(data))
	}
	if dtype == Int {
		for i, v := range data {
			if v != math.Trunc(v) || math.IsInf(v, 0) {
				return nil, errs.NumericDomain("int tensor element %d is not integral: %v", i, v)
			}
		}
	}
	return &Tensor{
		data:  append([]float64(nil), data...),
		shape: append([]int(nil), shape...),
		dtype: dtype,
	}, nil
}

// Scalar wraps a single value.
func Scalar(dtype DType, v float64) *Tensor {
	return &Tensor{data: []float64{v}, shape: []int{}, dtype: dtype}
}

// Vector builds a rank-1 tensor.
func Vector(dtype DType, values ...float64) *Tensor {
	t, err := FromSlice(dtype, values, len(values))
	if err != nil {
		panic(err)
	}
	return t
}

// Matrix builds a rank-2 tensor from rows; ragged rows are a shape mismatch.
func Matrix(dtype DType, rows [][]float64) (*Tensor, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errs.ShapeMismatch("matrix needs at least one row and one column")
	}
	cols := len(rows[0])
	flat := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errs.ShapeMismatch("row %d has %d columns, want %d", i, len(row), cols)
		}
		flat = append(flat, row...)
	}
	return FromSlice(dtype, flat, len(rows), cols)
}

// IntMatrix is Matrix for integer literals.
func IntMatrix(rows [][]int) (*Tensor, error) {
	conv := make([][]float64, len(rows))
	for i, row := range rows {
		conv[i] = make([]float64, len(row))
		for j, v := range row {
			conv[i][j] = float64(v)
		}
	}
	return Matrix(Int, conv)
}

// IntVector is Vector for integer literals.
func IntVector(values ...int) *Tensor {
	conv := make([]float64, len(values))
	for i, v := range values {
		conv[i] = float64(v)
	}
	return Vector(Int, conv...)
}

// Shape returns a copy of the shape.
func (t *Tensor) Shape() []int { return append([]int(nil), t.shape...) }

// DType returns the declared element type.
func (t *Tensor) DType() DType { return t.dtype }

// Dims returns the rank.
func (t *Tensor) Dims() int { return len(t.shape) }

// Size returns the element count.
func (t *Tensor) Size() int { return len(t.data) }

// IsScalar reports whether t has rank zero.
func (t *Tensor) IsScalar() bool { return len(t.shape) == 0 }

// Rows returns the first dimension of a rank-2 tensor.
func (t *Tensor) Rows() int { return t.shape[0] }

// Cols returns the second dimension of a rank-2 tensor.
func (t *Tensor) Cols() int { return t.shape[1] }

// Data returns a copy of the flat row-major elements.
func (t *Tensor) Data() []float64 { return append([]float64(nil), t.data...) }

// Value returns the single element of a scalar (or one-element) tensor.
func (t *Tensor) Value() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("tensor: Value on tensor of size %d", len(t.data)))
	}
	return t.data[0]
}

// At returns the element at the given indices. Panics on bad indices.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.flatIndex(indices)]
}

// Set writes the element at the given indices. Only kernels building their
// own outputs call Set.
func (t *Tensor) Set(value float64, indices ...int) {
	t.data[t.flatIndex(indices)] = value
}

func (t *Tensor) flatIndex(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("tensor: expected %d indices, got %d", len(t.shape), len(indices)))
	}
	idx, stride := 0, 1
	for i := len(indices) - 1; i >= 0; i-- {
		if indices[i] < 0 || indices[i] >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index[%d]=%d out of bounds [0,%d)", i, indices[i], t.shape[i]))
		}
		idx += indices[i] * stride
		stride *= t.shape[i]
	}
	return idx
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{data: t.Data(), shape: t.Shape(), dtype: t.dtype}
}

// Reshape returns a copy with a new shape of the same size.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	return FromSlice(t.dtype, t.data, shape...)
}

// AsFloat returns a float-tagged copy.
func (t *Tensor) AsFloat() *Tensor {
	c := t.Clone()
	c.dtype = Float
	return c
}

// Row returns row i of a rank-2 tensor as a vector.
func (t *Tensor) Row(i int) *Tensor {
	cols := t.shape[1]
	return Vector(t.dtype, t.data[i*cols:(i+1)*cols]...)
}

// SameShape reports whether t and o have identical shapes.
func (t *Tensor) SameShape(o *Tensor) bool {
	if len(t.shape) != len(o.shape) {
		return false
	}
	for i := range t.shape {
		if t.shape[i] != o.shape[i] {
			return false
		}
	}
	return true
}

// Equal reports bit-identical shape, dtype and contents.
func (t *Tensor) Equal(o *Tensor) bool {
	if o == nil || t.dtype != o.dtype || !t.SameShape(o) {
		return false
	}
	for i := range t.data {
		if math.Float64bits(t.data[i]) != math.Float64bits(o.data[i]) {
			return false
		}
	}
	return true
}

// CheckFinite returns ErrNumericDomain if any element is NaN or infinite.
func (t *Tensor) CheckFinite() error {
	for i, v := range t.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.NumericDomain("element %d is %v", i, v)
		}
	}
	return nil
}

// String returns a compact description for logs.
func (t *Tensor) String() string {
	if t.IsScalar() {
		return fmt.Sprintf("%s(%v)", t.dtype, t.data[0])
	}
	return fmt.Sprintf("Tensor(%s, shape=%v, size=%d)", t.dtype, t.shape, len(t.data))
}

// Float64s exposes the backing slice for read-only iteration inside the
// module's kernels. Callers must not mutate it.
func (t *Tensor) Float64s() []float64 { return t.data }
