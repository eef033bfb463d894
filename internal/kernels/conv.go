package kernels

import (
	"math"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

// Conv2DValid slides a square kernel over img without padding (valid mode),
// producing an (n-k+1)×(m-k+1) map of summed elementwise products.
//
// A divisor greater than one normalizes each cell. Integer inputs use floor
// division so results match integer reference implementations bit for bit;
// float inputs use real division.
func Conv2DValid(img, kernel *tensor.Tensor, divisor int) (*tensor.Tensor, error) {
	if err := requireMatrix("image", img); err != nil {
		return nil, err
	}
	if err := requireSquare("kernel", kernel); err != nil {
		return nil, err
	}
	if divisor == 0 {
		return nil, errs.NumericDomain("convolution divisor is zero")
	}
	k := kernel.Rows()
	h, w := img.Rows(), img.Cols()
	if k > h || k > w {
		return nil, errs.ShapeMismatch("kernel %dx%d larger than image %dx%d", k, k, h, w)
	}
	oh, ow := h-k+1, w-k+1
	dtype := resultType(img, kernel)
	id, kd := img.Float64s(), kernel.Float64s()

	out := make([]float64, oh*ow)
	for i := 0; i < oh; i++ {
		for j := 0; j < ow; j++ {
			var sum float64
			for ki := 0; ki < k; ki++ {
				for kj := 0; kj < k; kj++ {
					sum += kd[ki*k+kj] * id[(i+ki)*w+(j+kj)]
				}
			}
			if divisor != 1 {
				if dtype == tensor.Int {
					sum = float64(floorDiv(int64(sum), int64(divisor)))
				} else {
					sum /= float64(divisor)
				}
			}
			out[i*ow+j] = sum
		}
	}
	return tensor.FromSlice(dtype, out, oh, ow)
}

// floorDiv rounds toward negative infinity, matching Python's // operator.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// MaxPool2D takes the maximum of each window. A stride of zero means the
// stride equals the window. Rows or columns that do not fill a whole window
// are dropped.
func MaxPool2D(x *tensor.Tensor, window, stride int) (*tensor.Tensor, error) {
	return pool(x, window, stride, x.DType(), func(vals []float64) float64 {
		best := math.Inf(-1)
		for _, v := range vals {
			if v > best {
				best = v
			}
		}
		return best
	})
}

// AvgPool2D averages each window. The result is always floating point.
func AvgPool2D(x *tensor.Tensor, window, stride int) (*tensor.Tensor, error) {
	return pool(x, window, stride, tensor.Float, func(vals []float64) float64 {
		var s float64
		for _, v := range vals {
			s += v
		}
		return s / float64(len(vals))
	})
}

func pool(x *tensor.Tensor, window, stride int, dtype tensor.DType, reduce func([]float64) float64) (*tensor.Tensor, error) {
	if err := requireMatrix("input", x); err != nil {
		return nil, err
	}
	if stride == 0 {
		stride = window
	}
	if window <= 0 || stride <= 0 {
		return nil, errs.ShapeMismatch("pool window %d and stride %d must be positive", window, stride)
	}
	h, w := x.Rows(), x.Cols()
	if window > h || window > w {
		return nil, errs.ShapeMismatch("pool window %d larger than input %dx%d", window, h, w)
	}
	oh, ow := (h-window)/stride+1, (w-window)/stride+1
	xd := x.Float64s()
	vals := make([]float64, 0, window*window)
	out := make([]float64, oh*ow)
	for i := 0; i < oh; i++ {
		for j := 0; j < ow; j++ {
			vals = vals[:0]
			for wi := 0; wi < window; wi++ {
				for wj := 0; wj < window; wj++ {
					vals = append(vals, xd[(i*stride+wi)*w+(j*stride+wj)])
				}
			}
			out[i*ow+j] = reduce(vals)
		}
	}
	return tensor.FromSlice(dtype, out, oh, ow)
}

// ReLU clamps negatives to zero.
func ReLU(x *tensor.Tensor) (*tensor.Tensor, error) {
	return Map(x, x.DType(), func(v float64) float64 { return math.Max(0, v) })
}

// Abs is the elementwise absolute value.
func Abs(x *tensor.Tensor) (*tensor.Tensor, error) {
	return Map(x, x.DType(), math.Abs)
}
