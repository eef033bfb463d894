package catalog

import (
	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/tensor"
)

func convolve(in benchmark.Inputs, kernelName string, normalize bool) (*tensor.Tensor, error) {
	s := from(in, FixtureCNN)
	img, k := s.array("image"), s.array(kernelName)
	divisor := 1
	if normalize {
		divisor = s.count("blur_divisor")
	}
	if s.err != nil {
		return nil, s.err
	}
	return kernels.Conv2DValid(img, k, divisor)
}

func sobel(in benchmark.Inputs) (*tensor.Tensor, error) { return convolve(in, "sobel_x", false) }

func blur(in benchmark.Inputs) (*tensor.Tensor, error) { return convolve(in, "blur", true) }

func cnnSpecs() []benchmark.KernelSpec {
	uses := []string{FixtureCNN}
	return []benchmark.KernelSpec{
		{
			Name: "cnn.sobel", Description: "8x8 image convolved with Sobel-X (valid)", Fixtures: uses,
			Kernel: fn(sobel),
			Expected: ints(
				[]int{35, 35, 45, 40, 40, 40},
				[]int{40, 40, 40, 40, 40, 40},
				[]int{40, 40, 40, 40, 40, 40},
				[]int{40, 40, 40, 40, 40, 40},
				[]int{40, 40, 40, 40, 40, 40},
				[]int{40, 40, 40, 40, 40, 40},
			),
		},
		{
			Name: "cnn.blur", Description: "Gaussian blur with integer floor division by 16", Fixtures: uses,
			Kernel: fn(blur),
			Expected: ints(
				[]int{115, 119, 124, 130, 135, 140},
				[]int{105, 110, 115, 120, 125, 130},
				[]int{95, 100, 105, 110, 115, 120},
				[]int{85, 90, 95, 100, 105, 110},
				[]int{75, 80, 85, 90, 95, 100},
				[]int{65, 70, 75, 80, 85, 90},
			),
		},
		{
			Name: "cnn.maxpool", Description: "ReLU then 2x2 max pooling of the Sobel map", Fixtures: uses,
			Kernel: fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
				edges, err := sobel(in)
				if err != nil {
					return nil, err
				}
				act, err := kernels.ReLU(edges)
				if err != nil {
					return nil, err
				}
				return kernels.MaxPool2D(act, 2, 0)
			}),
			Expected: ints([]int{40, 45, 40}, []int{40, 40, 40}, []int{40, 40, 40}),
		},
		{
			Name: "cnn.avgpool", Description: "mean of the top-left 4x4 of the blurred map", Fixtures: uses,
			Kernel: fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
				blurred, err := blur(in)
				if err != nil {
					return nil, err
				}
				corner, err := leadingBlock(blurred, 4)
				if err != nil {
					return nil, err
				}
				return kernels.AvgPool2D(corner, 4, 0)
			}),
			Expected: floats([]float64{107.375}),
		},
		{
			Name: "cnn.gradient_histogram", Description: "|Sobel| summed over the four 2x2 cells of the top-left 4x4", Fixtures: uses,
			Kernel: fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
				edges, err := sobel(in)
				if err != nil {
					return nil, err
				}
				mag, err := kernels.Abs(edges)
				if err != nil {
					return nil, err
				}
				corner, err := leadingBlock(mag, 4)
				if err != nil {
					return nil, err
				}
				means, err := kernels.AvgPool2D(corner, 2, 0)
				if err != nil {
					return nil, err
				}
				return kernels.Scale(means, 4)
			}),
			Expected: floats([]float64{150, 165}, []float64{160, 160}),
		},
	}
}
