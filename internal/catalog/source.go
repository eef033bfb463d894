package catalog

import (
	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/tensor"
)

// source reads values from one fixture and keeps the first error so kernel
// bodies can fetch several inputs before checking.
type source struct {
	in  benchmark.Inputs
	id  string
	err error
}

func from(in benchmark.Inputs, id string) *source {
	return &source{in: in, id: id}
}

func (s *source) array(name string) *tensor.Tensor {
	if s.err != nil {
		return nil
	}
	t, err := s.in.Array(s.id, name)
	s.err = err
	return t
}

func (s *source) scalar(name string) float64 {
	if s.err != nil {
		return 0
	}
	v, err := s.in.Scalar(s.id, name)
	s.err = err
	return v
}

func (s *source) count(name string) int { return int(s.scalar(name)) }

// mlp assembles a network from the w1/b1/w2/b2 arrays.
func (s *source) mlp() kernels.MLP {
	return kernels.MLP{W1: s.array("w1"), B1: s.array("b1"), W2: s.array("w2"), B2: s.array("b2")}
}

func ints(rows ...[]int) *tensor.Tensor {
	t, err := tensor.IntMatrix(rows)
	if err != nil {
		panic(err)
	}
	return t
}

func floats(rows ...[]float64) *tensor.Tensor {
	t, err := tensor.Matrix(tensor.Float, rows)
	if err != nil {
		panic(err)
	}
	return t
}

func intScalar(v float64) *tensor.Tensor   { return tensor.Scalar(tensor.Int, v) }
func floatScalar(v float64) *tensor.Tensor { return tensor.Scalar(tensor.Float, v) }
