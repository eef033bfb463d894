package catalog

import (
	"math"

	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/reference"
	"github.com/mwiater/kernbench/internal/tensor"
)

// engine abstracts the two primitives attention is built from so the same
// composition runs on the native kernels and on gonum.
type engine struct {
	matmul  func(a, b *tensor.Tensor) (*tensor.Tensor, error)
	softmax func(x *tensor.Tensor) (*tensor.Tensor, error)
}

var (
	nativeEngine    = engine{matmul: kernels.MatMul, softmax: kernels.Softmax}
	referenceEngine = engine{matmul: reference.MatMul, softmax: reference.Softmax}
)

type projections struct {
	q, k, v   *tensor.Tensor
	headWidth int
}

// project embeds the first tokens (with positional encoding) and applies
// the seeded query, key and value weights.
func (e engine) project(in benchmark.Inputs) (projections, error) {
	s := from(in, FixtureAttention)
	emb, pos := s.array("embeddings"), s.array("positions")
	wq, wk, wv := s.array("wq"), s.array("wk"), s.array("wv")
	tokens, width := s.count("tokens"), s.count("head_width")
	if s.err != nil {
		return projections{}, s.err
	}
	seq, err := kernels.Add(emb, pos)
	if err != nil {
		return projections{}, err
	}
	if seq, err = kernels.SliceRows(seq, 0, tokens); err != nil {
		return projections{}, err
	}
	p := projections{headWidth: width}
	if p.q, err = e.matmul(seq, wq); err != nil {
		return projections{}, err
	}
	if p.k, err = e.matmul(seq, wk); err != nil {
		return projections{}, err
	}
	if p.v, err = e.matmul(seq, wv); err != nil {
		return projections{}, err
	}
	return p, nil
}

func (e engine) scores(q, k *tensor.Tensor) (*tensor.Tensor, error) {
	kt, err := kernels.Transpose(k)
	if err != nil {
		return nil, err
	}
	return e.matmul(q, kt)
}

// weights is softmax(Q·Kᵀ / divisor) row by row.
func (e engine) weights(q, k *tensor.Tensor, divisor float64) (*tensor.Tensor, error) {
	scores, err := e.scores(q, k)
	if err != nil {
		return nil, err
	}
	scaled, err := kernels.Map(scores, tensor.Float, func(v float64) float64 { return v / divisor })
	if err != nil {
		return nil, err
	}
	return e.softmax(scaled)
}

func (e engine) attend(q, k, v *tensor.Tensor, divisor float64) (*tensor.Tensor, error) {
	w, err := e.weights(q, k, divisor)
	if err != nil {
		return nil, err
	}
	return e.matmul(w, v)
}

// multiHead adds a second, unscaled head over the leading half of the
// projections, concatenated with itself back to full width.
func (e engine) multiHead(p projections) (*tensor.Tensor, error) {
	full, err := e.attend(p.q, p.k, p.v, scaleFor(p.q))
	if err != nil {
		return nil, err
	}
	var half [3]*tensor.Tensor
	for i, t := range []*tensor.Tensor{p.q, p.k, p.v} {
		if half[i], err = kernels.SliceCols(t, 0, p.headWidth); err != nil {
			return nil, err
		}
	}
	second, err := e.attend(half[0], half[1], half[2], 1)
	if err != nil {
		return nil, err
	}
	both, err := kernels.ConcatCols(second, second)
	if err != nil {
		return nil, err
	}
	return kernels.Add(full, both)
}

func scaleFor(q *tensor.Tensor) float64 { return math.Sqrt(float64(q.Cols())) }

func attentionKernels(e engine) map[string]benchmark.KernelFunc {
	withProjections := func(f func(p projections) (*tensor.Tensor, error)) benchmark.KernelFunc {
		return fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
			p, err := e.project(in)
			if err != nil {
				return nil, err
			}
			return f(p)
		})
	}
	return map[string]benchmark.KernelFunc{
		"scores": withProjections(func(p projections) (*tensor.Tensor, error) {
			return e.scores(p.q, p.k)
		}),
		"weights": withProjections(func(p projections) (*tensor.Tensor, error) {
			return e.weights(p.q, p.k, scaleFor(p.q))
		}),
		"single_head": withProjections(func(p projections) (*tensor.Tensor, error) {
			return e.attend(p.q, p.k, p.v, scaleFor(p.q))
		}),
		"multi_head": withProjections(e.multiHead),
		"max_weight": withProjections(func(p projections) (*tensor.Tensor, error) {
			w, err := e.weights(p.q, p.k, scaleFor(p.q))
			if err != nil {
				return nil, err
			}
			peak, err := kernels.Max(w)
			if err != nil {
				return nil, err
			}
			return kernels.Scale(peak, 100)
		}),
	}
}

func attentionSpecs() []benchmark.KernelSpec {
	native, ref := attentionKernels(nativeEngine), attentionKernels(referenceEngine)
	describe := map[string]string{
		"scores":      "Q·Kᵀ for the first three tokens",
		"weights":     "softmax(Q·Kᵀ/√d_k)",
		"single_head": "scaled dot-product attention output",
		"multi_head":  "full head plus an unscaled half-width head",
		"max_weight":  "largest attention weight in percent",
	}
	var specs []benchmark.KernelSpec
	for _, op := range []string{"scores", "weights", "single_head", "multi_head", "max_weight"} {
		specs = append(specs, benchmark.KernelSpec{
			Name:        "attention." + op,
			Description: describe[op] + " (cross-checked with gonum)",
			Fixtures:    []string{FixtureAttention},
			Kernel:      native[op],
			Reference:   ref[op],
		})
	}
	return specs
}
