package catalog

import (
	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/tensor"
)

// network is the 4→6→4→2 integer network with ReLU hidden layers.
func network(s *source) []kernels.Dense {
	return []kernels.Dense{
		{W: s.array("w1"), B: s.array("b1")},
		{W: s.array("w2"), B: s.array("b2")},
		{W: s.array("w3"), B: s.array("b3")},
	}
}

// nnPass carries every stage of the scaled-softmax classifier.
type nnPass struct {
	hidden  *tensor.Tensor // second hidden layer after ReLU
	logits  *tensor.Tensor
	percent *tensor.Tensor // softmax((z - max) / T) · 100
	target  *tensor.Tensor
}

func runNN(in benchmark.Inputs) (nnPass, *source, error) {
	s := from(in, FixtureNN)
	layers := network(s)
	x, target, temp := s.array("input"), s.array("true_label"), s.scalar("temperature")
	if s.err != nil {
		return nnPass{}, s, s.err
	}
	hidden, err := kernels.Forward(layers[:2], x, kernels.ActivationReLU)
	if err != nil {
		return nnPass{}, s, err
	}
	logits, err := layers[2].Apply(hidden)
	if err != nil {
		return nnPass{}, s, err
	}
	probs, err := kernels.SoftmaxTemperature(logits, temp)
	if err != nil {
		return nnPass{}, s, err
	}
	percent, err := kernels.Scale(probs, 100)
	if err != nil {
		return nnPass{}, s, err
	}
	return nnPass{hidden: hidden, logits: logits, percent: percent, target: target}, s, nil
}

// probabilities converts percentages back to [0, 1].
func probabilities(t *tensor.Tensor) (*tensor.Tensor, error) {
	return kernels.Map(t, tensor.Float, func(v float64) float64 { return v / 100 })
}

func nnSpecs() []benchmark.KernelSpec {
	uses := []string{FixtureNN}
	stage := func(pick func(p nnPass, s *source) (*tensor.Tensor, error)) benchmark.KernelFunc {
		return fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
			p, s, err := runNN(in)
			if err != nil {
				return nil, err
			}
			return pick(p, s)
		})
	}

	return []benchmark.KernelSpec{
		{
			Name: "nn.hidden", Description: "activations of the second hidden layer", Fixtures: uses,
			Kernel:   stage(func(p nnPass, _ *source) (*tensor.Tensor, error) { return p.hidden, nil }),
			Expected: tensor.IntVector(51436, 46588, 50067, 56181),
		},
		{
			Name: "nn.logits", Description: "raw output of the 4→6→4→2 network", Fixtures: uses,
			Kernel: fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
				s := from(in, FixtureNN)
				layers := network(s)
				x := s.array("input")
				if s.err != nil {
					return nil, s.err
				}
				return kernels.Forward(layers, x, kernels.ActivationNone)
			}),
			Expected: tensor.IntVector(1919079, 2130631),
		},
		{
			Name: "nn.softmax", Description: "temperature-10 softmax of the logits in percent", Fixtures: uses,
			Kernel:   stage(func(p nnPass, _ *source) (*tensor.Tensor, error) { return p.percent, nil }),
			Expected: tensor.Vector(tensor.Float, 0, 100),
		},
		{
			Name: "nn.loss", Description: "cross-entropy against the percent-scaled label", Fixtures: uses,
			Kernel: stage(func(p nnPass, s *source) (*tensor.Tensor, error) {
				eps := s.scalar("epsilon")
				if s.err != nil {
					return nil, s.err
				}
				probs, err := probabilities(p.percent)
				if err != nil {
					return nil, err
				}
				return kernels.CrossEntropy(probs, p.target, eps)
			}),
			Expected: floatScalar(0),
		},
		{
			Name: "nn.predicted_class", Description: "argmax of the softmax output", Fixtures: uses,
			Kernel: stage(func(p nnPass, _ *source) (*tensor.Tensor, error) {
				class, err := kernels.Argmax(p.percent)
				if err != nil {
					return nil, err
				}
				return intScalar(float64(class)), nil
			}),
			Expected: intScalar(1),
		},
		{
			Name: "nn.w3_update", Description: "output layer after one gradient step", Fixtures: uses,
			Kernel:   stage(outputLayerUpdate),
			Expected: floats([]float64{12, 7, 15, 4}, []float64{8, 18, 3, 13}),
		},
	}
}

// outputLayerUpdate applies W3 ← W3 - lr·(p - t/100)⊗a2.
func outputLayerUpdate(p nnPass, s *source) (*tensor.Tensor, error) {
	w3, lr := s.array("w3"), s.scalar("learning_rate")
	if s.err != nil {
		return nil, s.err
	}
	probs, err := probabilities(p.percent)
	if err != nil {
		return nil, err
	}
	target, err := probabilities(p.target)
	if err != nil {
		return nil, err
	}
	delta, err := kernels.Sub(probs, target)
	if err != nil {
		return nil, err
	}
	grad, err := kernels.Outer(delta, p.hidden)
	if err != nil {
		return nil, err
	}
	return kernels.GradientStep(w3, grad, lr)
}
