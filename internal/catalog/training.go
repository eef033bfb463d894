package catalog

import (
	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/checkpoint"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/oracle"
	"github.com/mwiater/kernbench/internal/reference"
	"github.com/mwiater/kernbench/internal/tensor"
)

// roundTripLossEps bounds the loss drift a save/load cycle may introduce.
const roundTripLossEps = 1e-6

func fitHouse(in benchmark.Inputs) (kernels.LinearFit, float64, error) {
	s := from(in, FixtureHouse)
	size, price := s.array("size"), s.array("price")
	w, b, lr := s.scalar("weight"), s.scalar("bias"), s.scalar("learning_rate")
	epochs, query := s.count("epochs"), s.scalar("query_size")
	if s.err != nil {
		return kernels.LinearFit{}, 0, s.err
	}
	fit, err := kernels.TrainLinear(size, price, w, b, lr, epochs)
	return fit, query, err
}

func regressionSpecs() []benchmark.KernelSpec {
	uses := []string{FixtureHouse}
	return []benchmark.KernelSpec{
		{
			Name: "regression.fit", Description: "fitted [weight, bias] after 100 epochs of gradient descent", Fixtures: uses,
			Kernel: fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
				fit, _, err := fitHouse(in)
				if err != nil {
					return nil, err
				}
				return tensor.Vector(tensor.Float, fit.Weight, fit.Bias), nil
			}),
			Expected: tensor.Vector(tensor.Float, 1.496906381381138, 0.011695816960073756),
		},
		{
			Name: "regression.loss_curve", Description: "MSE before the first and the last update", Fixtures: uses,
			Kernel: fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
				fit, _, err := fitHouse(in)
				if err != nil {
					return nil, err
				}
				return tensor.Vector(tensor.Float, fit.Losses[0], fit.Losses[len(fit.Losses)-1]), nil
			}),
			Expected: tensor.Vector(tensor.Float, 124.1, 0.14770174483215306),
		},
		{
			Name: "regression.predict", Description: "predicted price for the query size", Fixtures: uses,
			Kernel: fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
				fit, query, err := fitHouse(in)
				if err != nil {
					return nil, err
				}
				return floatScalar(fit.Weight*query + fit.Bias), nil
			}),
			Expected: floatScalar(35.93744897010738),
		},
	}
}

type batch struct {
	net    kernels.MLP
	x, y   *tensor.Tensor
	lr     float64
	epochs int
}

func loadBatch(in benchmark.Inputs, id string) (batch, *source) {
	s := from(in, id)
	b := batch{net: s.mlp(), x: s.array("x"), y: s.array("y"), lr: s.scalar("learning_rate"), epochs: s.count("epochs")}
	return b, s
}

func mlpSpecs() []benchmark.KernelSpec {
	uses := []string{FixtureMLP}
	withBatch := func(f func(b batch) (*tensor.Tensor, error)) benchmark.KernelFunc {
		return fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
			b, s := loadBatch(in, FixtureMLP)
			if s.err != nil {
				return nil, s.err
			}
			return f(b)
		})
	}
	return []benchmark.KernelSpec{
		{
			Name: "mlp.forward", Description: "forward pass of the 2-3-1 network", Fixtures: uses,
			Kernel: withBatch(func(b batch) (*tensor.Tensor, error) {
				return b.net.Forward(b.x)
			}),
			Expected: floats([]float64{0.38698582386066455}),
		},
		{
			Name: "mlp.train", Description: "loss before each of 10 SGD steps", Fixtures: uses,
			Kernel: withBatch(func(b batch) (*tensor.Tensor, error) {
				_, losses, err := b.net.Train(b.x, b.y, b.lr, b.epochs)
				if err != nil {
					return nil, err
				}
				return tensor.Vector(tensor.Float, losses...), nil
			}),
			Expected: tensor.Vector(tensor.Float,
				0.37578638014778826, 0.3680807000294303, 0.36047996045736874, 0.35298639035349266,
				0.34560193758683905, 0.3383282842769797, 0.33116686218012903, 0.3241188679591229,
				0.31718527816803205, 0.3103668638111113),
		},
		{
			Name: "mlp.trained_output", Description: "prediction after training", Fixtures: uses,
			Kernel: withBatch(func(b batch) (*tensor.Tensor, error) {
				trained, _, err := b.net.Train(b.x, b.y, b.lr, b.epochs)
				if err != nil {
					return nil, err
				}
				return trained.Forward(b.x)
			}),
			Expected: floats([]float64{0.44894264875293377}),
		},
		{
			Name: "mlp.grad_crosscheck", Description: "analytic dW1 against gonum backpropagation", Fixtures: uses,
			Kernel: withBatch(func(b batch) (*tensor.Tensor, error) {
				g, err := b.net.Gradients(b.x, b.y)
				if err != nil {
					return nil, err
				}
				return g.W1, nil
			}),
			Reference: withBatch(func(b batch) (*tensor.Tensor, error) {
				g, err := reference.MLPGradients(b.net, b.x, b.y)
				if err != nil {
					return nil, err
				}
				return g.W1, nil
			}),
		},
	}
}

// restore round-trips net through the checkpoint encoding.
func restore(net kernels.MLP, epoch int, lr, loss float64) (kernels.MLP, error) {
	data, err := checkpoint.Save(checkpoint.FromMLP(net, epoch, lr, loss))
	if err != nil {
		return kernels.MLP{}, err
	}
	state, err := checkpoint.Load(data)
	if err != nil {
		return kernels.MLP{}, err
	}
	return state.MLP()
}

func checkpointSpecs() []benchmark.KernelSpec {
	uses := []string{FixtureCheckpoint}
	withBatch := func(f func(b batch, resume int) (*tensor.Tensor, error)) benchmark.KernelFunc {
		return fn(func(in benchmark.Inputs) (*tensor.Tensor, error) {
			b, s := loadBatch(in, FixtureCheckpoint)
			resume := s.count("resume_epochs")
			if s.err != nil {
				return nil, s.err
			}
			return f(b, resume)
		})
	}
	return []benchmark.KernelSpec{
		{
			Name:        "checkpoint.roundtrip",
			Description: "[loss before save, loss after load] for a model trained 20 epochs",
			Fixtures:    uses,
			Kernel: withBatch(func(b batch, _ int) (*tensor.Tensor, error) {
				trained, losses, err := b.net.Train(b.x, b.y, b.lr, b.epochs)
				if err != nil {
					return nil, err
				}
				before, err := trained.Loss(b.x, b.y)
				if err != nil {
					return nil, err
				}
				loaded, err := restore(trained, b.epochs, b.lr, losses[len(losses)-1])
				if err != nil {
					return nil, err
				}
				after, err := loaded.Loss(b.x, b.y)
				if err != nil {
					return nil, err
				}
				return tensor.Vector(tensor.Float, before, after), nil
			}),
			Check: func(out *tensor.Tensor, tol oracle.Tolerance) oracle.Outcome {
				if out == nil || out.Size() != 2 {
					return oracle.Verify(out, tensor.Vector(tensor.Float, 0, 0), tol)
				}
				eps := tol.Absolute
				if eps == 0 {
					eps = roundTripLossEps
				}
				return oracle.LossEquivalent(out.At(0), out.At(1), eps)
			},
		},
		{
			Name:        "checkpoint.resume",
			Description: "losses of training resumed from a checkpoint against uninterrupted training",
			Fixtures:    uses,
			Kernel: withBatch(func(b batch, resume int) (*tensor.Tensor, error) {
				first, head, err := b.net.Train(b.x, b.y, b.lr, b.epochs)
				if err != nil {
					return nil, err
				}
				loaded, err := restore(first, b.epochs, b.lr, head[len(head)-1])
				if err != nil {
					return nil, err
				}
				_, tail, err := loaded.Train(b.x, b.y, b.lr, resume)
				if err != nil {
					return nil, err
				}
				return tensor.Vector(tensor.Float, append(head, tail...)...), nil
			}),
			Reference: withBatch(func(b batch, resume int) (*tensor.Tensor, error) {
				_, losses, err := b.net.Train(b.x, b.y, b.lr, b.epochs+resume)
				if err != nil {
					return nil, err
				}
				return tensor.Vector(tensor.Float, losses...), nil
			}),
		},
	}
}
