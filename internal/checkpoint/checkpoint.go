// Package checkpoint saves and restores MLP training state as YAML.
//
// Floats are written in their shortest round-trip form, so a loaded state
// reproduces the saved parameters bit for bit and resumed training follows
// exactly the same trajectory as uninterrupted training.
package checkpoint

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/tensor"
)

// FormatVersion is written into every checkpoint and checked on load.
const FormatVersion = 1

// Param is one named parameter tensor.
type Param struct {
	Shape []int     `yaml:"shape"`
	Data  []float64 `yaml:"data,flow"`
}

// State is everything needed to resume training.
type State struct {
	Version      int              `yaml:"version"`
	Epoch        int              `yaml:"epoch"`
	LearningRate float64          `yaml:"learning_rate"`
	Loss         float64          `yaml:"loss"`
	Params       map[string]Param `yaml:"params"`
}

var mlpParams = []string{"fc1.weight", "fc1.bias", "fc2.weight", "fc2.bias"}

// FromMLP captures m after epoch steps. loss is the last recorded loss.
func FromMLP(m kernels.MLP, epoch int, lr, loss float64) State {
	params := make(map[string]Param, len(mlpParams))
	for i, t := range []*tensor.Tensor{m.W1, m.B1, m.W2, m.B2} {
		params[mlpParams[i]] = Param{Shape: t.Shape(), Data: t.Data()}
	}
	return State{
		Version:      FormatVersion,
		Epoch:        epoch,
		LearningRate: lr,
		Loss:         loss,
		Params:       params,
	}
}

// MLP rebuilds the network stored in s.
func (s State) MLP() (kernels.MLP, error) {
	ts := make([]*tensor.Tensor, len(mlpParams))
	for i, name := range mlpParams {
		p, ok := s.Params[name]
		if !ok {
			return kernels.MLP{}, errs.Fixture("checkpoint is missing %q", name)
		}
		t, err := tensor.FromSlice(tensor.Float, p.Data, p.Shape...)
		if err != nil {
			return kernels.MLP{}, fmt.Errorf("checkpoint param %q: %w", name, err)
		}
		ts[i] = t
	}
	return kernels.MLP{W1: ts[0], B1: ts[1], W2: ts[2], B2: ts[3]}, nil
}

// Save encodes s.
func Save(s State) ([]byte, error) {
	if s.Version == 0 {
		s.Version = FormatVersion
	}
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint: %w", err)
	}
	return out, nil
}

// Load decodes a checkpoint produced by Save.
func Load(data []byte) (State, error) {
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return State{}, errs.Fixture("decode checkpoint: %v", err)
	}
	if s.Version != FormatVersion {
		return State{}, errs.Fixture("unsupported checkpoint version %d", s.Version)
	}
	return s, nil
}
