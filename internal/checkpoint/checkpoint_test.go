package checkpoint

import (
	"errors"
	"strings"
	"testing"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/kernels"
	"github.com/mwiater/kernbench/internal/tensor"
)

func constMLP(t *testing.T) kernels.MLP {
	t.Helper()
	w1, err := tensor.Matrix(tensor.Float, [][]float64{{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}})
	if err != nil {
		t.Fatalf("Matrix: %v", err)
	}
	w2, err := tensor.Matrix(tensor.Float, [][]float64{{-0.5, -0.5, -0.5}})
	if err != nil {
		t.Fatalf("Matrix: %v", err)
	}
	return kernels.MLP{
		W1: w1,
		B1: tensor.Vector(tensor.Float, 0, 0, 0),
		W2: w2,
		B2: tensor.Vector(tensor.Float, 0),
	}
}

func batch(t *testing.T) (*tensor.Tensor, *tensor.Tensor) {
	t.Helper()
	x, err := tensor.Matrix(tensor.Float, [][]float64{{1, 2}, {0.5, -0.5}})
	if err != nil {
		t.Fatalf("Matrix: %v", err)
	}
	y, err := tensor.Matrix(tensor.Float, [][]float64{{1}, {0}})
	if err != nil {
		t.Fatalf("Matrix: %v", err)
	}
	return x, y
}

func TestResumeMatchesUninterrupted(t *testing.T) {
	x, y := batch(t)
	m := constMLP(t)

	first, losses, err := m.Train(x, y, 0.01, 20)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	blob, err := Save(FromMLP(first, 20, 0.01, losses[len(losses)-1]))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	state, err := Load(blob)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.Epoch != 20 || state.Loss != losses[19] {
		t.Fatalf("restored epoch=%d loss=%v", state.Epoch, state.Loss)
	}
	restored, err := state.MLP()
	if err != nil {
		t.Fatalf("MLP: %v", err)
	}
	if !restored.W1.Equal(first.W1) || !restored.B2.Equal(first.B2) {
		t.Fatalf("parameters changed across save/load")
	}

	_, resumed, err := restored.Train(x, y, state.LearningRate, 10)
	if err != nil {
		t.Fatalf("Train resumed: %v", err)
	}
	_, straight, err := m.Train(x, y, 0.01, 30)
	if err != nil {
		t.Fatalf("Train straight: %v", err)
	}
	for i, loss := range resumed {
		if loss != straight[20+i] {
			t.Fatalf("epoch %d: resumed loss %v, uninterrupted %v", 20+i, loss, straight[20+i])
		}
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	if _, err := Load([]byte("version: 99\n")); !errors.Is(err, errs.ErrFixture) {
		t.Fatalf("expected ErrFixture for version, got %v", err)
	}
	if _, err := Load([]byte(":\n  - [")); !errors.Is(err, errs.ErrFixture) {
		t.Fatalf("expected ErrFixture for garbage, got %v", err)
	}
	s := State{Version: FormatVersion, Params: map[string]Param{}}
	if _, err := s.MLP(); !errors.Is(err, errs.ErrFixture) {
		t.Fatalf("expected ErrFixture for missing params, got %v", err)
	}
}

func TestSaveIsReadable(t *testing.T) {
	blob, err := Save(FromMLP(constMLP(t), 0, 0.01, 0))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, want := range []string{"version: 1", "fc1.weight", "learning_rate: 0.01"} {
		if !strings.Contains(string(blob), want) {
			t.Fatalf("checkpoint missing %q:\n%s", want, blob)
		}
	}
}
