// Package catalog holds the built-in fixtures and kernel registrations.
package catalog

import (
	"github.com/mwiater/kernbench/internal/fixtures"
	"github.com/mwiater/kernbench/internal/tensor"
)

// Fixture identifiers.
const (
	FixtureLinalg3    = "linalg3"
	FixtureMatrix4    = "matrix4"
	FixtureNN         = "nn"
	FixtureCNN        = "cnn"
	FixtureAttention  = "attention"
	FixtureHouse      = "house"
	FixtureMLP        = "mlp"
	FixtureCheckpoint = "checkpoint"
)

const fixtureVersion = "v1"

// NewProvider returns a provider with every built-in fixture registered.
func NewProvider() (*fixtures.Provider, error) {
	p := fixtures.NewProvider()
	if err := RegisterFixtures(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterFixtures adds the built-in fixtures to p.
func RegisterFixtures(p *fixtures.Provider) error {
	deterministic := []struct {
		id    string
		dtype tensor.DType
		build fixtures.Builder
	}{
		{FixtureLinalg3, tensor.Int, buildLinalg3},
		{FixtureMatrix4, tensor.Int, buildMatrix4},
		{FixtureNN, tensor.Int, buildNN},
		{FixtureCNN, tensor.Int, buildCNN},
		{FixtureHouse, tensor.Float, buildHouse},
		{FixtureMLP, tensor.Float, buildMLP},
		{FixtureCheckpoint, tensor.Float, buildCheckpoint},
	}
	for _, f := range deterministic {
		if err := p.Register(f.id, fixtureVersion, f.dtype, f.build); err != nil {
			return err
		}
	}
	return p.RegisterSeeded(FixtureAttention, fixtureVersion, tensor.Int, buildAttention)
}

func buildLinalg3(b *fixtures.Bundle) {
	b.IntMatrix("a", [][]int{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}).
		IntMatrix("b", [][]int{{9, 8, 7}, {6, 5, 4}, {3, 2, 1}}).
		IntMatrix("c", [][]int{{4, 7, 2}, {3, 6, 1}, {2, 5, 3}}).
		IntVector("u", 1, 2, 3).
		IntVector("v", 4, 5, 6).
		IntVector("array", 10, 20, 30, 40, 50).
		IntVector("poly", 2, 3, 4, 5).
		IntVector("points", 15, 25, 35, 45, 55).
		Scalar("poly_x", 2).
		Scalar("trapz_lo", 0).
		Scalar("trapz_hi", 1).
		Scalar("trapz_n", 100)
}

func buildMatrix4(b *fixtures.Bundle) {
	b.IntMatrix("a", [][]int{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}, {13, 14, 15, 16}}).
		IntMatrix("b", [][]int{{17, 18, 19, 20}, {21, 22, 23, 24}, {25, 26, 27, 28}, {29, 30, 31, 32}}).
		IntVector("u", 1, 2, 3, 4, 5, 6, 7, 8).
		IntVector("v", 9, 10, 11, 12, 13, 14, 15, 16).
		IntVector("x", 1, 2, 3, 4)
}

func buildNN(b *fixtures.Bundle) {
	b.IntVector("input", 15, 23, 8, 31).
		IntMatrix("w1", [][]int{
			{12, 8, 15, 3},
			{7, 19, 4, 11},
			{22, 6, 13, 9},
			{5, 17, 2, 14},
			{18, 1, 10, 16},
			{4, 20, 7, 12},
		}).
		IntVector("b1", 5, 8, 3, 12, 7, 9).
		IntMatrix("w2", [][]int{
			{9, 14, 6, 11, 3, 16},
			{13, 2, 18, 7, 12, 5},
			{8, 15, 1, 19, 4, 10},
			{17, 6, 20, 3, 14, 9},
		}).
		IntVector("b2", 4, 11, 6, 8).
		IntMatrix("w3", [][]int{{12, 7, 15, 4}, {8, 18, 3, 13}}).
		IntVector("b3", 2, 5).
		IntVector("true_label", 0, 100).
		Scalar("temperature", 10).
		Scalar("learning_rate", 0.01).
		Scalar("epsilon", 1e-7)
}

func buildCNN(b *fixtures.Bundle) {
	b.IntMatrix("image", [][]int{
		{120, 130, 125, 135, 140, 145, 150, 155},
		{110, 115, 120, 125, 130, 135, 140, 145},
		{100, 105, 110, 115, 120, 125, 130, 135},
		{90, 95, 100, 105, 110, 115, 120, 125},
		{80, 85, 90, 95, 100, 105, 110, 115},
		{70, 75, 80, 85, 90, 95, 100, 105},
		{60, 65, 70, 75, 80, 85, 90, 95},
		{50, 55, 60, 65, 70, 75, 80, 85},
	}).
		IntMatrix("sobel_x", [][]int{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}).
		IntMatrix("blur", [][]int{{1, 2, 1}, {2, 4, 2}, {1, 2, 1}}).
		Scalar("blur_divisor", 16)
}

var (
	embeddings = [][]int{
		{12, 8, 15, 3, 7, 19, 4, 11},
		{22, 6, 13, 9, 5, 17, 2, 14},
		{18, 1, 10, 16, 4, 20, 7, 12},
		{9, 14, 6, 11, 3, 16, 8, 13},
		{15, 2, 18, 5, 12, 8, 19, 1},
		{21, 7, 14, 10, 6, 17, 3, 20},
	}
	positions = [][]int{
		{0, 1, 0, 1, 0, 1, 0, 1},
		{1, 0, 1, 0, 1, 0, 1, 0},
		{0, 1, 0, 1, 0, 1, 0, 1},
		{1, 0, 1, 0, 1, 0, 1, 0},
		{0, 1, 0, 1, 0, 1, 0, 1},
		{1, 0, 1, 0, 1, 0, 1, 0},
	}
)

// buildAttention draws the query, key and value projections from rng in
// [1, 10), in that order, row-major.
func buildAttention(b *fixtures.Bundle, rng *fixtures.LCG) {
	b.IntMatrix("embeddings", embeddings).IntMatrix("positions", positions)
	for _, name := range []string{"wq", "wk", "wv"} {
		w := make([][]int, 8)
		for i := range w {
			w[i] = make([]int, 8)
			for j := range w[i] {
				w[i][j] = rng.IntRange(1, 10)
			}
		}
		b.IntMatrix(name, w)
	}
	b.Scalar("tokens", 3).Scalar("head_width", 4)
}

func buildHouse(b *fixtures.Bundle) {
	b.FloatVector("size", 10, 12, 15, 18, 20, 22, 25, 28, 30, 32).
		FloatVector("price", 15, 18, 22, 26, 30, 33, 38, 42, 45, 48).
		Scalar("weight", 1).
		Scalar("bias", 0).
		Scalar("learning_rate", 0.001).
		Scalar("epochs", 100).
		Scalar("query_size", 24)
}

func buildMLP(b *fixtures.Bundle) {
	b.FloatMatrix("w1", [][]float64{{0.5, -0.4}, {-0.2, 0.6}, {0.8, -0.1}}).
		FloatVector("b1", 0.1, -0.1, 0).
		FloatMatrix("w2", [][]float64{{0.7, -0.5, 0.3}}).
		FloatVector("b2", -0.2).
		FloatMatrix("x", [][]float64{{2, 3}}).
		FloatMatrix("y", [][]float64{{1}}).
		Scalar("learning_rate", 0.01).
		Scalar("epochs", 10)
}

func buildCheckpoint(b *fixtures.Bundle) {
	b.FloatMatrix("w1", [][]float64{{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}}).
		FloatVector("b1", 0, 0, 0).
		FloatMatrix("w2", [][]float64{{-0.5, -0.5, -0.5}}).
		FloatVector("b2", 0).
		FloatMatrix("x", [][]float64{{1, 2}, {0.5, -0.5}}).
		FloatMatrix("y", [][]float64{{1}, {0}}).
		Scalar("learning_rate", 0.01).
		Scalar("epochs", 20).
		Scalar("resume_epochs", 10)
}
