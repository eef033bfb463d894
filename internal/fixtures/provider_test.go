package fixtures

import (
	"errors"
	"testing"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p := NewProvider()
	if err := p.Register("linalg.2x2", "v1", tensor.Int, func(b *Bundle) {
		b.IntMatrix("A", [][]int{{1, 2}, {3, 4}}).Scalar("k", 3)
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := p.RegisterSeeded("noise", "v1", tensor.Int, func(b *Bundle, rng *LCG) {
		vals := make([]int, 8)
		for i := range vals {
			vals[i] = rng.IntRange(1, 10)
		}
		b.IntVector("x", vals...)
	}); err != nil {
		t.Fatalf("register seeded: %v", err)
	}
	return p
}

func TestGetUnknownFixture(t *testing.T) {
	p := newTestProvider(t)
	if _, err := p.Get("missing"); !errors.Is(err, errs.ErrUnknownFixture) {
		t.Fatalf("expected ErrUnknownFixture, got %v", err)
	}
}

func TestGetMemoizesAndCopies(t *testing.T) {
	p := newTestProvider(t)
	f1, err := p.Get("linalg.2x2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	f2, _ := p.Get("linalg.2x2")
	if f1 != f2 {
		t.Fatal("expected memoized fixture")
	}

	a, err := f1.Array("A")
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	a.Set(100, 0, 0)
	again, _ := f1.Array("A")
	if again.At(0, 0) != 1 {
		t.Fatalf("fixture mutated through returned array: %v", again.Data())
	}
	if k, err := f1.Scalar("k"); err != nil || k != 3 {
		t.Fatalf("Scalar(k) = %v, %v", k, err)
	}
	if _, err := f1.Array("nope"); !errors.Is(err, errs.ErrFixture) {
		t.Fatalf("expected fixture error for unknown array, got %v", err)
	}
	if f1.Key() != "linalg.2x2@v1" {
		t.Fatalf("unexpected key %q", f1.Key())
	}
}

func TestSeededFixtureRequiresSeed(t *testing.T) {
	p := newTestProvider(t)
	if _, err := p.Get("noise"); !errors.Is(err, errs.ErrFixture) {
		t.Fatalf("expected missing seed error, got %v", err)
	}
	if _, err := p.Get("linalg.2x2", WithSeed(1)); !errors.Is(err, errs.ErrFixture) {
		t.Fatalf("expected error for seed on deterministic fixture, got %v", err)
	}
}

func TestSeededFixtureIsReproducible(t *testing.T) {
	a := newTestProvider(t)
	b := newTestProvider(t)

	fa, err := a.Get("noise", WithSeed(42))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	fb, err := b.Get("noise", WithSeed(42))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	xa, _ := fa.Array("x")
	xb, _ := fb.Array("x")
	if !xa.Equal(xb) {
		t.Fatalf("same seed produced different data: %v vs %v", xa.Data(), xb.Data())
	}
	for _, v := range xa.Data() {
		if v < 1 || v >= 10 {
			t.Fatalf("value %v outside [1,10)", v)
		}
	}
	if seed, ok := fa.Seed(); !ok || seed != 42 {
		t.Fatalf("expected recorded seed 42, got %d %v", seed, ok)
	}

	fc, _ := a.Get("noise", WithSeed(7))
	xc, _ := fc.Array("x")
	if xa.Equal(xc) {
		t.Fatal("different seeds should produce different data")
	}
}

func TestRegisterRejectsDuplicatesAndBadBuilds(t *testing.T) {
	p := newTestProvider(t)
	if err := p.Register("linalg.2x2", "v2", tensor.Int, func(*Bundle) {}); !errors.Is(err, errs.ErrFixture) {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}
	if err := p.Register("ragged", "v1", tensor.Int, func(b *Bundle) {
		b.IntMatrix("R", [][]int{{1, 2}, {3}})
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := p.Get("ragged"); !errors.Is(err, errs.ErrFixture) {
		t.Fatalf("expected fixture error for ragged literal, got %v", err)
	}
	if err := p.Register("mixed", "v1", tensor.Int, func(b *Bundle) {
		b.FloatVector("f", 0.5)
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := p.Get("mixed"); !errors.Is(err, errs.ErrFixture) {
		t.Fatalf("expected dtype mismatch error, got %v", err)
	}
	if got := p.IDs(); len(got) != 4 || got[0] != "linalg.2x2" || got[1] != "noise" {
		t.Fatalf("unexpected registration order %v", got)
	}
}
