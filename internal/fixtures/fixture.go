// Package fixtures supplies the fixed, versioned input data consumed by kernels.
//
// Fixtures are built lazily on first request and memoized; after that they
// never change. Fixtures that need pseudo-random values must be requested
// with an explicit seed.
package fixtures

import (
	"fmt"
	"sort"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

// Fixture is an immutable named bundle of tensors and scalars.
type Fixture struct {
	id      string
	version string
	dtype   tensor.DType
	arrays  map[string]*tensor.Tensor
	scalars map[string]float64
	seed    *uint64
}

// ID returns the fixture identifier.
func (f *Fixture) ID() string { return f.id }

// Version returns the fixture version tag.
func (f *Fixture) Version() string { return f.version }

// DType returns the declared element type of the fixture's arrays.
func (f *Fixture) DType() tensor.DType { return f.dtype }

// Key identifies the fixture contents: id, version and seed when present.
func (f *Fixture) Key() string {
	if f.seed != nil {
		return fmt.Sprintf("%s@%s#%d", f.id, f.version, *f.seed)
	}
	return f.id + "@" + f.version
}

// Seed returns the seed the fixture was generated with, if any.
func (f *Fixture) Seed() (uint64, bool) {
	if f.seed == nil {
		return 0, false
	}
	return *f.seed, true
}

// Array returns a copy of the named array.
func (f *Fixture) Array(name string) (*tensor.Tensor, error) {
	t, ok := f.arrays[name]
	if !ok {
		return nil, errs.Fixture("fixture %s has no array %q", f.Key(), name)
	}
	return t.Clone(), nil
}

// View returns the stored array without copying. Callers must not modify it.
func (f *Fixture) View(name string) (*tensor.Tensor, error) {
	t, ok := f.arrays[name]
	if !ok {
		return nil, errs.Fixture("fixture %s has no array %q", f.Key(), name)
	}
	return t, nil
}

// Scalar returns the named scalar.
func (f *Fixture) Scalar(name string) (float64, error) {
	v, ok := f.scalars[name]
	if !ok {
		return 0, errs.Fixture("fixture %s has no scalar %q", f.Key(), name)
	}
	return v, nil
}

// Names lists array and scalar names in sorted order.
func (f *Fixture) Names() []string {
	names := make([]string, 0, len(f.arrays)+len(f.scalars))
	for name := range f.arrays {
		names = append(names, name)
	}
	for name := range f.scalars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bundle collects values while a builder runs. It is discarded once the
// Fixture is sealed.
type Bundle struct {
	arrays  map[string]*tensor.Tensor
	scalars map[string]float64
	err     error
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{arrays: map[string]*tensor.Tensor{}, scalars: map[string]float64{}}
}

// Tensor adds a copy of t.
func (b *Bundle) Tensor(name string, t *tensor.Tensor) *Bundle {
	return b.add(name, t, nil)
}

// IntMatrix adds an integer matrix literal.
func (b *Bundle) IntMatrix(name string, rows [][]int) *Bundle {
	t, err := tensor.IntMatrix(rows)
	return b.add(name, t, err)
}

// FloatMatrix adds a floating-point matrix literal.
func (b *Bundle) FloatMatrix(name string, rows [][]float64) *Bundle {
	t, err := tensor.Matrix(tensor.Float, rows)
	return b.add(name, t, err)
}

// IntVector adds an integer vector literal.
func (b *Bundle) IntVector(name string, values ...int) *Bundle {
	return b.add(name, tensor.IntVector(values...), nil)
}

// FloatVector adds a floating-point vector literal.
func (b *Bundle) FloatVector(name string, values ...float64) *Bundle {
	return b.add(name, tensor.Vector(tensor.Float, values...), nil)
}

// add remembers the first construction error; it is reported when the
// fixture is sealed.
func (b *Bundle) add(name string, t *tensor.Tensor, err error) *Bundle {
	if b.err != nil {
		return b
	}
	if err == nil && t == nil {
		err = fmt.Errorf("nil tensor")
	}
	if err != nil {
		b.err = fmt.Errorf("array %q: %w", name, err)
		return b
	}
	b.arrays[name] = t.Clone()
	return b
}

// Scalar adds a scalar value.
func (b *Bundle) Scalar(name string, v float64) *Bundle {
	b.scalars[name] = v
	return b
}

// Err returns the first error recorded while building.
func (b *Bundle) Err() error { return b.err }

func (b *Bundle) seal(id, version string, dtype tensor.DType, seed *uint64) (*Fixture, error) {
	if b.err != nil {
		return nil, errs.Fixture("build %s@%s: %v", id, version, b.err)
	}
	for name, t := range b.arrays {
		if t.DType() != dtype {
			return nil, errs.Fixture("fixture %s@%s array %q has dtype %s, declared %s", id, version, name, t.DType(), dtype)
		}
	}
	f := &Fixture{
		id:      id,
		version: version,
		dtype:   dtype,
		arrays:  b.arrays,
		scalars: b.scalars,
	}
	if seed != nil {
		s := *seed
		f.seed = &s
	}
	return f, nil
}
