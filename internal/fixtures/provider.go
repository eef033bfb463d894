package fixtures

import (
	"fmt"
	"sync"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/tensor"
)

// Builder produces the contents of a deterministic fixture.
type Builder func(b *Bundle)

// SeededBuilder produces the contents of a fixture from an explicit generator.
type SeededBuilder func(b *Bundle, rng *LCG)

// Info describes a registered fixture without building it.
type Info struct {
	ID      string
	Version string
	DType   tensor.DType
	Seeded  bool
}

type entry struct {
	info   Info
	build  Builder
	seeded SeededBuilder
}

// Provider is the fixture registry. It is safe for concurrent use.
type Provider struct {
	mu      sync.Mutex
	entries map[string]entry
	order   []string
	cache   map[string]*Fixture
}

// NewProvider returns an empty provider.
func NewProvider() *Provider {
	return &Provider{
		entries: make(map[string]entry),
		cache:   make(map[string]*Fixture),
	}
}

// Register adds a deterministic fixture.
func (p *Provider) Register(id, version string, dtype tensor.DType, build Builder) error {
	if build == nil {
		return errs.Fixture("fixture %q has no builder", id)
	}
	return p.add(entry{info: Info{ID: id, Version: version, DType: dtype}, build: build})
}

// RegisterSeeded adds a fixture that must be requested WithSeed.
func (p *Provider) RegisterSeeded(id, version string, dtype tensor.DType, build SeededBuilder) error {
	if build == nil {
		return errs.Fixture("fixture %q has no builder", id)
	}
	return p.add(entry{info: Info{ID: id, Version: version, DType: dtype, Seeded: true}, seeded: build})
}

func (p *Provider) add(e entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e.info.ID == "" || e.info.Version == "" {
		return errs.Fixture("fixture id and version are required")
	}
	if _, exists := p.entries[e.info.ID]; exists {
		return errs.Fixture("fixture %q already registered", e.info.ID)
	}
	p.entries[e.info.ID] = e
	p.order = append(p.order, e.info.ID)
	return nil
}

// Option customizes a Get request.
type Option func(*request)

type request struct {
	seed *uint64
}

// WithSeed supplies the seed for a seeded fixture.
func WithSeed(seed uint64) Option {
	return func(r *request) { r.seed = &seed }
}

// Get returns the fixture registered under id, building it on first use.
func (p *Provider) Get(id string, opts ...Option) (*Fixture, error) {
	var req request
	for _, opt := range opts {
		opt(&req)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[id]
	if !ok {
		return nil, errs.UnknownFixture(id)
	}
	switch {
	case e.info.Seeded && req.seed == nil:
		return nil, errs.Fixture("missing seed for fixture %q", id)
	case !e.info.Seeded && req.seed != nil:
		return nil, errs.Fixture("fixture %q is deterministic and does not take a seed", id)
	}

	key := id
	if req.seed != nil {
		key = fmt.Sprintf("%s#%d", id, *req.seed)
	}
	if f, ok := p.cache[key]; ok {
		return f, nil
	}

	b := NewBundle()
	if e.info.Seeded {
		e.seeded(b, NewLCG(*req.seed))
	} else {
		e.build(b)
	}
	f, err := b.seal(e.info.ID, e.info.Version, e.info.DType, req.seed)
	if err != nil {
		return nil, err
	}
	p.cache[key] = f
	return f, nil
}

// Describe returns registration metadata for id.
func (p *Provider) Describe(id string) (Info, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	if !ok {
		return Info{}, errs.UnknownFixture(id)
	}
	return e.info, nil
}

// IDs lists fixture identifiers in registration order.
func (p *Provider) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.order...)
}
