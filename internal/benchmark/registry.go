package benchmark

import (
	"strings"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/oracle"
)

// Registry holds kernel specs in registration order.
type Registry struct {
	specs []KernelSpec
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

// Register adds spec. Names must be unique and non-empty. A zero tolerance
// is replaced by the default for the kernel's family.
func (r *Registry) Register(spec KernelSpec) error {
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" {
		return errs.InvalidConfig("kernel name is required")
	}
	if _, dup := r.index[spec.Name]; dup {
		return errs.InvalidConfig("kernel %q registered twice", spec.Name)
	}
	if spec.Kernel == nil {
		return errs.InvalidConfig("kernel %q has no implementation", spec.Name)
	}
	if spec.Expected != nil && spec.ExpectError != nil {
		return errs.InvalidConfig("kernel %q declares both an expected value and an expected error", spec.Name)
	}
	oracles := 0
	for _, set := range []bool{spec.Expected != nil, spec.Reference != nil, spec.Check != nil} {
		if set {
			oracles++
		}
	}
	if oracles > 1 {
		return errs.InvalidConfig("kernel %q declares more than one oracle", spec.Name)
	}
	if spec.Backend == "" {
		spec.Backend = BackendNative
	}
	if spec.Tolerance == (oracle.Tolerance{}) {
		spec.Tolerance = oracle.ToleranceFor(spec.Name)
	}
	spec.Fixtures = append([]string(nil), spec.Fixtures...)
	r.index[spec.Name] = len(r.specs)
	r.specs = append(r.specs, spec)
	return nil
}

// Specs returns the registered specs in order.
func (r *Registry) Specs() []KernelSpec {
	return append([]KernelSpec(nil), r.specs...)
}

// Lookup finds a spec by name.
func (r *Registry) Lookup(name string) (KernelSpec, bool) {
	i, ok := r.index[name]
	if !ok {
		return KernelSpec{}, false
	}
	return r.specs[i], true
}

// Names lists kernel names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, s := range r.specs {
		names[i] = s.Name
	}
	return names
}

// Len returns the number of registered kernels.
func (r *Registry) Len() int { return len(r.specs) }

// Select returns the specs matching filter, keeping registration order. A
// filter entry matches a kernel by full name or by family, the part before
// the first dot. An empty filter selects everything; an entry that matches
// nothing is a configuration error.
func (r *Registry) Select(filter []string) ([]KernelSpec, error) {
	if len(filter) == 0 {
		return r.Specs(), nil
	}
	want := map[string]bool{}
	for _, f := range filter {
		if f = strings.TrimSpace(f); f != "" {
			want[f] = false
		}
	}
	var out []KernelSpec
	for _, s := range r.specs {
		family := Family(s.Name)
		_, byName := want[s.Name]
		_, byFamily := want[family]
		if byName || byFamily {
			out = append(out, s)
			if byName {
				want[s.Name] = true
			}
			if byFamily {
				want[family] = true
			}
		}
	}
	for f, matched := range want {
		if !matched {
			return nil, errs.InvalidConfig("no kernel matches %q", f)
		}
	}
	return out, nil
}

// Family returns the kernel family: the name up to the first dot.
func Family(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
