package oracle

import "strings"

// DefaultTolerances maps kernel families to their policy. A kernel named
// "family.op" is looked up by its full name first, then by family.
var DefaultTolerances = map[string]Tolerance{
	"linalg3":             ExactTolerance,
	"linalg3.mean":        Abs(1e-12),
	"linalg3.std":         Abs(1e-9),
	"linalg3.trapz":       Abs(1e-6),
	"linalg3.eigen":       Abs(1e-9),
	"linalg3.det":         Abs(1e-9),
	"matrix4":             ExactTolerance,
	"matrix4.det2":        Abs(1e-9),
	"nn":                  Abs(1e-6),
	"nn.logits":           ExactTolerance,
	"cnn":                 ExactTolerance,
	"cnn.avgpool":         Abs(1e-9),
	"attention":           Abs(1e-6),
	"attention.scores":    ExactTolerance,
	"regression":          Abs(1e-6),
	"mlp":                 Abs(1e-7),
	"mlp.grad_crosscheck": Abs(1e-7),
	"checkpoint":          Abs(1e-6),
	"reference":           Abs(1e-7),
}

// fallback applies to kernels with no entry at all.
var fallback = Abs(1e-6)

// ToleranceFor resolves the policy for a kernel name.
func ToleranceFor(name string) Tolerance {
	if t, ok := DefaultTolerances[name]; ok {
		return t
	}
	if family, _, ok := strings.Cut(name, "."); ok {
		if t, ok := DefaultTolerances[family]; ok {
			return t
		}
	}
	return fallback
}
