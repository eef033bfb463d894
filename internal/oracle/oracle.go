// Package oracle judges kernel outputs against literal expected values or
// against a second implementation.
package oracle

import (
	"fmt"
	"math"
	"strings"

	"github.com/mwiater/kernbench/internal/tensor"
)

// Verdict classifies a comparison.
type Verdict string

const (
	Match           Verdict = "MATCH"
	WithinTolerance Verdict = "WITHIN_TOLERANCE"
	Mismatch        Verdict = "MISMATCH"
)

// DefaultStrict is the delta at or below which a floating result is a MATCH.
const DefaultStrict = 1e-9

// Tolerance declares how closely a kernel must reproduce its expected value.
// Exact demands equality; otherwise an element passes when its absolute
// delta is at most Absolute, or at most Relative·|expected| when Relative is
// set. Strict tightens the MATCH threshold and defaults to DefaultStrict.
type Tolerance struct {
	Exact    bool    `json:"exact,omitempty"`
	Absolute float64 `json:"absolute,omitempty"`
	Relative float64 `json:"relative,omitempty"`
	Strict   float64 `json:"strict,omitempty"`
}

// ExactTolerance is the policy for integer kernels.
var ExactTolerance = Tolerance{Exact: true}

// Abs is a floating policy with an absolute epsilon.
func Abs(eps float64) Tolerance { return Tolerance{Absolute: eps} }

func (t Tolerance) strict() float64 {
	if t.Strict > 0 {
		return t.Strict
	}
	return DefaultStrict
}

// String renders the policy for logs and reports.
func (t Tolerance) String() string {
	if t.Exact {
		return "exact"
	}
	parts := []string{fmt.Sprintf("abs=%g", t.Absolute)}
	if t.Relative > 0 {
		parts = append(parts, fmt.Sprintf("rel=%g", t.Relative))
	}
	return strings.Join(parts, " ")
}

// Outcome is the full result of a comparison. Index is the flat position of
// the largest (or first offending) delta, -1 when not applicable.
type Outcome struct {
	Verdict     Verdict
	MaxAbsDelta float64
	Index       int
	Detail      string
}

// Passed reports whether the verdict is MATCH or WITHIN_TOLERANCE.
func (o Outcome) Passed() bool { return o.Verdict != Mismatch }

func mismatch(format string, args ...any) Outcome {
	return Outcome{Verdict: Mismatch, Index: -1, Detail: fmt.Sprintf(format, args...)}
}

// Verify compares actual against a literal expected value.
func Verify(actual, expected *tensor.Tensor, tol Tolerance) Outcome {
	if actual == nil || expected == nil {
		return mismatch("missing value (actual=%v expected=%v)", actual, expected)
	}
	if !actual.SameShape(expected) {
		return mismatch("shape %v, expected %v", actual.Shape(), expected.Shape())
	}
	ad, ed := actual.Float64s(), expected.Float64s()
	for i, v := range ad {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return mismatch("element %d is %v", i, v)
		}
	}

	out := Outcome{Verdict: Match, Index: -1}
	failed := -1
	for i := range ad {
		d := math.Abs(ad[i] - ed[i])
		if d > out.MaxAbsDelta || out.Index < 0 {
			out.MaxAbsDelta, out.Index = d, i
		}
		if failed < 0 && !tol.allows(d, ed[i]) {
			failed = i
		}
	}

	switch {
	case tol.Exact:
		if out.MaxAbsDelta != 0 {
			out.Verdict = Mismatch
		}
	case failed >= 0:
		out.Verdict = Mismatch
		out.Index = failed
	case out.MaxAbsDelta <= tol.strict():
		out.Verdict = Match
	default:
		out.Verdict = WithinTolerance
	}
	if out.Verdict == Mismatch {
		i := out.Index
		out.Detail = fmt.Sprintf("element %d: actual %v, expected %v, delta %v (%s)", i, ad[i], ed[i], math.Abs(ad[i]-ed[i]), tol)
	}
	return out
}

func (t Tolerance) allows(delta, expected float64) bool {
	if t.Exact {
		return delta == 0
	}
	if delta <= t.Absolute {
		return true
	}
	return t.Relative > 0 && delta <= t.Relative*math.Abs(expected)
}

// Compare checks two independent implementations against each other. Two
// engines agreeing is reported as WITHIN_TOLERANCE, never MATCH.
func Compare(a, b *tensor.Tensor, tol Tolerance) Outcome {
	if a == nil || b == nil {
		return mismatch("missing value")
	}
	if !a.SameShape(b) {
		return mismatch("shape %v vs %v", a.Shape(), b.Shape())
	}
	out := Outcome{Verdict: WithinTolerance, Index: -1}
	ad, bd := a.Float64s(), b.Float64s()
	for i := range ad {
		if math.IsNaN(ad[i]) || math.IsNaN(bd[i]) {
			return mismatch("element %d is NaN", i)
		}
		if d := math.Abs(ad[i] - bd[i]); d > out.MaxAbsDelta || out.Index < 0 {
			out.MaxAbsDelta, out.Index = d, i
		}
	}
	if out.MaxAbsDelta > tol.Absolute {
		out.Verdict = Mismatch
		out.Detail = fmt.Sprintf("max delta %v at element %d exceeds %v", out.MaxAbsDelta, out.Index, tol.Absolute)
	}
	return out
}

// LossEquivalent checks that a restored state reproduces the saved loss.
func LossEquivalent(before, after, eps float64) Outcome {
	d := math.Abs(before - after)
	switch {
	case math.IsNaN(d):
		return mismatch("loss is NaN (before=%v after=%v)", before, after)
	case d == 0:
		return Outcome{Verdict: Match, Index: -1}
	case d <= eps:
		return Outcome{Verdict: WithinTolerance, MaxAbsDelta: d, Index: -1}
	default:
		return Outcome{Verdict: Mismatch, MaxAbsDelta: d, Index: -1,
			Detail: fmt.Sprintf("loss %v restored as %v (delta %v > %v)", before, after, d, eps)}
	}
}
