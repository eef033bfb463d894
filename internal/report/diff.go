package report

import (
	"fmt"
	"sort"

	"github.com/mwiater/kernbench/internal/oracle"
)

// Change classifies one kernel across two reports.
type Change string

const (
	ChangeNone      Change = "unchanged"
	ChangeVerdict   Change = "verdict"
	ChangeDrift     Change = "drift"
	ChangeAdded     Change = "added"
	ChangeRemoved   Change = "removed"
	ChangeIncompare Change = "incomparable"
)

// DiffEntry describes how one kernel moved between a baseline and a
// candidate report.
type DiffEntry struct {
	Name             string
	Change           Change
	BaselineOutcome  string
	CandidateOutcome string
	Drift            oracle.Outcome
	// MeanRatio is candidate mean over baseline mean; 0 when either side
	// has no timing.
	MeanRatio float64
}

// Regressed reports whether the entry should fail a comparison gate.
func (e DiffEntry) Regressed() bool {
	switch e.Change {
	case ChangeVerdict, ChangeDrift, ChangeRemoved, ChangeIncompare:
		return true
	}
	return false
}

// Diff compares two reports kernel by kernel. Actual values are compared
// with tol; kernels present in only one report are listed as added or
// removed. Entries follow the baseline order, then candidate-only kernels
// sorted by name.
func Diff(baseline, candidate *Report, tol oracle.Tolerance) []DiffEntry {
	var entries []DiffEntry
	seen := make(map[string]bool, len(baseline.Results))
	for _, base := range baseline.Results {
		seen[base.Name] = true
		cand, ok := candidate.Lookup(base.Name)
		if !ok {
			entries = append(entries, DiffEntry{Name: base.Name, Change: ChangeRemoved, BaselineOutcome: Outcome(base)})
			continue
		}
		entries = append(entries, diffOne(base, cand, tol))
	}

	var added []string
	for _, cand := range candidate.Results {
		if !seen[cand.Name] {
			added = append(added, cand.Name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		cand, _ := candidate.Lookup(name)
		entries = append(entries, DiffEntry{Name: name, Change: ChangeAdded, CandidateOutcome: Outcome(cand)})
	}
	return entries
}

func diffOne(base, cand Result, tol oracle.Tolerance) DiffEntry {
	e := DiffEntry{
		Name:             base.Name,
		Change:           ChangeNone,
		BaselineOutcome:  Outcome(base),
		CandidateOutcome: Outcome(cand),
	}
	if base.Timing != nil && cand.Timing != nil && base.Timing.MeanSeconds > 0 {
		e.MeanRatio = cand.Timing.MeanSeconds / base.Timing.MeanSeconds
	}
	if e.BaselineOutcome != e.CandidateOutcome {
		e.Change = ChangeVerdict
		return e
	}
	if base.Actual == nil && cand.Actual == nil {
		return e
	}
	if base.Actual == nil || cand.Actual == nil {
		e.Change = ChangeIncompare
		return e
	}
	a, errA := base.Actual.Tensor()
	b, errB := cand.Actual.Tensor()
	if errA != nil || errB != nil {
		e.Change = ChangeIncompare
		return e
	}
	e.Drift = oracle.Compare(b, a, tol)
	if !e.Drift.Passed() {
		e.Change = ChangeDrift
	}
	return e
}

// String renders one entry as a single text line.
func (e DiffEntry) String() string {
	switch e.Change {
	case ChangeAdded:
		return fmt.Sprintf("%s: added (%s)", e.Name, e.CandidateOutcome)
	case ChangeRemoved:
		return fmt.Sprintf("%s: removed (was %s)", e.Name, e.BaselineOutcome)
	case ChangeVerdict:
		return fmt.Sprintf("%s: %s -> %s%s", e.Name, e.BaselineOutcome, e.CandidateOutcome, e.ratioSuffix())
	case ChangeDrift:
		return fmt.Sprintf("%s: drift %s%s", e.Name, e.Drift.Detail, e.ratioSuffix())
	case ChangeIncompare:
		return fmt.Sprintf("%s: values not comparable%s", e.Name, e.ratioSuffix())
	}
	return fmt.Sprintf("%s: %s%s", e.Name, e.CandidateOutcome, e.ratioSuffix())
}

func (e DiffEntry) ratioSuffix() string {
	if e.MeanRatio == 0 {
		return ""
	}
	return fmt.Sprintf(" (time x%.2f)", e.MeanRatio)
}
