package catalog

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/mwiater/kernbench/internal/benchmark"
	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/oracle"
	"github.com/mwiater/kernbench/internal/report"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func runCatalog(t *testing.T, seed *uint64, filter ...string) *report.Report {
	t.Helper()
	provider, err := NewProvider()
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	h, err := benchmark.New(provider, registry, benchmark.Options{Warmup: 0, Runs: 1, Seed: seed, Filter: filter})
	if err != nil {
		t.Fatalf("benchmark.New: %v", err)
	}
	r, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return r
}

func seedOf(v uint64) *uint64 { return &v }

func TestDefaultCatalogPasses(t *testing.T) {
	r := runCatalog(t, seedOf(42))
	registry, _ := NewRegistry()
	if len(r.Results) != registry.Len() {
		t.Fatalf("got %d results for %d kernels", len(r.Results), registry.Len())
	}
	for _, res := range r.Results {
		if res.Status != report.StatusOK {
			t.Errorf("%s: status %s verdict %s kind %s: %s%s", res.Name, res.Status, res.Verdict, res.ErrorKind, res.Error, res.Detail)
		}
		if res.Timing == nil || res.Timing.Runs != 1 {
			t.Errorf("%s: timing %+v", res.Name, res.Timing)
		}
	}
	if r.Partial {
		t.Fatalf("report marked partial")
	}
}

func TestCatalogVerdicts(t *testing.T) {
	r := runCatalog(t, seedOf(7))
	cases := map[string]oracle.Verdict{
		"linalg3.matmul":           oracle.Match,
		"linalg3.cross":            oracle.Match,
		"linalg3.inverse_singular": oracle.Match,
		"matrix4.composite":        oracle.Match,
		"nn.predicted_class":       oracle.Match,
		"cnn.maxpool":              oracle.Match,
		"regression.loss_curve":    oracle.Match,
		"checkpoint.roundtrip":     oracle.Match,
		"attention.scores":         oracle.WithinTolerance,
		"attention.multi_head":     oracle.WithinTolerance,
		"mlp.grad_crosscheck":      oracle.WithinTolerance,
		"checkpoint.resume":        oracle.WithinTolerance,
		"reference.inverse":        oracle.WithinTolerance,
	}
	for name, want := range cases {
		res, ok := r.Lookup(name)
		if !ok {
			t.Errorf("%s missing from report", name)
			continue
		}
		if res.Verdict != want {
			t.Errorf("%s verdict = %s, want %s (%s)", name, res.Verdict, want, res.Detail)
		}
	}

	singular, _ := r.Lookup("linalg3.inverse_singular")
	if !strings.Contains(singular.Detail, errs.KindNumericDomain) {
		t.Fatalf("inverse_singular detail = %q", singular.Detail)
	}
	ref, _ := r.Lookup("reference.matmul")
	if ref.Backend != benchmark.BackendReference || ref.Expected == nil {
		t.Fatalf("reference.matmul = %+v", ref)
	}
}

func TestCheckpointResumeMatchesUninterrupted(t *testing.T) {
	r := runCatalog(t, nil, "checkpoint")
	res, ok := r.Lookup("checkpoint.resume")
	if !ok {
		t.Fatalf("checkpoint.resume missing")
	}
	if res.MaxAbsDelta == nil || *res.MaxAbsDelta != 0 {
		t.Fatalf("resumed losses drifted: %v", res.MaxAbsDelta)
	}
	actual, err := res.Actual.Tensor()
	if err != nil {
		t.Fatalf("Tensor: %v", err)
	}
	if actual.Size() != 30 {
		t.Fatalf("got %d losses, want 30", actual.Size())
	}
	if first, last := actual.At(0), actual.At(29); !(last < first) {
		t.Fatalf("loss did not decrease: %v -> %v", first, last)
	}
}

func TestAttentionRequiresSeed(t *testing.T) {
	provider, _ := NewProvider()
	registry, _ := NewRegistry()
	h, err := benchmark.New(provider, registry, benchmark.Options{Runs: 1, Filter: []string{"attention"}})
	if err != nil {
		t.Fatalf("benchmark.New: %v", err)
	}
	if _, err := h.Run(context.Background()); !errors.Is(err, errs.ErrFixture) {
		t.Fatalf("Run without seed: %v, want fixture error", err)
	}
}

func TestAttentionSeedIsRecorded(t *testing.T) {
	first := runCatalog(t, seedOf(1), "attention.scores")
	second := runCatalog(t, seedOf(1), "attention.scores")
	a, _ := first.Lookup("attention.scores")
	b, _ := second.Lookup("attention.scores")
	if a.Seed == nil || *a.Seed != 1 {
		t.Fatalf("seed = %v, want 1", a.Seed)
	}
	if a.Actual.String() != b.Actual.String() {
		t.Fatalf("same seed gave %s and %s", a.Actual, b.Actual)
	}
}

func TestCatalogCoversEveryFamily(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	seen := map[string]bool{}
	for _, name := range registry.Names() {
		seen[benchmark.Family(name)] = true
	}
	for _, family := range []string{"linalg3", "matrix4", "nn", "cnn", "attention", "regression", "mlp", "checkpoint", "reference"} {
		if !seen[family] {
			t.Errorf("no kernels in family %s", family)
		}
	}
	if err := Register(registry); !errs.IsConfig(err) {
		t.Fatalf("registering twice: %v, want config error", err)
	}
}

func TestProviderFixtures(t *testing.T) {
	p, err := NewProvider()
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if got := len(p.IDs()); got != 8 {
		t.Fatalf("got %d fixtures, want 8", got)
	}
	info, err := p.Describe(FixtureAttention)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if !info.Seeded {
		t.Fatalf("attention fixture should be seeded: %+v", info)
	}
}
