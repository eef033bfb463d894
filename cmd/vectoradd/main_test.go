package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/external"
)

func TestRunPrintsValidPayload(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), &out, options{size: 1000, runs: 4, warmup: 1, blockSize: 64}); err != nil {
		t.Fatalf("run: %v", err)
	}
	p, diags, err := external.ParseOutput(out.String())
	if err != nil {
		t.Fatalf("ParseOutput: %v\n%s", err, out.String())
	}
	if p.Kernel != "vector_add" || p.Runs != 4 || p.Size != 1000 || p.BlockSize != 64 {
		t.Fatalf("payload = %+v", p)
	}
	if p.Result == nil || *p.Result != 3 {
		t.Fatalf("result = %v", p.Result)
	}
	if len(diags) != 2 {
		t.Fatalf("diagnostics = %q", diags)
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--size", "0"})
	if err := cmd.Execute(); !errors.Is(err, errs.ErrInvalidConfig) {
		t.Fatalf("Execute: %v, want invalid config", err)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestAddBlocks(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{10, 20, 30, 40, 50}
	for _, block := range []int{1, 2, 5, 8} {
		c := make([]float64, len(a))
		addBlocks(c, a, b, block)
		for i := range c {
			if c[i] != a[i]+b[i] {
				t.Fatalf("block %d: c[%d] = %v", block, i, c[i])
			}
		}
	}
}
