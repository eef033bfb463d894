package external

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/kernbench/internal/errs"
)

func fakeBinary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fakes need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "bench.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	return path
}

func TestBuildArgs(t *testing.T) {
	args, err := BuildArgs(Request{Size: 1024, Runs: 10, Warmup: 2, BlockSize: 256})
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	want := "--size 1024 --runs 10 --warmup 2 --block-size 256"
	if got := strings.Join(args, " "); got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}

	args, err = BuildArgs(Request{Size: 8, Runs: 1})
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	if strings.Contains(strings.Join(args, " "), "--block-size") {
		t.Fatalf("block size emitted when unset: %v", args)
	}

	for _, req := range []Request{{Size: 0, Runs: 1}, {Size: 1, Runs: 0}, {Size: 1, Runs: 1, Warmup: -1}, {Size: 1, Runs: 1, BlockSize: 5000}} {
		if _, err := BuildArgs(req); !errors.Is(err, errs.ErrInvalidConfig) {
			t.Fatalf("%+v: expected ErrInvalidConfig, got %v", req, err)
		}
	}
}

func TestParseOutput(t *testing.T) {
	stdout := "device: fake\nwarming up\n{\"backend\":\"hip\",\"kernel\":\"vector_add\",\"size\":1024,\"runs\":5,\"mean_ms\":0.25,\"result\":3}\n\n"
	p, diags, err := ParseOutput(stdout)
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if p.Kernel != "vector_add" || p.Runs != 5 || p.MeanMS != 0.25 || p.Backend != "hip" {
		t.Fatalf("payload = %+v", p)
	}
	if p.Result == nil || *p.Result != 3 {
		t.Fatalf("result = %v", p.Result)
	}
	if len(diags) != 2 || diags[0] != "device: fake" {
		t.Fatalf("diagnostics = %q", diags)
	}
}

func TestParseOutputRejectsBadPayload(t *testing.T) {
	cases := map[string]string{
		"empty":        "\n\n",
		"not json":     "{\"kernel\":\"x\",\"runs\":1,\"mean_ms\":1}\ndone\n",
		"missing mean": "{\"kernel\":\"x\",\"runs\":1}\n",
		"zero runs":    "{\"kernel\":\"x\",\"runs\":0,\"mean_ms\":1}\n",
	}
	for name, stdout := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseOutput(stdout); !errors.Is(err, errs.ErrKernelExecution) {
				t.Fatalf("expected ErrKernelExecution, got %v", err)
			}
		})
	}
}

func TestRunSuccess(t *testing.T) {
	bin := fakeBinary(t, `echo "args: $*"
echo '{"kernel":"vector_add","runs":3,"warmup":1,"mean_ms":1.5,"min_ms":1.0,"max_ms":2.0}'`)
	r := Runner{Binary: bin, ExtraArgs: []string{"--extra"}, Timeout: 10 * time.Second}
	res, err := r.Run(context.Background(), Request{Size: 1024, Runs: 3, Warmup: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Payload.MeanMS != 1.5 || res.Payload.MaxMS != 2 {
		t.Fatalf("payload = %+v", res.Payload)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0] != "args: --size 1024 --runs 3 --warmup 1 --extra" {
		t.Fatalf("diagnostics = %q", res.Diagnostics)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	bin := fakeBinary(t, `echo '{"kernel":"vector_add","runs":3,"mean_ms":1.5}'
echo "device lost" >&2
exit 3`)
	_, err := Runner{Binary: bin}.Run(context.Background(), Request{Size: 1, Runs: 1})
	if !errors.Is(err, errs.ErrKernelExecution) {
		t.Fatalf("expected ErrKernelExecution, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 3") || !strings.Contains(err.Error(), "device lost") {
		t.Fatalf("error lacks exit detail: %v", err)
	}
}

func TestRunMalformedOutput(t *testing.T) {
	bin := fakeBinary(t, `echo "no payload here"`)
	_, err := Runner{Binary: bin}.Run(context.Background(), Request{Size: 1, Runs: 1})
	if !errors.Is(err, errs.ErrKernelExecution) {
		t.Fatalf("expected ErrKernelExecution, got %v", err)
	}
}

func TestRunTimeout(t *testing.T) {
	bin := fakeBinary(t, `exec sleep 5`)
	start := time.Now()
	_, err := Runner{Binary: bin, Timeout: 100 * time.Millisecond}.Run(context.Background(), Request{Size: 1, Runs: 1})
	if !errors.Is(err, errs.ErrTimeoutExceeded) {
		t.Fatalf("expected ErrTimeoutExceeded, got %v", err)
	}
	if time.Since(start) > 4*time.Second {
		t.Fatalf("timeout did not stop the process promptly")
	}
}

func TestRunTimeoutWithForkedChild(t *testing.T) {
	bin := fakeBinary(t, `sleep 5; echo '{"kernel":"late","runs":1,"mean_ms":1}'`)
	start := time.Now()
	_, err := Runner{Binary: bin, Timeout: 100 * time.Millisecond}.Run(context.Background(), Request{Size: 1, Runs: 1})
	if !errors.Is(err, errs.ErrTimeoutExceeded) {
		t.Fatalf("expected ErrTimeoutExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("run held by the forked child for %s", elapsed)
	}
}

func TestRunCapsCapturedOutput(t *testing.T) {
	bin := fakeBinary(t, `echo "0123456789"; echo "more diagnostics"; echo '{"kernel":"k","runs":1,"mean_ms":1}'`)
	_, err := Runner{Binary: bin, MaxStdout: 8}.Run(context.Background(), Request{Size: 1, Runs: 1})
	if !errors.Is(err, errs.ErrKernelExecution) {
		t.Fatalf("expected truncated payload to fail, got %v", err)
	}
}

func TestRunMissingBinary(t *testing.T) {
	if _, err := (Runner{}).Run(context.Background(), Request{Size: 1, Runs: 1}); !errors.Is(err, errs.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	_, err := Runner{Binary: filepath.Join(t.TempDir(), "absent")}.Run(context.Background(), Request{Size: 1, Runs: 1})
	if !errors.Is(err, errs.ErrKernelExecution) {
		t.Fatalf("expected ErrKernelExecution, got %v", err)
	}
}
