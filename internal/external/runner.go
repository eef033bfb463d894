// Package external runs separately built benchmark binaries and turns their
// output into timing data the harness can report.
package external

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/logging"
	"github.com/mwiater/kernbench/internal/util"
)

const (
	defaultMaxStdout = 4 << 20
	defaultMaxStderr = 1 << 20
	defaultTimeout   = 60 * time.Second
)

var pipeWaitDelay = 500 * time.Millisecond

// Request carries the flags every external benchmark accepts.
type Request struct {
	Size      int
	Runs      int
	Warmup    int
	BlockSize int
}

// Runner invokes one benchmark binary.
type Runner struct {
	Binary    string
	ExtraArgs []string
	Timeout   time.Duration
	MaxStdout int64
	MaxStderr int64
}

// Result is a parsed run plus what the process printed besides the payload.
type Result struct {
	Payload     Payload
	Diagnostics []string
	Stderr      string
	Elapsed     time.Duration
}

// BuildArgs renders req as command-line flags, rejecting values the
// binaries cannot honor.
func BuildArgs(req Request) ([]string, error) {
	if req.Size < 1 {
		return nil, errs.InvalidConfig("size must be >= 1, got %d", req.Size)
	}
	if req.Runs < 1 || req.Runs > 1_000_000 {
		return nil, errs.InvalidConfig("runs out of range (1..1000000), got %d", req.Runs)
	}
	if req.Warmup < 0 || req.Warmup > 1_000_000 {
		return nil, errs.InvalidConfig("warmup out of range (0..1000000), got %d", req.Warmup)
	}
	if req.BlockSize < 0 || req.BlockSize > 4096 {
		return nil, errs.InvalidConfig("block size out of range (0..4096), got %d", req.BlockSize)
	}

	args := []string{
		"--size", strconv.Itoa(req.Size),
		"--runs", strconv.Itoa(req.Runs),
		"--warmup", strconv.Itoa(req.Warmup),
	}
	if req.BlockSize > 0 {
		args = append(args, "--block-size", strconv.Itoa(req.BlockSize))
	}
	return args, nil
}

// Run executes the binary once under the runner's timeout. A non-zero exit
// or an unparseable payload is a kernel execution error; hitting the
// deadline is TimeoutExceeded.
func (r Runner) Run(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(r.Binary) == "" {
		return Result{}, errs.InvalidConfig("external benchmark binary is not set")
	}
	args, err := BuildArgs(req)
	if err != nil {
		return Result{}, err
	}
	args = append(args, r.ExtraArgs...)

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxOut, maxErr := r.MaxStdout, r.MaxStderr
	if maxOut <= 0 {
		maxOut = defaultMaxStdout
	}
	if maxErr <= 0 {
		maxErr = defaultMaxStderr
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	logging.Debugf("external start: bin=%s args=%v", r.Binary, args)
	stdout, stderr, code, runErr := runCommand(runCtx, r.Binary, args, maxOut, maxErr)
	elapsed := time.Since(start)

	if runErr != nil {
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			return Result{Stderr: stderr, Elapsed: elapsed}, errs.TimeoutExceeded("%s exceeded %s", r.Binary, timeout)
		case ctx.Err() != nil:
			return Result{Stderr: stderr, Elapsed: elapsed}, ctx.Err()
		}
		return Result{Stderr: stderr, Elapsed: elapsed},
			errs.KernelExecution(runErr, "%s exited with status %d: %s", r.Binary, code, util.Excerpt(stderr, 200))
	}

	payload, diagnostics, err := ParseOutput(stdout)
	for _, line := range diagnostics {
		logging.Debugf("external %s: %s", r.Binary, line)
	}
	if err != nil {
		return Result{Diagnostics: diagnostics, Stderr: stderr, Elapsed: elapsed}, err
	}
	logging.Debugf("external complete: bin=%s elapsed=%s", r.Binary, elapsed)
	return Result{Payload: payload, Diagnostics: diagnostics, Stderr: stderr, Elapsed: elapsed}, nil
}

// capped keeps the first limit bytes written and discards the rest, so a
// chatty binary never blocks on a full pipe.
type capped struct {
	buf   bytes.Buffer
	limit int64
}

func (c *capped) Write(p []byte) (int, error) {
	if room := c.limit - int64(c.buf.Len()); room > 0 {
		if int64(len(p)) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

func runCommand(ctx context.Context, bin string, args []string, maxStdout, maxStderr int64) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	outBuf := &capped{limit: maxStdout}
	errBuf := &capped{limit: maxStderr}
	cmd.Stdout = outBuf
	cmd.Stderr = errBuf
	// Children the binary forked may keep the pipes open after the kill;
	// Wait closes them once this delay passes.
	cmd.WaitDelay = pipeWaitDelay

	if err := cmd.Start(); err != nil {
		return "", "", 127, err
	}
	waitErr := cmd.Wait()
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		// The binary itself exited cleanly.
		waitErr = nil
	}

	stdout = outBuf.buf.String()
	stderr = errBuf.buf.String()

	if waitErr != nil {
		return stdout, stderr, exitStatus(waitErr), waitErr
	}
	return stdout, stderr, 0, nil
}

func exitStatus(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}
