// Package errs defines the error taxonomy shared by the harness packages.
//
// Kernel-level errors (shape, numeric domain, execution, timeout) are caught
// at the kernel boundary and recorded in the report. Configuration errors
// (unknown fixture, fixture misconfiguration, invalid config) abort a run
// before any kernel executes.
package errs

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch reports incompatible operand dimensions.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrNumericDomain reports an operation that is undefined for its inputs.
	ErrNumericDomain = errors.New("numeric domain error")
	// ErrUnknownFixture reports a fixture identifier that was never registered.
	ErrUnknownFixture = errors.New("unknown fixture")
	// ErrFixture reports a misconfigured fixture request, such as a missing seed.
	ErrFixture = errors.New("fixture error")
	// ErrInvalidConfig reports bad harness settings such as non-positive run counts.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrKernelExecution reports a failure while a kernel was running.
	ErrKernelExecution = errors.New("kernel execution error")
	// ErrTimeoutExceeded reports an external process that outlived its deadline.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrCanceled marks kernels that never ran because the run was interrupted.
	ErrCanceled = errors.New("canceled")
)

// Error kinds as they appear in reports.
const (
	KindShapeMismatch   = "ShapeMismatch"
	KindNumericDomain   = "NumericDomainError"
	KindUnknownFixture  = "UnknownFixture"
	KindFixture         = "FixtureError"
	KindInvalidConfig   = "InvalidConfig"
	KindKernelExecution = "KernelExecutionError"
	KindTimeoutExceeded = "TimeoutExceeded"
	KindCanceled        = "Canceled"
)

func ShapeMismatch(format string, args ...any) error {
	return wrap(ErrShapeMismatch, format, args...)
}

func NumericDomain(format string, args ...any) error {
	return wrap(ErrNumericDomain, format, args...)
}

func UnknownFixture(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownFixture, id)
}

func Fixture(format string, args ...any) error {
	return wrap(ErrFixture, format, args...)
}

func InvalidConfig(format string, args ...any) error {
	return wrap(ErrInvalidConfig, format, args...)
}

// KernelExecution wraps cause so that both ErrKernelExecution and the cause
// remain visible to errors.Is.
func KernelExecution(cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrKernelExecution, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrKernelExecution, msg, cause)
}

func TimeoutExceeded(format string, args ...any) error {
	return wrap(ErrTimeoutExceeded, format, args...)
}

func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// Kind maps err to its report label. Timeouts and cancellation take
// precedence over execution errors, which take precedence over the cause
// they wrap.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeoutExceeded):
		return KindTimeoutExceeded
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrKernelExecution):
		return KindKernelExecution
	case errors.Is(err, ErrShapeMismatch):
		return KindShapeMismatch
	case errors.Is(err, ErrNumericDomain):
		return KindNumericDomain
	case errors.Is(err, ErrUnknownFixture):
		return KindUnknownFixture
	case errors.Is(err, ErrFixture):
		return KindFixture
	case errors.Is(err, ErrInvalidConfig):
		return KindInvalidConfig
	default:
		return KindKernelExecution
	}
}

// IsConfig reports whether err should abort a whole run instead of a single kernel.
func IsConfig(err error) bool {
	return errors.Is(err, ErrUnknownFixture) || errors.Is(err, ErrFixture) || errors.Is(err, ErrInvalidConfig)
}
