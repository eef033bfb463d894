package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ShapeMismatch("2x3 by 4x1"), KindShapeMismatch},
		{NumericDomain("singular"), KindNumericDomain},
		{UnknownFixture("nope"), KindUnknownFixture},
		{Fixture("missing seed"), KindFixture},
		{InvalidConfig("runs=0"), KindInvalidConfig},
		{KernelExecution(errors.New("boom"), "run %d", 3), KindKernelExecution},
		{KernelExecution(TimeoutExceeded("after 1s"), "external"), KindTimeoutExceeded},
		{KernelExecution(ShapeMismatch("inner"), "run 0"), KindKernelExecution},
		{fmt.Errorf("wrapped: %w", context.Canceled), KindCanceled},
		{errors.New("plain"), KindKernelExecution},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestKernelExecutionKeepsCause(t *testing.T) {
	cause := NumericDomain("log(0)")
	err := KernelExecution(cause, "run %d", 1)
	if !errors.Is(err, ErrKernelExecution) || !errors.Is(err, ErrNumericDomain) {
		t.Fatalf("expected both sentinels in chain: %v", err)
	}
	if err := KernelExecution(nil, "exit status 2"); !errors.Is(err, ErrKernelExecution) {
		t.Fatalf("expected execution sentinel: %v", err)
	}
}

func TestIsConfig(t *testing.T) {
	if !IsConfig(UnknownFixture("x")) || !IsConfig(Fixture("y")) || !IsConfig(InvalidConfig("z")) {
		t.Fatal("expected configuration errors to be classified as such")
	}
	if IsConfig(ShapeMismatch("a")) || IsConfig(nil) {
		t.Fatal("kernel errors must not be configuration errors")
	}
}
