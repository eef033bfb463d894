// internal/util/util_test.go
package util

import (
	"reflect"
	"testing"
)

func TestExcerpt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short", in: "vector_add", max: 20, want: "vector_add"},
		{name: "truncated", in: "hipErrorInvalidDevice", max: 8, want: "hipError…"},
		{name: "multibyte", in: "µs→ms→s", max: 4, want: "µs→m…"},
		{name: "flattens stderr", in: "device lost\n\n  retrying\n", max: 0, want: "device lost | retrying"},
		{name: "blank", in: "\n \n", max: 10, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Excerpt(tt.in, tt.max); got != tt.want {
				t.Fatalf("Excerpt(%q,%d)=%q want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestWrapLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "wrap words",
			text:  "dominant eigenvalue of A by power iteration",
			width: 20,
			want:  []string{"dominant eigenvalue", "of A by power", "iteration"},
		},
		{
			name:  "long word split",
			text:  "attention.multi_head",
			width: 8,
			want:  []string{"attentio", "n.multi_", "head"},
		},
		{
			name:  "long word after short",
			text:  "see checkpoint.roundtrip",
			width: 10,
			want:  []string{"see", "checkpoint", ".roundtrip"},
		},
		{
			name:  "preserve blank lines",
			text:  "para one\n\npara two",
			width: 20,
			want:  []string{"para one", "", "para two"},
		},
		{
			name:  "non-positive width",
			text:  "no wrap here",
			width: 0,
			want:  []string{"no wrap here"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WrapLines(tt.text, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("WrapLines(%q,%d)=%q want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}
