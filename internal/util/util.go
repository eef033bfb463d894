// internal/util/util.go
// Package util holds small text helpers shared by the CLI and the
// external benchmark runner.
package util

import (
	"strings"
	"unicode/utf8"
)

// Excerpt flattens process output onto one line for an error message,
// joining non-blank lines with " | " and cutting the result to max runes.
// A non-positive max keeps everything.
func Excerpt(text string, max int) string {
	var parts []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	flat := strings.Join(parts, " | ")
	if max <= 0 || utf8.RuneCountInString(flat) <= max {
		return flat
	}
	return string([]rune(flat)[:max]) + "…"
}

// WrapLines breaks text into lines of at most width runes. Words longer
// than width are split. Blank lines survive; width <= 0 only splits on
// newlines.
func WrapLines(text string, width int) []string {
	if width <= 0 {
		return strings.Split(text, "\n")
	}
	var lines []string
	var cur []rune
	flush := func() {
		lines = append(lines, string(cur))
		cur = cur[:0]
	}
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		for _, w := range words {
			word := []rune(w)
			if len(cur) > 0 && len(cur)+1+len(word) > width {
				flush()
			}
			if len(cur) > 0 {
				cur = append(cur, ' ')
			}
			for len(cur)+len(word) > width {
				n := width - len(cur)
				cur = append(cur, word[:n]...)
				word = word[n:]
				flush()
			}
			cur = append(cur, word...)
		}
		if len(cur) > 0 {
			flush()
		}
	}
	return lines
}
