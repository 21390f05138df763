// Package input cleans user supplied problem statements before they reach a prompt.
package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxSize is used when a non-positive limit is given.
const DefaultMaxSize = 4096

var (
	ErrTooLarge    = errors.New("problem exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("problem contains invalid UTF-8 sequences")
)

// Sanitize enforces the size limit, validates UTF-8 and strips control characters
// other than newline, tab and carriage return. Oversized input is rejected, never truncated.
func Sanitize(s string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	if len(s) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(s), limit)
	}
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}

	// Fast path: nothing to strip.
	clean := true
	for _, r := range s {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
