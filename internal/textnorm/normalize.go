// Package textnorm cleans article text before classification.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	// Letters, digits, underscore, whitespace and common sentence punctuation survive.
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Zs}.,!?;:()'"-]+`)
	whitespace = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// Normalize strips characters outside the allow-list, collapses whitespace runs
// to a single space and trims the result. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
