package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining marks, so that accented
// and plain spellings of the same name compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize lowercases s and strips diacritics. Returns "" for empty input.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Transform only fails on malformed input; fall back to the raw string
		// so comparison still degrades to case-insensitive.
		stripped = s
	}
	return strings.ToLower(stripped)
}

// EqualNormalized reports whether a and b are the same string ignoring case
// and diacritics.
func EqualNormalized(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// ContainsNormalized reports whether needle occurs within haystack after
// normalization. An empty needle never matches.
func ContainsNormalized(haystack, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), n)
}
