// Package normalize defines the canonical key space shared by the FAQ
// matcher and the response cache. Both must key off the exact same
// transformation so a query that short-circuits in one layer would also
// have hit the other.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Normalize lowercases, strips punctuation, collapses whitespace, and
// trims. It is total (never fails) and idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true // leading whitespace is dropped
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			// Punctuation and symbols are stripped entirely.
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Key returns the cache key for a query under the given permission scope.
// The scope (actor role) is folded into the hash so an answer computed for
// one role is never served to another; see the cache-scoping note in
// DESIGN.md.
func Key(scope, query string) string {
	h := sha256.Sum256([]byte(scope + "\n" + Normalize(query)))
	return hex.EncodeToString(h[:])
}
