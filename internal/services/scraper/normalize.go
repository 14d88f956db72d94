package scraper

import (
	"strings"
	"unicode"
)

// NormalizeName canonicalizes a business/blog name for matching: lowercase,
// whitespace stripped, and every character that is not a letter or digit
// removed. Letters cover local scripts (Hangul included), so "강남 수학학원!"
// and "강남수학학원" normalize identically. The function is idempotent.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// namesMatch reports whether a scanned item name matches the target name:
// normalized exact match first, then substring containment in either
// direction. Empty normalized forms never match.
func namesMatch(itemName, targetName string) bool {
	itemNorm := NormalizeName(itemName)
	targetNorm := NormalizeName(targetName)
	if itemNorm == "" || targetNorm == "" {
		return false
	}
	if itemNorm == targetNorm {
		return true
	}
	return strings.Contains(itemNorm, targetNorm) || strings.Contains(targetNorm, itemNorm)
}
