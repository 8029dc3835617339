package location

import (
	"regexp"
	"strings"
)

// Token grammars shared by the chat extractor and validation.
const (
	// BinPattern matches a single bin code: one uppercase letter and 1-2 digits.
	BinPattern = `[A-Z]\d{1,2}`

	// SKUPattern matches an identifier: 5-10 uppercase alphanumerics with an
	// optional space and 3-digit style code.
	SKUPattern = `[A-Z0-9]{5,10}(?: \d{3})?`
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	locationRegex   = regexp.MustCompile(`^` + BinPattern + `(?:\s*&\s*` + BinPattern + `)?$`)
)

// Normalize prepares user input for lookup:
// 1. Trim leading/trailing whitespace
// 2. Uppercase
// 3. Collapse internal whitespace to single spaces
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToUpper(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// IsValidLocation reports whether s is a single bin code or an &-joined pair.
// Update notation (">>>") is never a valid stored location.
func IsValidLocation(s string) bool {
	return locationRegex.MatchString(s)
}

// Candidates returns the keys to try, in order, when looking up a SKU that
// may have been typed or scanned in a different shape than it was stored.
//
// Order: as given, normalized, hyphens→spaces, spaces→hyphens, then for
// hyphenated input the base part and "base style", and for spaced input
// the base part and "base-style". Duplicates are dropped.
func Candidates(sku string) []string {
	raw := strings.TrimSpace(sku)
	if raw == "" {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(raw)
	norm := Normalize(raw)
	add(norm)
	add(strings.ReplaceAll(norm, "-", " "))
	add(whitespaceRegex.ReplaceAllString(norm, "-"))

	if strings.Contains(norm, "-") {
		parts := strings.Split(norm, "-")
		add(parts[0])
		if len(parts) > 1 {
			add(parts[0] + " " + parts[1])
		}
	}
	if strings.Contains(norm, " ") {
		parts := strings.Split(norm, " ")
		add(parts[0])
		if len(parts) > 1 {
			add(parts[0] + "-" + parts[1])
		}
	}

	return out
}
