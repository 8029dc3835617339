package location

import (
	"cmp"
	"strconv"
	"strings"
	"unicode"
)

// SortMode selects how lookup results are ordered.
type SortMode string

const (
	SortByLocation SortMode = "location" // default: plain string order on location
	SortBySKU      SortMode = "sku"
	SortByRoute    SortMode = "route" // zone letter, then numeric bin
)

// ParseSortMode validates a sort mode string. Empty means SortByLocation.
func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByLocation:
		return SortByLocation, true
	case SortBySKU:
		return SortBySKU, true
	case SortByRoute:
		return SortByRoute, true
	}
	return "", false
}

// Zone returns the leading zone letter of a location ("A01" → "A").
func Zone(loc string) string {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return ""
	}
	return loc[:1]
}

// BinNumber returns the leading number after the zone letter
// ("A07" → 7, "B12 & B13" → 12). Locations with no number sort last.
func BinNumber(loc string) int {
	loc = strings.TrimSpace(loc)
	if len(loc) < 2 {
		return -1
	}
	digits := loc[1:]
	end := strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) })
	if end >= 0 {
		digits = digits[:end]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return -1
	}
	return n
}

// CompareRoute orders two locations for a pick walk: zone first, then
// bin number, then the raw string as a tiebreaker.
func CompareRoute(a, b string) int {
	if c := cmp.Compare(Zone(a), Zone(b)); c != 0 {
		return c
	}
	na, nb := BinNumber(a), BinNumber(b)
	if na < 0 && nb >= 0 {
		return 1
	}
	if nb < 0 && na >= 0 {
		return -1
	}
	if c := cmp.Compare(na, nb); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}
