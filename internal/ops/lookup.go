package ops

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/location"
)

// LookupInput contains parameters for the Lookup operation.
type LookupInput struct {
	SKUs []string // required, as typed or scanned
	Sort string   // location (default), sku or route
}

// LookupResult is the answer for one queried SKU.
type LookupResult struct {
	Query      string `json:"query"`
	SKU        string `json:"sku,omitempty"` // stored key that matched
	Location   string `json:"location,omitempty"`
	Found      bool   `json:"found"`
	ExactMatch bool   `json:"exact_match"`
	UpdatedAt  int64  `json:"updated_at,omitempty"`
}

// LookupOutput contains the result of the Lookup operation.
type LookupOutput struct {
	Results  []LookupResult `json:"results"`
	Found    int            `json:"found"`
	NotFound []string       `json:"not_found"`
	Sort     string         `json:"sort"`
}

// Lookup resolves each queried SKU against the store, trying the
// normalization fallbacks from location.Candidates in order. Found results
// are ordered by the sort mode; misses follow in query order.
func Lookup(ctx context.Context, database *sql.DB, input LookupInput) (*LookupOutput, error) {
	mode, ok := location.ParseSortMode(input.Sort)
	if !ok {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("sort must be one of: %s, %s, %s",
			location.SortByLocation, location.SortBySKU, location.SortByRoute))
	}

	queries := dedupeQueries(input.SKUs)
	if len(queries) == 0 {
		return nil, errors.NewInvalidRequest("at least one sku is required")
	}
	if len(queries) > MaxLookupItems {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("too many skus: %d (max %d)", len(queries), MaxLookupItems))
	}

	var found, missing []LookupResult
	for _, q := range queries {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("lookup")
		default:
		}

		res, err := lookupOne(ctx, database, q)
		if err != nil {
			return nil, err
		}
		if res.Found {
			found = append(found, res)
		} else {
			missing = append(missing, res)
		}
	}

	sortResults(found, mode)

	out := &LookupOutput{
		Results:  append(found, missing...),
		Found:    len(found),
		NotFound: []string{},
		Sort:     string(mode),
	}
	for _, m := range missing {
		out.NotFound = append(out.NotFound, m.Query)
	}
	if out.Results == nil {
		out.Results = []LookupResult{}
	}
	return out, nil
}

// lookupOne tries each candidate key for q. The first candidate is the
// input as typed; matching on it or on its plain normalization counts as
// an exact match.
func lookupOne(ctx context.Context, q db.Querier, query string) (LookupResult, error) {
	res := LookupResult{Query: query}
	exact := location.Normalize(query)

	for _, key := range location.Candidates(query) {
		r, err := db.GetBySKU(ctx, q, key)
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return res, err
		}
		res.SKU = r.SKU
		res.Location = r.Location
		res.Found = true
		res.ExactMatch = key == query || key == exact
		res.UpdatedAt = r.UpdatedAt
		return res, nil
	}
	return res, nil
}

// sortResults orders found results in place. Ties break on SKU.
func sortResults(results []LookupResult, mode location.SortMode) {
	slices.SortStableFunc(results, func(a, b LookupResult) int {
		var c int
		switch mode {
		case location.SortBySKU:
			c = cmp.Compare(a.SKU, b.SKU)
		case location.SortByRoute:
			c = location.CompareRoute(a.Location, b.Location)
		default:
			c = cmp.Compare(a.Location, b.Location)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.SKU, b.SKU)
	})
}

// dedupeQueries trims queries, drops blanks, and removes repeats that
// normalize to the same key, keeping the first spelling.
func dedupeQueries(skus []string) []string {
	seen := make(map[string]bool, len(skus))
	out := make([]string, 0, len(skus))
	for _, s := range skus {
		s = strings.TrimSpace(s)
		key := location.Normalize(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// SplitSKUs splits free text (one SKU per line, or comma separated) into
// queries. Spaces are kept because style-coded SKUs contain one.
func SplitSKUs(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
