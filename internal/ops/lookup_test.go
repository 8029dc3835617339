package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/skuloc/internal/errors"
)

func seedLocations(t *testing.T, database *sql.DB, pairs map[string]string) {
	t.Helper()
	for sku, loc := range pairs {
		_, err := Set(context.Background(), database, SetInput{SKU: sku, Location: loc})
		require.NoError(t, err)
	}
}

func TestLookup_SortModes(t *testing.T) {
	database := newTestDB(t)
	seedLocations(t, database, map[string]string{
		"SKU10001": "B02",
		"SKU10002": "A10",
		"SKU10003": "A9",
		"SKU10004": "A10",
	})
	queries := []string{"SKU10001", "SKU10002", "SKU10003", "SKU10004"}

	tests := []struct {
		sort string
		want []string
	}{
		{"", []string{"SKU10002", "SKU10004", "SKU10003", "SKU10001"}},
		{"location", []string{"SKU10002", "SKU10004", "SKU10003", "SKU10001"}},
		{"sku", []string{"SKU10001", "SKU10002", "SKU10003", "SKU10004"}},
		{"route", []string{"SKU10003", "SKU10002", "SKU10004", "SKU10001"}},
	}

	for _, tt := range tests {
		t.Run("sort="+tt.sort, func(t *testing.T) {
			out, err := Lookup(context.Background(), database, LookupInput{SKUs: queries, Sort: tt.sort})
			require.NoError(t, err)
			require.Equal(t, len(tt.want), out.Found)

			var got []string
			for _, r := range out.Results {
				got = append(got, r.SKU)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLookup_MissesFollowFoundInQueryOrder(t *testing.T) {
	database := newTestDB(t)
	seedLocations(t, database, map[string]string{"SKU10001": "C03"})

	out, err := Lookup(context.Background(), database, LookupInput{
		SKUs: []string{"ZZZ99999", "SKU10001", "YYY88888"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.Found)
	require.Len(t, out.Results, 3)
	require.True(t, out.Results[0].Found)
	require.Equal(t, "C03", out.Results[0].Location)
	require.False(t, out.Results[1].Found)
	require.Equal(t, "ZZZ99999", out.Results[1].Query)
	require.Equal(t, []string{"ZZZ99999", "YYY88888"}, out.NotFound)
}

func TestLookup_ExactAndFallbackMatches(t *testing.T) {
	database := newTestDB(t)
	seedLocations(t, database, map[string]string{
		"GY9265 100": "A01",
		"ITEM1001":   "B02 & B03",
	})

	tests := []struct {
		name      string
		query     string
		wantSKU   string
		wantExact bool
	}{
		{"as stored", "GY9265 100", "GY9265 100", true},
		{"lowercase with extra spaces", "  gy9265   100 ", "GY9265 100", true},
		{"hyphenated style", "GY9265-100", "GY9265 100", false},
		{"base with unknown style", "ITEM1001-999", "ITEM1001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Lookup(context.Background(), database, LookupInput{SKUs: []string{tt.query}})
			require.NoError(t, err)
			require.Len(t, out.Results, 1)

			r := out.Results[0]
			require.True(t, r.Found, "query %q not found", tt.query)
			require.Equal(t, tt.wantSKU, r.SKU)
			require.Equal(t, tt.wantExact, r.ExactMatch)
		})
	}
}

func TestLookup_DedupesNormalizedQueries(t *testing.T) {
	database := newTestDB(t)
	seedLocations(t, database, map[string]string{"SKU10001": "A01"})

	out, err := Lookup(context.Background(), database, LookupInput{
		SKUs: []string{"sku10001", "SKU10001", " ", "SKU10001 "},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.Equal(t, "sku10001", out.Results[0].Query)
}

func TestLookup_InvalidInput(t *testing.T) {
	database := newTestDB(t)

	tooMany := make([]string, MaxLookupItems+1)
	for i := range tooMany {
		tooMany[i] = "SKU" + string(rune('A'+i%26)) + string(rune('A'+i/26%26)) + "123"
	}

	tests := []struct {
		name  string
		input LookupInput
	}{
		{"no skus", LookupInput{}},
		{"only blanks", LookupInput{SKUs: []string{"", "  "}}},
		{"bad sort", LookupInput{SKUs: []string{"SKU10001"}, Sort: "zone"}},
		{"too many", LookupInput{SKUs: tooMany}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lookup(context.Background(), database, tt.input)
			require.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
		})
	}
}

func TestLookup_Cancelled(t *testing.T) {
	database := newTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Lookup(ctx, database, LookupInput{SKUs: []string{"SKU10001"}})
	require.True(t, errors.Is(err, errors.ErrCancelled), "err = %v", err)
}

func TestSplitSKUs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"SKU10001\nSKU10002", []string{"SKU10001", "SKU10002"}},
		{"SKU10001, SKU10002,,", []string{"SKU10001", "SKU10002"}},
		{"GY9265 100\r\nITEM1001", []string{"GY9265 100", "ITEM1001"}},
		{"  \n ", []string{}},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, SplitSKUs(tt.in), "SplitSKUs(%q)", tt.in)
	}
}
