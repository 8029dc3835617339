package ops

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/skuloc/internal/errors"
)

func TestSet_CreatesThenReplaces(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	first, err := Set(ctx, database, SetInput{SKU: " sku12345 ", Location: "a01"})
	require.NoError(t, err)
	require.True(t, first.Created)
	require.Equal(t, "SKU12345", first.Record.SKU)
	require.Equal(t, "A01", first.Record.Location)
	require.Equal(t, SourceManual, *first.Record.Source)
	require.NotEmpty(t, first.Record.ID)

	second, err := Set(ctx, database, SetInput{SKU: "SKU12345", Location: "B02  &  B03", Source: "cycle-count"})
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.Record.ID, second.Record.ID)
	require.Equal(t, "B02 & B03", second.Record.Location)

	got, err := Get(ctx, database, GetInput{SKU: "sku12345"})
	require.NoError(t, err)
	require.Equal(t, "B02 & B03", got.Location)
	require.Equal(t, "cycle-count", *got.Source)
}

func TestSet_Validation(t *testing.T) {
	database := newTestDB(t)

	tests := []struct {
		name  string
		input SetInput
	}{
		{"missing sku", SetInput{Location: "A01"}},
		{"missing location", SetInput{SKU: "SKU12345"}},
		{"update notation", SetInput{SKU: "SKU12345", Location: "A01 >>> B02"}},
		{"not a bin", SetInput{SKU: "SKU12345", Location: "shelf"}},
		{"three digit bin", SetInput{SKU: "SKU12345", Location: "A123"}},
		{"sku too long", SetInput{SKU: strings.Repeat("X", MaxSKULength+1), Location: "A01"}},
		{"control character", SetInput{SKU: "SKU\x0012345", Location: "A01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Set(context.Background(), database, tt.input)
			require.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	database := newTestDB(t)

	_, err := Get(context.Background(), database, GetInput{SKU: "SKU12345"})
	require.True(t, errors.Is(err, errors.ErrNotFound), "err = %v", err)

	_, err = Get(context.Background(), database, GetInput{SKU: "  "})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
}

func TestDelete(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	seedLocations(t, database, map[string]string{"SKU12345": "A01"})

	out, err := Delete(ctx, database, DeleteInput{SKU: "sku12345"})
	require.NoError(t, err)
	require.True(t, out.Deleted)
	require.Equal(t, "SKU12345", out.SKU)

	_, err = Delete(ctx, database, DeleteInput{SKU: "SKU12345"})
	require.True(t, errors.Is(err, errors.ErrNotFound), "err = %v", err)
}

func TestClear_RequiresConfirm(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	seedLocations(t, database, map[string]string{"SKU10001": "A01", "SKU10002": "B02"})

	_, err := Clear(ctx, database, ClearInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)

	out, err := Clear(ctx, database, ClearInput{Confirm: true})
	require.NoError(t, err)
	require.Equal(t, 2, out.Cleared)

	stats, err := Stats(ctx, database)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Records)
}

func TestList_Pagination(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	pairs := make(map[string]string)
	for i := range 25 {
		pairs[fmt.Sprintf("SKU%05d", i)] = "A01"
	}
	pairs["ITEM1001"] = "C03"
	seedLocations(t, database, pairs)

	page, err := List(ctx, database, ListInput{})
	require.NoError(t, err)
	require.Len(t, page.Items, DefaultListLimit)
	require.Equal(t, 26, page.Pagination.Total)
	require.True(t, page.Pagination.HasMore)
	require.Equal(t, "ITEM1001", page.Items[0].SKU)
	require.Equal(t, "sku_asc", page.Sort)

	last, err := List(ctx, database, ListInput{Offset: 20, Limit: 500})
	require.NoError(t, err)
	require.Len(t, last.Items, 6)
	require.Equal(t, MaxListLimit, last.Pagination.Limit)
	require.False(t, last.Pagination.HasMore)

	prefixed, err := List(ctx, database, ListInput{Prefix: "item"})
	require.NoError(t, err)
	require.Len(t, prefixed.Items, 1)

	byLocation, err := List(ctx, database, ListInput{Location: "c03"})
	require.NoError(t, err)
	require.Equal(t, 1, byLocation.Pagination.Total)

	_, err = List(ctx, database, ListInput{Location: "nowhere"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
}

func TestStats_Zones(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	empty, err := Stats(ctx, database)
	require.NoError(t, err)
	require.Equal(t, 0, empty.Records)
	require.Empty(t, empty.Zones)

	seedLocations(t, database, map[string]string{
		"SKU10001": "A01",
		"SKU10002": "A02",
		"SKU10003": "C15 & C16",
	})

	stats, err := Stats(ctx, database)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Records)
	require.Equal(t, 3, stats.Locations)
	require.Equal(t, map[string]int{"A": 2, "C": 1}, stats.Zones)
	require.NotZero(t, stats.LastUpdateAt)
}
