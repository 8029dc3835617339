package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/location"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// stringPtr returns a pointer to the given string.
func stringPtr(s string) *string {
	return &s
}

func TestUpsertAndGetBySKU(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	r := &location.Record{
		SKU:       "SKU12345",
		Location:  "A01",
		Source:    stringPtr("chat:export.txt"),
		CreatedAt: 1000,
		UpdatedAt: 1000,
	}

	inserted, err := Upsert(ctx, database, r)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if !inserted {
		t.Error("first upsert should insert")
	}
	if r.ID == "" {
		t.Fatal("ID should be generated")
	}

	got, err := GetBySKU(ctx, database, "SKU12345")
	if err != nil {
		t.Fatalf("GetBySKU failed: %v", err)
	}
	if got.ID != r.ID {
		t.Errorf("ID = %q, want %q", got.ID, r.ID)
	}
	if got.Location != "A01" {
		t.Errorf("Location = %q, want A01", got.Location)
	}
	if got.Source == nil || *got.Source != "chat:export.txt" {
		t.Errorf("Source = %v, want chat:export.txt", got.Source)
	}
	if got.CreatedAt != 1000 || got.UpdatedAt != 1000 {
		t.Errorf("timestamps = (%d, %d), want (1000, 1000)", got.CreatedAt, got.UpdatedAt)
	}
}

func TestUpsert_ExistingKeepsIDAndCreatedAt(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	first := &location.Record{SKU: "SKU12345", Location: "A01", CreatedAt: 1000, UpdatedAt: 1000}
	if _, err := Upsert(ctx, database, first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	second := &location.Record{SKU: "SKU12345", Location: "B02", Source: stringPtr("manual"), CreatedAt: 2000, UpdatedAt: 2000}
	inserted, err := Upsert(ctx, database, second)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if inserted {
		t.Error("second upsert should update, not insert")
	}
	if second.ID != first.ID {
		t.Errorf("ID changed: %q -> %q", first.ID, second.ID)
	}
	if second.CreatedAt != 1000 {
		t.Errorf("CreatedAt = %d, want 1000", second.CreatedAt)
	}

	got, err := GetBySKU(ctx, database, "SKU12345")
	if err != nil {
		t.Fatalf("GetBySKU failed: %v", err)
	}
	if got.Location != "B02" || got.UpdatedAt != 2000 || got.CreatedAt != 1000 {
		t.Errorf("got %+v, want location B02 created 1000 updated 2000", got)
	}
	if got.Source == nil || *got.Source != "manual" {
		t.Errorf("Source = %v, want manual", got.Source)
	}
}

func TestGetBySKU_NotFound(t *testing.T) {
	database := openTestDB(t)

	_, err := GetBySKU(context.Background(), database, "MISSING1")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestUpsertMany(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if _, err := Upsert(ctx, database, &location.Record{SKU: "SKU12345", Location: "A01"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	entries := []location.Entry{
		{SKU: "SKU12345", Location: "B02"},
		{SKU: "ITEM1001", Location: "C03 & C04"},
		{SKU: "GY9265 100", Location: "D05"},
	}
	res, err := UpsertMany(ctx, database, entries, stringPtr("chat:t.txt"))
	if err != nil {
		t.Fatalf("UpsertMany failed: %v", err)
	}
	if res.Inserted != 2 || res.Updated != 1 {
		t.Errorf("result = %+v, want 2 inserted 1 updated", res)
	}

	got, err := GetBySKU(ctx, database, "SKU12345")
	if err != nil {
		t.Fatalf("GetBySKU failed: %v", err)
	}
	if got.Location != "B02" {
		t.Errorf("Location = %q, want B02", got.Location)
	}

	compound, err := GetBySKU(ctx, database, "ITEM1001")
	if err != nil {
		t.Fatalf("GetBySKU failed: %v", err)
	}
	if compound.Location != "C03 & C04" {
		t.Errorf("compound location = %q, want verbatim %q", compound.Location, "C03 & C04")
	}
}

func TestUpsertMany_CancelledRollsBack(t *testing.T) {
	database := openTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := UpsertMany(ctx, database, []location.Entry{{SKU: "SKU12345", Location: "A01"}}, nil)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}

	s, err := Summarize(context.Background(), database)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Records != 0 {
		t.Errorf("Records = %d, want 0 after cancelled batch", s.Records)
	}
}

func TestList(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	for i := range 5 {
		sku := fmt.Sprintf("SKU1000%d", i)
		if _, err := Upsert(ctx, database, &location.Record{SKU: sku, Location: "A01"}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
	for _, sku := range []string{"ITEM1001", "ITEM_1002"} {
		if _, err := Upsert(ctx, database, &location.Record{SKU: sku, Location: "B02"}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	tests := []struct {
		name      string
		filters   ListFilters
		limit     int
		offset    int
		wantCount int
		wantTotal int
		wantFirst string
	}{
		{"all first page", ListFilters{}, 3, 0, 3, 7, "ITEM1001"},
		{"all second page", ListFilters{}, 3, 3, 3, 7, "SKU10001"},
		{"prefix", ListFilters{Prefix: "SKU"}, 10, 0, 5, 5, "SKU10000"},
		{"underscore is literal", ListFilters{Prefix: "ITEM_"}, 10, 0, 1, 1, "ITEM_1002"},
		{"location", ListFilters{Location: "B02"}, 10, 0, 2, 2, "ITEM1001"},
		{"no match", ListFilters{Prefix: "ZZZ"}, 10, 0, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, total, err := List(ctx, database, tt.filters, tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(records) != tt.wantCount {
				t.Errorf("len = %d, want %d", len(records), tt.wantCount)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if tt.wantFirst != "" && len(records) > 0 && records[0].SKU != tt.wantFirst {
				t.Errorf("first = %q, want %q", records[0].SKU, tt.wantFirst)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	empty, err := Summarize(ctx, database)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if empty.Records != 0 || empty.LastUpdateAt != 0 {
		t.Errorf("empty summary = %+v", empty)
	}

	records := []*location.Record{
		{SKU: "SKU10001", Location: "A01", UpdatedAt: 100},
		{SKU: "SKU10002", Location: "A01", UpdatedAt: 300},
		{SKU: "SKU10003", Location: "B02", UpdatedAt: 200},
	}
	for _, r := range records {
		if _, err := Upsert(ctx, database, r); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	s, err := Summarize(ctx, database)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Records != 3 || s.Locations != 2 || s.LastUpdateAt != 300 {
		t.Errorf("summary = %+v, want 3 records, 2 locations, last 300", s)
	}
}

func TestCountByZone(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	for sku, loc := range map[string]string{"SKU10001": "A01", "SKU10002": "A17", "SKU10003": "B02 & B03"} {
		if _, err := Upsert(ctx, database, &location.Record{SKU: sku, Location: loc}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	zones, err := CountByZone(ctx, database)
	if err != nil {
		t.Fatalf("CountByZone failed: %v", err)
	}
	if zones["A"] != 2 || zones["B"] != 1 || len(zones) != 2 {
		t.Errorf("zones = %v, want A:2 B:1", zones)
	}
}

func TestDelete(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if _, err := Upsert(ctx, database, &location.Record{SKU: "SKU12345", Location: "A01"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := Delete(ctx, database, "SKU12345"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := GetBySKU(ctx, database, "SKU12345"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("after delete err = %v, want NOT_FOUND", err)
	}
	if err := Delete(ctx, database, "SKU12345"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete err = %v, want NOT_FOUND", err)
	}
}

func TestBulkDelete(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	for sku, loc := range map[string]string{"SKU10001": "A01", "SKU10002": "A01", "ITEM1001": "A01", "ITEM1002": "B02"} {
		if _, err := Upsert(ctx, database, &location.Record{SKU: sku, Location: loc}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	if _, err := BulkDelete(ctx, database, ListFilters{}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("empty filters err = %v, want INVALID_REQUEST", err)
	}

	n, err := BulkDelete(ctx, database, ListFilters{Prefix: "SKU", Location: "A01"})
	if err != nil {
		t.Fatalf("BulkDelete failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	n, err = BulkDelete(ctx, database, ListFilters{Location: "B02"})
	if err != nil {
		t.Fatalf("BulkDelete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	s, err := Summarize(ctx, database)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Records != 1 {
		t.Errorf("Records = %d, want 1 (ITEM1001 left)", s.Records)
	}
}

func TestClearAndStreamAll(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	for _, sku := range []string{"SKU20002", "SKU20001"} {
		if _, err := Upsert(ctx, database, &location.Record{SKU: sku, Location: "C15"}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	rows, err := StreamAll(ctx, database)
	if err != nil {
		t.Fatalf("StreamAll failed: %v", err)
	}
	var skus []string
	for rows.Next() {
		r, err := ScanRecordFromRows(rows)
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		skus = append(skus, r.SKU)
	}
	rows.Close()
	if len(skus) != 2 || skus[0] != "SKU20001" {
		t.Errorf("streamed = %v, want sorted by sku", skus)
	}

	n, err := Clear(ctx, database)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared = %d, want 2", n)
	}

	s, err := Summarize(ctx, database)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Records != 0 {
		t.Errorf("Records = %d after clear, want 0", s.Records)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`A_%\`); got != `A\_\%\\` {
		t.Errorf("escapeLike = %q", got)
	}
}
