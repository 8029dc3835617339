package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/skuloc/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestBulkDelete_LocationFilter(t *testing.T) {
	database := newTestDB(t)
	seedLocations(t, database, map[string]string{
		"SKU10001": "A01",
		"SKU10002": "A01",
		"SKU10003": "B02",
	})

	output, err := BulkDelete(context.Background(), database, BulkDeleteInput{Location: strPtr(" a01 ")})
	if err != nil {
		t.Fatalf("BulkDelete failed: %v", err)
	}
	if output.Deleted != 2 {
		t.Errorf("Deleted = %d, want 2", output.Deleted)
	}
	if output.Message != `Deleted 2 records matching location="A01"` {
		t.Errorf("Message = %q", output.Message)
	}

	if _, err := Get(context.Background(), database, GetInput{SKU: "SKU10003"}); err != nil {
		t.Errorf("SKU10003 should survive: %v", err)
	}
}

func TestBulkDelete_PrefixFilter(t *testing.T) {
	database := newTestDB(t)
	seedLocations(t, database, map[string]string{
		"ITEM1001": "A01",
		"SKU10002": "A01",
	})

	output, err := BulkDelete(context.Background(), database, BulkDeleteInput{Prefix: strPtr("item")})
	if err != nil {
		t.Fatalf("BulkDelete failed: %v", err)
	}
	if output.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", output.Deleted)
	}
	if output.Message != `Deleted 1 record matching prefix="ITEM"` {
		t.Errorf("Message = %q", output.Message)
	}
}

func TestBulkDelete_NoMatch(t *testing.T) {
	database := newTestDB(t)

	output, err := BulkDelete(context.Background(), database, BulkDeleteInput{Prefix: strPtr("ZZZ")})
	if err != nil {
		t.Fatalf("BulkDelete failed: %v", err)
	}
	if output.Deleted != 0 || output.Message != "No records matched the filters" {
		t.Errorf("output = %+v", output)
	}
}

func TestBulkDelete_FilterGuards(t *testing.T) {
	database := newTestDB(t)

	tests := []struct {
		name  string
		input BulkDeleteInput
	}{
		{"no filters", BulkDeleteInput{}},
		{"blank prefix", BulkDeleteInput{Prefix: strPtr("   ")}},
		{"blank both", BulkDeleteInput{Prefix: strPtr(""), Location: strPtr(" ")}},
		{"invalid location", BulkDeleteInput{Location: strPtr("dock")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BulkDelete(context.Background(), database, tt.input)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("err = %v, want INVALID_REQUEST", err)
			}
		})
	}
}
