package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/location"
)

// SetInput contains parameters for the Set operation.
type SetInput struct {
	SKU      string // required
	Location string // required, "A01" or "A01 & A02"
	Source   string // optional, default: manual
}

// SetOutput contains the result of the Set operation.
type SetOutput struct {
	Record  location.Record `json:"record"`
	Created bool            `json:"created"`
}

// Set stores a location for a SKU by hand, replacing any existing one.
func Set(ctx context.Context, database *sql.DB, input SetInput) (*SetOutput, error) {
	sku, err := normalizeSKU(input.SKU)
	if err != nil {
		return nil, err
	}
	loc, err := normalizeLocation(input.Location)
	if err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = SourceManual
	}

	r := &location.Record{SKU: sku, Location: loc, Source: &source}
	created, err := db.Upsert(ctx, database, r)
	if err != nil {
		return nil, err
	}
	return &SetOutput{Record: *r, Created: created}, nil
}
