package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/location"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	SKU string // required, matched exactly after normalization
}

// Get returns the stored record for one SKU without lookup fallbacks.
func Get(ctx context.Context, database *sql.DB, input GetInput) (*location.Record, error) {
	sku, err := normalizeSKU(input.SKU)
	if err != nil {
		return nil, err
	}
	return db.GetBySKU(ctx, database, sku)
}
