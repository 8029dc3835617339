package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/skuloc/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	SKU string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	SKU     string `json:"sku"`
}

// Delete removes the stored location for a SKU.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	sku, err := normalizeSKU(input.SKU)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(ctx, database, sku); err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: true, SKU: sku}, nil
}
