package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/location"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Prefix   string // optional SKU prefix, normalized
	Location string // optional exact location
	Limit    int    // default: 20, max: 100
	Offset   int    // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []location.Record `json:"items"`
	Pagination Pagination        `json:"pagination"`
	Sort       string            `json:"sort"`
}

// List pages through stored records ordered by SKU.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit, offset := clampPage(input.Limit, input.Offset)

	filters := db.ListFilters{
		Prefix:   location.Normalize(input.Prefix),
		Location: strings.TrimSpace(input.Location),
	}
	if filters.Location != "" {
		loc, err := normalizeLocation(filters.Location)
		if err != nil {
			return nil, err
		}
		filters.Location = loc
	}

	items, total, err := db.List(ctx, database, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "sku_asc",
	}, nil
}
