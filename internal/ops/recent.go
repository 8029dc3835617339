package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/location"
)

// DefaultRecentLimit is how many records Recent returns when no limit is given.
const DefaultRecentLimit = 10

// RecentInput contains parameters for the Recent operation.
type RecentInput struct {
	Limit int // default: 10, max: 100
}

// RecentOutput contains the result of the Recent operation.
type RecentOutput struct {
	Items []location.Record `json:"items"`
}

// Recent returns the most recently moved or added records, newest first.
func Recent(ctx context.Context, database *sql.DB, input RecentInput) (*RecentOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxListLimit)

	items, err := db.ListRecent(ctx, database, limit)
	if err != nil {
		return nil, err
	}
	return &RecentOutput{Items: items}, nil
}
