package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/skuloc/internal/db"
)

// StatsOutput contains the result of the Stats operation.
type StatsOutput struct {
	db.Summary
	Zones map[string]int `json:"zones"`
}

// Stats reports record totals and how many SKUs sit in each zone letter.
func Stats(ctx context.Context, database *sql.DB) (*StatsOutput, error) {
	summary, err := db.Summarize(ctx, database)
	if err != nil {
		return nil, err
	}

	zones, err := db.CountByZone(ctx, database)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Summary: *summary, Zones: zones}, nil
}
