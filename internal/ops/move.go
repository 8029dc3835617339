package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/location"
)

// MoveInput contains parameters for the Move operation.
type MoveInput struct {
	// Filters
	FromLocation *string
	Prefix       *string
	// Update
	ToLocation string // required
	Source     string // optional, default: manual
}

// MoveOutput contains the result of the Move operation.
type MoveOutput struct {
	Moved   int    `json:"moved"`
	Message string `json:"message"`
}

// Move relocates every record matching the filters to ToLocation, the bulk
// form of a ">>>" update. At least one filter is required.
func Move(ctx context.Context, database *sql.DB, input MoveInput) (*MoveOutput, error) {
	if input.FromLocation == nil && input.Prefix == nil {
		return nil, errors.NewInvalidRequest("at least one filter is required")
	}

	to, err := normalizeLocation(input.ToLocation)
	if err != nil {
		return nil, err
	}

	var filters db.ListFilters
	if input.Prefix != nil {
		filters.Prefix = location.Normalize(*input.Prefix)
	}
	if input.FromLocation != nil && strings.TrimSpace(*input.FromLocation) != "" {
		from, err := normalizeLocation(*input.FromLocation)
		if err != nil {
			return nil, err
		}
		filters.Location = from
	}
	if filters.Prefix == "" && filters.Location == "" {
		return nil, errors.NewInvalidRequest("at least one filter must be non-empty after normalization")
	}

	source := input.Source
	if source == "" {
		source = SourceManual
	}

	count, err := db.BulkRelocate(ctx, database, filters, to, &source, time.Now().Unix())
	if err != nil {
		return nil, err
	}

	return &MoveOutput{
		Moved:   count,
		Message: formatMoveMessage(count, filters, to),
	}, nil
}

func formatMoveMessage(count int, filters db.ListFilters, to string) string {
	if count == 0 {
		return "No records matched the filters"
	}
	word := "record"
	if count > 1 {
		word = "records"
	}
	msg := fmt.Sprintf("Moved %d %s", count, word)
	if filters.Location != "" {
		msg += fmt.Sprintf(" from %s", filters.Location)
	}
	msg += " to " + to
	if filters.Prefix != "" {
		msg += fmt.Sprintf(" (prefix=%q)", filters.Prefix)
	}
	return msg
}
