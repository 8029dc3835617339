package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/location"
)

// BulkDeleteInput contains parameters for the BulkDelete operation.
type BulkDeleteInput struct {
	Prefix   *string
	Location *string
}

// BulkDeleteOutput contains the result of the BulkDelete operation.
type BulkDeleteOutput struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

// BulkDelete removes all records matching the given filters, typically to
// empty a bin before a recount. At least one filter must be provided.
func BulkDelete(ctx context.Context, database *sql.DB, input BulkDeleteInput) (*BulkDeleteOutput, error) {
	// Phase 1: at least one filter must be given
	if input.Prefix == nil && input.Location == nil {
		return nil, errors.NewInvalidRequest("at least one filter is required")
	}

	var filters db.ListFilters
	if input.Prefix != nil {
		filters.Prefix = location.Normalize(*input.Prefix)
	}
	if input.Location != nil && strings.TrimSpace(*input.Location) != "" {
		loc, err := normalizeLocation(*input.Location)
		if err != nil {
			return nil, err
		}
		filters.Location = loc
	}

	// Phase 2: at least one filter must survive normalization
	if filters.Prefix == "" && filters.Location == "" {
		return nil, errors.NewInvalidRequest("at least one filter must be non-empty after normalization")
	}

	count, err := db.BulkDelete(ctx, database, filters)
	if err != nil {
		return nil, err
	}

	return &BulkDeleteOutput{
		Deleted: count,
		Message: formatBulkDeleteMessage(count, filters),
	}, nil
}

// formatBulkDeleteMessage creates a human-readable message for the bulk delete result.
func formatBulkDeleteMessage(count int, filters db.ListFilters) string {
	if count == 0 {
		return "No records matched the filters"
	}

	word := "record"
	if count > 1 {
		word = "records"
	}
	msg := fmt.Sprintf("Deleted %d %s", count, word)

	var parts []string
	if filters.Prefix != "" {
		parts = append(parts, fmt.Sprintf("prefix=%q", filters.Prefix))
	}
	if filters.Location != "" {
		parts = append(parts, fmt.Sprintf("location=%q", filters.Location))
	}
	return msg + " matching " + strings.Join(parts, ", ")
}
