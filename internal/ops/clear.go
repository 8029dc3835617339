package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/errors"
)

// ClearInput contains parameters for the Clear operation.
type ClearInput struct {
	Confirm bool // must be true
}

// ClearOutput contains the result of the Clear operation.
type ClearOutput struct {
	Cleared int `json:"cleared"`
}

// Clear deletes every stored record.
func Clear(ctx context.Context, database *sql.DB, input ClearInput) (*ClearOutput, error) {
	if !input.Confirm {
		return nil, errors.NewInvalidRequest("clear requires confirm=true")
	}
	n, err := db.Clear(ctx, database)
	if err != nil {
		return nil, err
	}
	return &ClearOutput{Cleared: n}, nil
}
