package ops

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/location"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: ~/.skuloc/exports/sku_locations-<timestamp>.json
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string   `json:"path"`
	Format     SinkKind `json:"format"`
	Count      int      `json:"count"`
	ExportedAt int64    `json:"exported_at"`
}

// Export writes every stored record to a JSON mapping or CSV table, chosen
// by the path extension, in the same layout as the parse sinks. Records are
// ordered by SKU.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		exportPath = filepath.Join(dir, fmt.Sprintf("sku_locations-%s.json", now.Format("2006-01-02T150405")))
	}

	format, err := FormatFromPath(exportPath)
	if err != nil {
		return nil, err
	}
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	entries, err := collectEntries(ctx, database)
	if err != nil {
		return nil, err
	}

	write := writeJSONEntries
	if format == SinkCSV {
		write = writeCSVEntries
	}
	err = writeFileAtomic(exportPath, func(w io.Writer) error {
		return write(w, entries)
	})
	if err != nil {
		if errors.Is(err, errors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.NewSinkWriteFailed(string(format), exportPath, err)
	}

	return &ExportOutput{
		Path:       exportPath,
		Format:     format,
		Count:      len(entries),
		ExportedAt: now.Unix(),
	}, nil
}

// collectEntries streams the store into memory in SKU order.
func collectEntries(ctx context.Context, database *sql.DB) ([]location.Entry, error) {
	rows, err := db.StreamAll(ctx, database)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []location.Entry{}
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("export")
		default:
		}

		r, err := db.ScanRecordFromRows(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		entries = append(entries, r.Entry())
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}
