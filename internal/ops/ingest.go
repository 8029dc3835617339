package ops

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/hpungsan/skuloc/internal/chat"
	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/errors"
)

// IngestInput contains parameters for the Ingest operation.
type IngestInput struct {
	Path     string // required, chat transcript
	JSONPath string // optional JSON sink
	CSVPath  string // optional CSV sink
}

// IngestOutput contains the result of the Ingest operation.
type IngestOutput struct {
	Count    int          `json:"count"`
	Inserted int          `json:"inserted"`
	Updated  int          `json:"updated"`
	Stats    chat.Stats   `json:"stats"`
	Sinks    []SinkResult `json:"sinks"`
}

// SinkFailed reports whether any sink, the store included, failed.
func (o *IngestOutput) SinkFailed() bool {
	return anyFailed(o.Sinks)
}

// Ingest extracts a transcript, writes the optional file sinks, then
// upserts every entry into the record store in one transaction. A store
// failure is reported as the "store" sink; cancellation is returned as an
// error and leaves the store untouched.
func Ingest(ctx context.Context, database *sql.DB, cfg *config.Config, input IngestInput) (*IngestOutput, error) {
	res, err := extractTranscript(ctx, cfg, input.Path)
	if err != nil {
		return nil, err
	}

	entries := res.Mapping.Entries()
	out := &IngestOutput{
		Count: res.Count(),
		Stats: res.Stats,
		Sinks: writeSinks(cfg, input.JSONPath, input.CSVPath, entries),
	}

	store := SinkResult{Sink: SinkStore}
	upserted, err := db.UpsertMany(ctx, database, entries, sourceFor(sourceChatPrefix, input.Path))
	switch {
	case errors.Is(err, errors.ErrCancelled):
		return nil, err
	case err != nil:
		store.Error = errors.NewSinkWriteFailed(string(SinkStore), "sku_locations", err).Error()
		slog.Warn("store write failed", "path", input.Path, "err", err)
	default:
		store.Count = len(entries)
		out.Inserted = upserted.Inserted
		out.Updated = upserted.Updated
	}
	out.Sinks = append(out.Sinks, store)

	return out, nil
}
