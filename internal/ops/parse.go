package ops

import (
	"context"

	"github.com/hpungsan/skuloc/internal/chat"
	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/errors"
)

// ParseInput contains parameters for the Parse operation.
type ParseInput struct {
	Path     string // required, chat transcript
	JSONPath string // optional JSON sink; empty skips it
	CSVPath  string // optional CSV sink; empty skips it
}

// ParseOutput contains the result of the Parse operation.
type ParseOutput struct {
	Count   int           `json:"count"`
	Mapping *chat.Mapping `json:"mapping"`
	Stats   chat.Stats    `json:"stats"`
	Sinks   []SinkResult  `json:"sinks"`
}

// SinkFailed reports whether any sink could not be written.
func (o *ParseOutput) SinkFailed() bool {
	return anyFailed(o.Sinks)
}

// Parse extracts the SKU → location mapping from a transcript and writes
// it to the requested file sinks. An unavailable transcript fails before
// any sink is touched; a failing sink is reported in Sinks and does not
// stop the others.
func Parse(ctx context.Context, cfg *config.Config, input ParseInput) (*ParseOutput, error) {
	out, err := Extract(ctx, cfg, input.Path)
	if err != nil {
		return nil, err
	}
	out.Sinks = WriteSinks(cfg, input.JSONPath, input.CSVPath, out.Mapping)
	return out, nil
}

// Extract runs the extractor over a transcript without touching any sink.
// Sinks on the returned output is nil.
func Extract(ctx context.Context, cfg *config.Config, path string) (*ParseOutput, error) {
	res, err := extractTranscript(ctx, cfg, path)
	if err != nil {
		return nil, err
	}
	return &ParseOutput{
		Count:   res.Count(),
		Mapping: res.Mapping,
		Stats:   res.Stats,
	}, nil
}

// WriteSinks writes mapping to the JSON and CSV sinks. An empty path skips
// that sink.
func WriteSinks(cfg *config.Config, jsonPath, csvPath string, mapping *chat.Mapping) []SinkResult {
	return writeSinks(cfg, jsonPath, csvPath, mapping.Entries())
}

// extractTranscript reads and extracts a transcript. Trusted callers may name
// any readable file; restricted callers are held to the allowed directories,
// the transcript extension and no symlinks.
func extractTranscript(ctx context.Context, cfg *config.Config, path string) (*chat.Result, error) {
	if path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	e := newExtractor(cfg)
	var (
		res *chat.Result
		err error
	)
	if cfg.AllowUnsafePaths {
		res, err = e.ExtractFile(path)
	} else {
		if err := ValidatePath(path, PathCheckRead, cfg, ExtTranscript); err != nil {
			return nil, err
		}
		res, err = e.ExtractFileWith(path, openFileNoFollowRead)
	}
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("parse")
	}
	return res, nil
}
