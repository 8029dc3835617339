package ops

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/hpungsan/skuloc/internal/chat"
	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/location"
)

// Limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	MaxLookupItems   = 200
	MaxSKULength     = 64
)

// Source values recorded on stored records.
const (
	SourceManual       = "manual"
	sourceChatPrefix   = "chat:"
	sourceImportPrefix = "import:"
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// newExtractor builds a chat extractor with the configured extra markers.
func newExtractor(cfg *config.Config) *chat.Extractor {
	opts := []chat.Option{chat.WithLogger(slog.Default())}
	if cfg != nil && len(cfg.ExtraNoiseMarkers) > 0 {
		opts = append(opts, chat.WithExtraNoiseMarkers(cfg.ExtraNoiseMarkers...))
	}
	return chat.NewExtractor(opts...)
}

// sourceFor tags a record source with the base name of the file it came from.
func sourceFor(prefix, path string) *string {
	s := prefix + filepath.Base(path)
	return &s
}

// normalizeSKU validates and normalizes a SKU given by a caller.
func normalizeSKU(raw string) (string, error) {
	sku := location.Normalize(raw)
	if sku == "" {
		return "", errors.NewInvalidRequest("sku is required")
	}
	if len(sku) > MaxSKULength {
		return "", errors.NewInvalidRequest(fmt.Sprintf("sku exceeds %d characters", MaxSKULength))
	}
	if strings.IndexFunc(sku, unicode.IsControl) >= 0 {
		return "", errors.NewInvalidRequest("sku must not contain control characters")
	}
	return sku, nil
}

// normalizeLocation validates a location given by a caller. Compound
// locations are accepted with any spacing around "&".
func normalizeLocation(raw string) (string, error) {
	loc := location.Normalize(raw)
	if loc == "" {
		return "", errors.NewInvalidRequest("location is required")
	}
	if !location.IsValidLocation(loc) {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid location %q: want a bin like A01 or a pair like A01 & A02", raw))
	}
	return loc, nil
}

// clampPage applies list limit defaults and bounds.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, max(offset, 0)
}
