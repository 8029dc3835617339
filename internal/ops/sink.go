package ops

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/location"
)

// SinkKind names an output destination for a mapping.
type SinkKind string

const (
	SinkJSON  SinkKind = "json"
	SinkCSV   SinkKind = "csv"
	SinkStore SinkKind = "store"
)

// Default sink file names used by the CLI parse command.
const (
	DefaultJSONSink = "sku_locations.json"
	DefaultCSVSink  = "sku_locations.csv"
)

// csvHeader is the first row of every CSV sink and export.
var csvHeader = []string{"SKU", "Location"}

// SinkResult reports the outcome of writing one sink. A failed sink leaves
// Error set and never prevents the remaining sinks from being written.
type SinkResult struct {
	Sink  SinkKind `json:"sink"`
	Path  string   `json:"path,omitempty"`
	Count int      `json:"count"`
	Error string   `json:"error,omitempty"`
}

// OK reports whether the sink was written.
func (r SinkResult) OK() bool {
	return r.Error == ""
}

// anyFailed reports whether at least one sink failed.
func anyFailed(results []SinkResult) bool {
	for _, r := range results {
		if !r.OK() {
			return true
		}
	}
	return false
}

// FormatFromPath picks the file format from the extension.
func FormatFromPath(path string) (SinkKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtJSON:
		return SinkJSON, nil
	case ExtCSV:
		return SinkCSV, nil
	default:
		return "", errors.NewInvalidRequest("path must end in .json or .csv")
	}
}

// writeFileSink validates path and writes entries in the given format.
// Failures come back as a SkulocError with code SINK_WRITE_FAILED.
func writeFileSink(kind SinkKind, path string, cfg *config.Config, entries []location.Entry) error {
	ext := ExtJSON
	write := writeJSONEntries
	if kind == SinkCSV {
		ext = ExtCSV
		write = writeCSVEntries
	}

	if err := ValidatePath(path, PathCheckWrite, cfg, ext); err != nil {
		return errors.NewSinkWriteFailed(string(kind), path, err)
	}
	err := writeFileAtomic(path, func(w io.Writer) error {
		return write(w, entries)
	})
	if err != nil {
		return errors.NewSinkWriteFailed(string(kind), path, err)
	}
	return nil
}

// writeSinks writes each requested file sink in turn, JSON first. An empty
// path skips that sink.
func writeSinks(cfg *config.Config, jsonPath, csvPath string, entries []location.Entry) []SinkResult {
	targets := []struct {
		kind SinkKind
		path string
	}{
		{SinkJSON, jsonPath},
		{SinkCSV, csvPath},
	}

	results := []SinkResult{}
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		res := SinkResult{Sink: t.kind, Path: t.path}
		if err := writeFileSink(t.kind, t.path, cfg, entries); err != nil {
			res.Error = err.Error()
			slog.Warn("sink write failed", "sink", t.kind, "path", t.path, "err", err)
		} else {
			res.Count = len(entries)
		}
		results = append(results, res)
	}
	return results
}

// writeJSONEntries writes entries as one JSON object with 2-space
// indentation, keys in slice order. An empty slice writes "{}".
func writeJSONEntries(w io.Writer, entries []location.Entry) error {
	if len(entries) == 0 {
		_, err := io.WriteString(w, "{}\n")
		return err
	}

	if _, err := io.WriteString(w, "{\n"); err != nil {
		return err
	}
	for i, e := range entries {
		k, err := jsonString(e.SKU)
		if err != nil {
			return err
		}
		v, err := jsonString(e.Location)
		if err != nil {
			return err
		}
		sep := ",\n"
		if i == len(entries)-1 {
			sep = "\n"
		}
		if _, err := io.WriteString(w, "  "+k+": "+v+sep); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

// jsonString quotes s as a JSON string, leaving "&" unescaped.
func jsonString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// writeCSVEntries writes a SKU,Location header then one row per entry.
func writeCSVEntries(w io.Writer, entries []location.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.SKU, e.Location}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
