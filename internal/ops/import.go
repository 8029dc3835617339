package ops

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/location"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required, .json mapping or .csv table
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Inserted int           `json:"inserted"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	Total    int           `json:"total"` // records in the store afterwards
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one row that could not be imported.
type ImportError struct {
	Line    int    `json:"line,omitempty"` // CSV row or JSON entry index, 1-based
	SKU     string `json:"sku,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import loads a JSON mapping ({"SKU": "LOC", ...} or [{"sku":..,"location":..}])
// or a CSV table (optional SKU,Location header) into the store. Invalid rows
// are skipped and reported; valid rows are upserted in one transaction with
// later rows winning.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	format, err := FormatFromPath(input.Path)
	if err != nil {
		return nil, err
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []importRow
	var parseErrors []ImportError
	switch format {
	case SinkJSON:
		rows, err = readJSONRows(file)
	default:
		rows, parseErrors, err = readCSVRows(file)
	}
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot parse %s: %v", input.Path, err))
	}

	out := &ImportOutput{Errors: parseErrors}
	entries := make([]location.Entry, 0, len(rows))
	for _, row := range rows {
		entry, ierr := row.validate()
		if ierr != nil {
			out.Errors = append(out.Errors, *ierr)
			continue
		}
		entries = append(entries, entry)
	}
	out.Skipped = len(out.Errors)

	if len(entries) > 0 {
		res, err := db.UpsertMany(ctx, database, entries, sourceFor(sourceImportPrefix, input.Path))
		if err != nil {
			return nil, err
		}
		out.Inserted = res.Inserted
		out.Updated = res.Updated
		out.Imported = res.Inserted + res.Updated
	}

	summary, err := db.Summarize(ctx, database)
	if err != nil {
		return nil, err
	}
	out.Total = summary.Records

	if out.Errors == nil {
		out.Errors = []ImportError{}
	}
	return out, nil
}

type importRow struct {
	line     int
	sku      string
	location string
}

func (r importRow) validate() (location.Entry, *ImportError) {
	sku, err := normalizeSKU(r.sku)
	if err == nil {
		var loc string
		loc, err = normalizeLocation(r.location)
		if err == nil {
			return location.Entry{SKU: sku, Location: loc}, nil
		}
	}
	msg := err.Error()
	var sErr *errors.SkulocError
	if errors.As(err, &sErr) {
		msg = sErr.Message
	}
	return location.Entry{}, &ImportError{
		Line:    r.line,
		SKU:     r.sku,
		Code:    "INVALID_RECORD",
		Message: msg,
	}
}

// readJSONRows accepts either an object keyed by SKU, read in document
// order, or an array of {"sku", "location"} objects.
func readJSONRows(r io.Reader) ([]importRow, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	var rows []importRow
	switch tok {
	case json.Delim('{'):
		for i := 1; dec.More(); i++ {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			var loc string
			if err := dec.Decode(&loc); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			rows = append(rows, importRow{line: i, sku: keyTok.(string), location: loc})
		}
	case json.Delim('['):
		for i := 1; dec.More(); i++ {
			var e location.Entry
			if err := dec.Decode(&e); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			rows = append(rows, importRow{line: i, sku: e.SKU, location: e.Location})
		}
	default:
		return nil, fmt.Errorf("expected a JSON object or array")
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rows, nil
}

// readCSVRows reads sku,location rows. A first row whose first cell is
// "sku" (any case) is a header. Rows with fewer than two cells are
// reported and skipped.
func readCSVRows(r io.Reader) ([]importRow, []ImportError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []importRow
	var bad []ImportError
	for first := true; ; first = false {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := cr.FieldPos(0)

		if first && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 2 {
			bad = append(bad, ImportError{
				Line:    line,
				SKU:     rec[0],
				Code:    "INVALID_RECORD",
				Message: "expected sku,location",
			})
			continue
		}
		rows = append(rows, importRow{line: line, sku: rec[0], location: rec[1]})
	}
	return rows, bad, nil
}
