package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/location"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const recordColumns = `id, sku, location, source, created_at, updated_at`

// NewID returns a fresh ULID for a record.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Upsert writes r keyed by SKU. A new SKU is inserted with r.ID (generated
// if empty) and both timestamps; an existing SKU keeps its id and
// created_at while location, source and updated_at are replaced.
// r is updated in place with the stored id and created_at.
// It reports whether a new row was inserted.
func Upsert(ctx context.Context, q Querier, r *location.Record) (bool, error) {
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.UpdatedAt == 0 {
		r.UpdatedAt = time.Now().Unix()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = r.UpdatedAt
	}

	query := `
		INSERT INTO sku_locations (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(sku) DO UPDATE SET
			location = excluded.location,
			source = excluded.source,
			updated_at = excluded.updated_at
		RETURNING id, created_at
	`

	var storedID string
	var createdAt int64
	err := q.QueryRowContext(ctx, query,
		r.ID, r.SKU, r.Location, toNullString(r.Source), r.CreatedAt, r.UpdatedAt,
	).Scan(&storedID, &createdAt)
	if err != nil {
		return false, errors.NewInternal(err)
	}

	inserted := storedID == r.ID
	r.ID = storedID
	r.CreatedAt = createdAt
	return inserted, nil
}

// UpsertResult summarizes a batch upsert.
type UpsertResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// UpsertMany upserts entries in order inside one transaction. Later entries
// for the same SKU win. Cancellation is checked between rows and rolls the
// whole batch back.
func UpsertMany(ctx context.Context, database *sql.DB, entries []location.Entry, source *string) (*UpsertResult, error) {
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("upsert")
	}
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().Unix()
	res := &UpsertResult{}
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("upsert")
		default:
		}

		r := &location.Record{
			SKU:       e.SKU,
			Location:  e.Location,
			Source:    source,
			CreatedAt: now,
			UpdatedAt: now,
		}
		inserted, err := Upsert(ctx, tx, r)
		if err != nil {
			return nil, err
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return res, nil
}

// GetBySKU retrieves a record by exact SKU.
func GetBySKU(ctx context.Context, q Querier, sku string) (*location.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM sku_locations WHERE sku = ?`

	r, err := scanRecord(q.QueryRowContext(ctx, query, sku))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(sku)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// ListFilters narrows a List query.
type ListFilters struct {
	Prefix   string // SKU prefix, matched literally
	Location string // exact location
}

// List returns one page of records ordered by SKU, plus the total number
// of records matching the filters.
func List(ctx context.Context, q Querier, filters ListFilters, limit, offset int) ([]location.Record, int, error) {
	where, args := filters.where()

	var total int
	countQuery := `SELECT COUNT(*) FROM sku_locations` + where
	if err := q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + recordColumns + ` FROM sku_locations` + where + ` ORDER BY sku LIMIT ? OFFSET ?`
	rows, err := q.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	records := []location.Record{}
	for rows.Next() {
		r, err := ScanRecordFromRows(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return records, total, nil
}

// ListRecent returns the most recently updated records, newest first.
func ListRecent(ctx context.Context, q Querier, limit int) ([]location.Record, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM sku_locations ORDER BY updated_at DESC, sku LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	records := []location.Record{}
	for rows.Next() {
		r, err := ScanRecordFromRows(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return records, nil
}

func (f ListFilters) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Prefix != "" {
		clauses = append(clauses, `sku LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(f.Prefix)+"%")
	}
	if f.Location != "" {
		clauses = append(clauses, `location = ?`)
		args = append(args, f.Location)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLike escapes LIKE wildcards so a prefix matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Summary holds aggregate figures for the store.
type Summary struct {
	Records      int   `json:"records"`
	Locations    int   `json:"locations"`
	LastUpdateAt int64 `json:"last_update_at,omitempty"`
}

// Summarize returns record count, distinct location count and the newest
// updated_at (0 for an empty store).
func Summarize(ctx context.Context, q Querier) (*Summary, error) {
	query := `SELECT COUNT(*), COUNT(DISTINCT location), COALESCE(MAX(updated_at), 0) FROM sku_locations`

	var s Summary
	if err := q.QueryRowContext(ctx, query).Scan(&s.Records, &s.Locations, &s.LastUpdateAt); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &s, nil
}

// CountByZone counts records per zone letter (first character of location).
func CountByZone(ctx context.Context, q Querier) (map[string]int, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT substr(location, 1, 1) AS zone, COUNT(*)
		FROM sku_locations
		GROUP BY zone
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	zones := make(map[string]int)
	for rows.Next() {
		var zone string
		var n int
		if err := rows.Scan(&zone, &n); err != nil {
			return nil, errors.NewInternal(err)
		}
		zones[zone] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return zones, nil
}

// Delete removes the record for sku.
func Delete(ctx context.Context, q Querier, sku string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM sku_locations WHERE sku = ?`, sku)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(sku)
	}
	return nil
}

// BulkDelete removes every record matching filters. Callers must supply at
// least one filter; an empty filter set is rejected rather than clearing
// the table.
func BulkDelete(ctx context.Context, q Querier, filters ListFilters) (int, error) {
	where, args := filters.where()
	if where == "" {
		return 0, errors.NewInvalidRequest("at least one filter is required")
	}

	result, err := q.ExecContext(ctx, `DELETE FROM sku_locations`+where, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// BulkRelocate sets location, source and updated_at on every record
// matching filters. At least one filter is required.
func BulkRelocate(ctx context.Context, q Querier, filters ListFilters, newLocation string, source *string, now int64) (int, error) {
	where, args := filters.where()
	if where == "" {
		return 0, errors.NewInvalidRequest("at least one filter is required")
	}

	query := `UPDATE sku_locations SET location = ?, source = ?, updated_at = ?` + where
	result, err := q.ExecContext(ctx, query, append([]any{newLocation, toNullString(source), now}, args...)...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// Clear removes every record and returns how many were deleted.
func Clear(ctx context.Context, q Querier) (int, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM sku_locations`)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// StreamAll returns rows for every record ordered by SKU.
// The caller must close the rows and scan with ScanRecordFromRows.
func StreamAll(ctx context.Context, q Querier) (*sql.Rows, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+recordColumns+` FROM sku_locations ORDER BY sku`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a Record.
func scanRecord(row scanner) (*location.Record, error) {
	var (
		r      location.Record
		source sql.NullString
	)
	if err := row.Scan(&r.ID, &r.SKU, &r.Location, &source, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Source = fromNullString(source)
	return &r, nil
}

// ScanRecordFromRows scans the current row of a StreamAll or List cursor.
func ScanRecordFromRows(rows *sql.Rows) (*location.Record, error) {
	return scanRecord(rows)
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
