package location

// Entry is a single SKU → location pair as produced by extraction or
// read back from the store.
type Entry struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
}

// Record represents a stored SKU location.
// Fields correspond to the sku_locations table.
type Record struct {
	// ID is a ULID assigned on first insert and kept across upserts
	ID string `json:"id"`

	// SKU is the item identifier, unique across the store
	SKU string `json:"sku"`

	// Location is a bin code ("A01") or a compound ("A01 & A02")
	Location string `json:"location"`

	// Source records where the last write came from (e.g. "chat:export.txt", "manual", "import:db.csv")
	Source *string `json:"source,omitempty"`

	// CreatedAt is the Unix timestamp of the first insert
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the most recent upsert
	UpdatedAt int64 `json:"updated_at"`
}

// Entry strips the record down to its SKU/location pair.
func (r *Record) Entry() Entry {
	return Entry{SKU: r.SKU, Location: r.Location}
}
