package chat

import (
	"bytes"
	"encoding/json"

	"github.com/hpungsan/skuloc/internal/location"
)

// Mapping is the SKU → location table built from a transcript.
// It has no exported mutators; once Extract returns it is read-only.
// Entries keep the position at which their SKU was first seen.
type Mapping struct {
	index   map[string]int
	entries []location.Entry
}

func newMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// set stores loc for sku, replacing any earlier value. It reports whether
// an earlier value was replaced.
func (m *Mapping) set(sku, loc string) bool {
	if i, ok := m.index[sku]; ok {
		m.entries[i].Location = loc
		return true
	}
	m.index[sku] = len(m.entries)
	m.entries = append(m.entries, location.Entry{SKU: sku, Location: loc})
	return false
}

// Len returns the number of distinct SKUs.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Get returns the location for sku.
func (m *Mapping) Get(sku string) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[sku]
	if !ok {
		return "", false
	}
	return m.entries[i].Location, true
}

// Entries returns a copy of the entries in first-seen order.
func (m *Mapping) Entries() []location.Entry {
	if m == nil {
		return []location.Entry{}
	}
	out := make([]location.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// ToMap returns a copy as a plain map.
func (m *Mapping) ToMap() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for _, e := range m.entries {
		out[e.SKU] = e.Location
	}
	return out
}

// MarshalJSON encodes the mapping as a single JSON object with keys in
// first-seen order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, e := range m.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(e.SKU); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
		buf.WriteByte(':')
		if err := enc.Encode(e.Location); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
