package domain

import "time"

// RecordID is lexicographically ordered by creation time: IDs are minted
// from a millisecond timestamp plus a per-millisecond sequence number, so
// sorting IDs as strings sorts records chronologically.
type RecordID string

// Fields holds a record's user data as scalar values keyed by field name.
type Fields map[string]any

// Record is one entry in a pad's collection. Fields carries the
// profile-declared data; the timestamps are managed by the store.
type Record struct {
	ID        RecordID
	Fields    Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy; mutating the copy's fields never touches the
// original.
func (r Record) Clone() Record {
	clone := r
	clone.Fields = make(Fields, len(r.Fields))
	for name, value := range r.Fields {
		clone.Fields[name] = value
	}
	return clone
}

// Merge overlays the given fields onto a copy of the record. Keys absent
// from the overlay keep their current values.
func (r Record) Merge(fields Fields) Record {
	merged := r.Clone()
	for name, value := range fields {
		merged.Fields[name] = value
	}
	return merged
}

// Collection is an ordered set of records, newest first.
type Collection []Record

// IndexOf returns the position of the record with the given ID, or -1.
func (c Collection) IndexOf(id RecordID) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone deep-copies the collection.
func (c Collection) Clone() Collection {
	clone := make(Collection, 0, len(c))
	for _, rec := range c {
		clone = append(clone, rec.Clone())
	}
	return clone
}
