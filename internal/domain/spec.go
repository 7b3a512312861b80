package domain

import "time"

// Spec captures one view over a collection: the active filter selections
// plus a single sort key/direction pair. It is a value object; applying it
// never mutates the collection.
type Spec struct {
	// Equals maps a field name to the exact value it must carry. All
	// dimensions are ANDed together.
	Equals map[string]string

	// Search is matched case-insensitively against SearchFields.
	Search       string
	SearchFields []string

	// DateField bounds records to [DateFrom, DateTo] on an RFC 3339 field.
	// A zero bound is open on that side.
	DateField string
	DateFrom  time.Time
	DateTo    time.Time

	SortKey  string
	SortDesc bool
}
