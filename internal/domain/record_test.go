package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSourceIsMonotonicWithinOneMillisecond(t *testing.T) {
	ids := NewIDSource()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	seen := map[RecordID]struct{}{}
	var previous RecordID
	for i := 0; i < 100; i++ {
		id := ids.Next(now)
		_, dup := seen[id]
		require.False(t, dup, "id %q issued twice", id)
		seen[id] = struct{}{}

		if previous != "" {
			assert.Greater(t, string(id), string(previous))
		}
		previous = id
	}
}

func TestIDSourceNeverGoesBackwards(t *testing.T) {
	ids := NewIDSource()
	later := time.Date(2026, 9, 1, 12, 0, 1, 0, time.UTC)
	earlier := later.Add(-time.Second)

	first := ids.Next(later)
	second := ids.Next(earlier)

	assert.Greater(t, string(second), string(first))
}

func TestRecordCloneIsIndependent(t *testing.T) {
	rec := Record{ID: "a", Fields: Fields{"title": "original"}}

	clone := rec.Clone()
	clone.Fields["title"] = "changed"

	assert.Equal(t, "original", rec.Fields["title"])
}

func TestRecordMergeOverlaysFields(t *testing.T) {
	rec := Record{ID: "a", Fields: Fields{"title": "original", "done": false}}

	merged := rec.Merge(Fields{"done": true})

	assert.Equal(t, "original", merged.Fields["title"])
	assert.Equal(t, true, merged.Fields["done"])
	assert.Equal(t, false, rec.Fields["done"])
}

func TestCollectionIndexOf(t *testing.T) {
	col := Collection{{ID: "a"}, {ID: "b"}}

	assert.Equal(t, 1, col.IndexOf("b"))
	assert.Equal(t, -1, col.IndexOf("missing"))
}
