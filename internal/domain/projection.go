package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Page is the result of projecting a collection through a spec: the records
// for one display page plus the totals the pagination footer needs.
type Page struct {
	Items      []Record
	TotalCount int
	PageCount  int
}

// Project filters, sorts, and paginates a collection. It is pure and
// deterministic: filtering happens before sorting, sorting before
// pagination, and equal sort keys tie-break on record ID ascending. Pages
// are 1-based; a page beyond PageCount yields empty items without error or
// clamping. A non-positive pageSize returns everything on one page.
func Project(col Collection, spec Spec, page, pageSize int) Page {
	filtered := make(Collection, 0, len(col))
	for _, rec := range col {
		if spec.matches(rec) {
			filtered = append(filtered, rec)
		}
	}

	if spec.SortKey != "" {
		sortRecords(filtered, spec.SortKey, spec.SortDesc)
	}

	total := len(filtered)
	if total == 0 {
		return Page{Items: []Record{}}
	}

	if pageSize <= 0 {
		return Page{Items: filtered, TotalCount: total, PageCount: 1}
	}

	pageCount := (total + pageSize - 1) / pageSize
	if page < 1 || page > pageCount {
		return Page{Items: []Record{}, TotalCount: total, PageCount: pageCount}
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{Items: filtered[start:end], TotalCount: total, PageCount: pageCount}
}

func (s Spec) matches(rec Record) bool {
	for field, want := range s.Equals {
		if fieldText(rec.Fields[field]) != want {
			return false
		}
	}

	if s.Search != "" {
		if !s.matchesSearch(rec) {
			return false
		}
	}

	if s.DateField != "" {
		at, ok := ParseInstant(fieldText(rec.Fields[s.DateField]))
		if !ok {
			return false
		}
		if !s.DateFrom.IsZero() && at.Before(s.DateFrom) {
			return false
		}
		if !s.DateTo.IsZero() && at.After(s.DateTo) {
			return false
		}
	}

	return true
}

func (s Spec) matchesSearch(rec Record) bool {
	needle := strings.ToLower(s.Search)

	fields := s.SearchFields
	if len(fields) == 0 {
		for name, value := range rec.Fields {
			if _, ok := value.(string); ok {
				fields = append(fields, name)
			}
		}
	}

	for _, field := range fields {
		text, ok := rec.Fields[field].(string)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}

	return false
}

func sortRecords(col Collection, key string, desc bool) {
	coll := collate.New(language.Und)

	sort.SliceStable(col, func(i, j int) bool {
		c := compareValues(coll, col[i].Fields[key], col[j].Fields[key])
		if c == 0 {
			// Tie-break on ID ascending regardless of direction, so equal
			// keys always come out in the same order.
			return col[i].ID < col[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compareValues is a total order over field values: numbers by value, dates
// by instant (RFC 3339 text compares lexicographically, which coincides
// with chronological order), strings by locale-aware collation. Records
// missing the key sort after all records that carry it.
func compareValues(coll *collate.Collator, a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}

	na, aNum := numericValue(a)
	nb, bNum := numericValue(b)
	if aNum && bNum {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}

	sa := fieldText(a)
	sb := fieldText(b)

	if _, okA := ParseInstant(sa); okA {
		if _, okB := ParseInstant(sb); okB {
			return strings.Compare(sa, sb)
		}
	}

	return coll.CompareString(sa, sb)
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// ParseInstant reads an RFC 3339 timestamp or a bare yyyy-mm-dd date.
func ParseInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func fieldText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}
