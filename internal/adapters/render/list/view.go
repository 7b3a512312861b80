package list

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/localpad/localpad/internal/domain"
)

type RenderOptions struct {
	Title   string
	Columns []string
	Page    int
}

func renderView(page domain.Page, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(opts.Title),
		s.header.Render(fmt.Sprintf("records: %d", page.TotalCount)),
	}

	if len(page.Items) == 0 {
		lines = append(lines, s.empty.Render("Nothing to show."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, rec := range page.Items {
		lines = append(lines, renderRecord(rec, opts.Columns, s))
	}

	if page.PageCount > 1 {
		lines = append(lines, s.footer.Render(fmt.Sprintf("page %d of %d", opts.Page, page.PageCount)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRecord(rec domain.Record, columns []string, s styles) string {
	parts := []string{s.id.Render(string(rec.ID))}

	if len(columns) == 0 {
		columns = sortedFieldNames(rec.Fields)
	}

	for _, name := range columns {
		value, ok := rec.Fields[name]
		if !ok {
			continue
		}
		parts = append(parts, s.label.Render(name+"=")+s.cell.Render(fieldValueText(value)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, "  "))
}

func fieldValueText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%.2f", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func sortedFieldNames(fields domain.Fields) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
