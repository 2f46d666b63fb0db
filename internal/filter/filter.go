package filter

import (
	"strings"

	"github.com/amishk599/execsum/internal/model"
	"github.com/amishk599/execsum/internal/table"
)

// RowFilter decides whether a table row should be (re)generated.
type RowFilter interface {
	Match(t *table.Table, row int) bool
}

// FailedOnly matches rows whose result column is blank or holds an error
// marker. When the table has no result column every row matches.
type FailedOnly struct {
	column string
}

// NewFailedOnly returns a filter over the given result column.
func NewFailedOnly(column string) *FailedOnly {
	return &FailedOnly{column: column}
}

// Match reports whether row still needs a summary.
func (f *FailedOnly) Match(t *table.Table, row int) bool {
	if !t.HasColumn(f.column) {
		return true
	}
	v := t.Cell(row, f.column).String()
	return strings.TrimSpace(v) == "" || model.IsErrorMarker(v)
}

// NameFilter matches rows whose name column contains any of the keywords.
// Matching is case-insensitive. An empty keyword list matches all rows.
type NameFilter struct {
	column   string
	keywords []string
}

// NewNameFilter returns a filter on the given name column.
func NewNameFilter(column string, keywords []string) *NameFilter {
	return &NameFilter{column: column, keywords: keywords}
}

// Match returns true if the row's name contains any keyword.
func (f *NameFilter) Match(t *table.Table, row int) bool {
	if len(f.keywords) == 0 {
		return true
	}
	nameLower := strings.ToLower(t.Cell(row, f.column).String())
	for _, kw := range f.keywords {
		if strings.Contains(nameLower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// All matches a row only when every filter matches. A nil or empty All matches everything.
type All []RowFilter

// Match implements RowFilter.
func (a All) Match(t *table.Table, row int) bool {
	for _, f := range a {
		if f != nil && !f.Match(t, row) {
			return false
		}
	}
	return true
}
