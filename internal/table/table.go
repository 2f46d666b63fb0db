package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a single cell. Cells are kept as the text the source produced;
// Number reports whether that text is numeric.
type Value struct {
	raw string
}

// Text returns a Value holding s.
func Text(s string) Value {
	return Value{raw: s}
}

// String returns the cell text unchanged.
func (v Value) String() string {
	return v.raw
}

// Number parses the cell as a float.
func (v Value) Number() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Row maps column name to cell. Every row of a Table has every column.
type Row map[string]Value

// Table is an ordered set of rows sharing one ordered list of column names.
// A Table is not modified after construction; WithColumn returns a copy.
type Table struct {
	columns []string
	rows    []Row
}

// New builds a Table from a header and its records. Blank header cells are
// named "Unnamed: N" and repeated names get a ".N" suffix so names are unique.
// Short records are padded with empty cells; long records are rejected.
func New(header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("missing header row")
	}
	columns := uniqueColumns(header)

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		if isBlank(rec) {
			continue
		}
		if len(rec) > len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d columns", i+2, len(rec), len(columns))
		}
		row := make(Row, len(columns))
		for j, col := range columns {
			if j < len(rec) {
				row[col] = Text(rec[j])
			} else {
				row[col] = Text("")
			}
		}
		rows = append(rows, row)
	}
	return &Table{columns: columns, rows: rows}, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Cell returns the value at row i, column col.
func (t *Table) Cell(i int, col string) Value {
	return t.rows[i][col]
}

// Record returns row i as cells in column order.
func (t *Table) Record(i int) []string {
	out := make([]string, len(t.columns))
	for j, col := range t.columns {
		out[j] = t.rows[i][col].String()
	}
	return out
}

// WithColumn returns a copy of t with column name holding values. If name
// already exists its values are replaced in place, otherwise it is appended.
func (t *Table) WithColumn(name string, values []Value) (*Table, error) {
	if len(values) != len(t.rows) {
		return nil, fmt.Errorf("column %q: %d values for %d rows", name, len(values), len(t.rows))
	}
	columns := t.Columns()
	if !t.HasColumn(name) {
		columns = append(columns, name)
	}
	rows := make([]Row, len(t.rows))
	for i, src := range t.rows {
		row := make(Row, len(columns))
		for k, v := range src {
			row[k] = v
		}
		row[name] = values[i]
		rows[i] = row
	}
	return &Table{columns: columns, rows: rows}, nil
}

func uniqueColumns(header []string) []string {
	names := make([]string, len(header))
	reserved := make(map[string]bool, len(header))
	for i, h := range header {
		name := cleanCell(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		names[i] = name
		reserved[name] = true
	}

	// Renamed duplicates skip every name already taken or present in the header.
	columns := make([]string, len(names))
	taken := make(map[string]bool, len(names))
	next := make(map[string]int, len(names))
	for i, name := range names {
		if taken[name] {
			base := name
			for {
				next[base]++
				name = fmt.Sprintf("%s.%d", base, next[base])
				if !taken[name] && !reserved[name] {
					break
				}
			}
		}
		taken[name] = true
		columns[i] = name
	}
	return columns
}

func cleanCell(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
