package domain

import "strings"

// Table is a pre-loaded source table: an ordered sequence of rows with
// named fields. Tables are produced by loaders outside the core and are
// never modified by it.
type Table struct {
	// Name identifies the table in messages (usually the file name).
	Name string

	// Columns lists the header names in file order.
	Columns []string

	// Rows holds the data rows in file order.
	Rows []Row
}

// Row maps column name to raw cell text. An absent key or empty text
// stands for a null cell.
type Row map[string]string

// Value returns the trimmed text of a cell, or "" for a null cell.
func (r Row) Value(column string) string {
	return strings.TrimSpace(r[column])
}

// IsNull reports whether the cell is absent or blank.
func (r Row) IsNull(column string) bool {
	return r.Value(column) == ""
}

// HasColumn reports whether the table header carries the column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the names from required that the header lacks,
// in the order given.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
