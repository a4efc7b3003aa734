package domain

import "fmt"

// AmbiguityWarning records a field that could not be parsed.
// The affected record is kept with a sentinel value so that downstream
// counts stay consistent with the input row counts.
type AmbiguityWarning struct {
	// Source is the origin tag of the table.
	Source string

	// Row is the 1-based data row within the table.
	Row int

	// Field is the column name.
	Field string

	// Value is the raw cell text.
	Value string

	// Reason describes what could not be parsed.
	Reason string
}

func (w AmbiguityWarning) String() string {
	return fmt.Sprintf("%s row %d: %s %q: %s", w.Source, w.Row, w.Field, w.Value, w.Reason)
}
