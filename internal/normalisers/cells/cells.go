// Package cells holds the cell helpers shared by the source adapters:
// schema checks, the insurer-name filter, amount and date parsing.
package cells

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

// ErrAmount indicates a cell that does not hold a number.
var ErrAmount = errors.New("not a number")

// currencyTokens are stripped from amount cells before parsing.
var currencyTokens = []string{"COP", "USD", "$"}

// RequireColumns returns a *domain.SchemaError naming the required columns
// the table lacks, or nil.
func RequireColumns(table *domain.Table, source string, required []string) error {
	missing := table.MissingColumns(required)
	if len(missing) == 0 {
		return nil
	}
	return &domain.SchemaError{
		Source:  source,
		Missing: missing,
		Found:   append([]string(nil), table.Columns...),
	}
}

// Fold upper-cases s and removes accents, so "Allianz Seguros de Vida"
// and "ALLIANZ SEGUROS DE VIDA" compare equal, as do "Compañía" and "COMPANIA".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(strings.TrimSpace(folded))
}

// MatchesInsurer reports whether the insurer-name cell value contains
// insurer, ignoring case and accents. An empty insurer matches every row;
// an empty cell matches none.
func MatchesInsurer(value, insurer string) bool {
	want := Fold(insurer)
	if want == "" {
		return true
	}
	got := Fold(value)
	if got == "" {
		return false
	}
	return strings.Contains(got, want)
}

// ParseAmount parses a money cell. Raw numeric cells ("4123617.55",
// "1.2E+6") are read as is; formatted text may carry a currency token,
// thousands commas or accounting parentheses for negatives.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrAmount
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	for _, token := range currencyTokens {
		s = strings.ReplaceAll(s, token, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}

	if s == "" {
		return decimal.Zero, ErrAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrAmount
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Reader reads cells of one table row, collecting ambiguity warnings.
type Reader struct {
	Source   string
	Row      int
	Values   domain.Row
	Warnings []domain.AmbiguityWarning
}

// NewReader creates a reader for the 1-based data row n.
func NewReader(source string, n int, row domain.Row) *Reader {
	return &Reader{Source: source, Row: n, Values: row}
}

// Text returns the trimmed cell text.
func (r *Reader) Text(column string) string {
	return r.Values.Value(column)
}

// Amount returns the parsed money cell. Blank cells are invalid without a
// warning; unparseable cells are invalid with one.
func (r *Reader) Amount(column string) decimal.NullDecimal {
	raw := r.Text(column)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := ParseAmount(raw)
	if err != nil {
		r.warn(column, raw, err.Error())
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Date returns the date of a cell holding either a serial or text.
func (r *Reader) Date(column string) domain.Date {
	raw := r.Text(column)
	d := domain.DateFromCell(raw)
	r.checkDate(column, raw, d)
	return d
}

// SerialDate returns the date of a cell holding a day serial.
func (r *Reader) SerialDate(column string) domain.Date {
	raw := r.Text(column)
	d := domain.DateFromSerial(raw)
	if !d.Valid() {
		// Some exports format the serial column as text dates.
		if alt := domain.DateFromString(raw); alt.Valid() {
			return alt
		}
	}
	r.checkDate(column, raw, d)
	return d
}

func (r *Reader) checkDate(column, raw string, d domain.Date) {
	if d.Valid() {
		return
	}
	reason := "not a date"
	if raw == "" {
		reason = "missing date"
	}
	r.warn(column, raw, reason)
}

func (r *Reader) warn(column, raw, reason string) {
	r.Warnings = append(r.Warnings, domain.AmbiguityWarning{
		Source: r.Source,
		Row:    r.Row,
		Field:  column,
		Value:  raw,
		Reason: reason,
	})
}
