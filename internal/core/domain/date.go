package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Date is a normalized calendar date in "2006-01-02" form, or NoDate.
type Date string

// NoDate is the sentinel used when a date is missing or cannot be parsed.
// It is never replaced by an arbitrary date.
const NoDate Date = "NaT"

// dateLayout is the canonical textual layout of a Date.
const dateLayout = "2006-01-02"

// maxSerial is the spreadsheet serial for 9999-12-31.
const maxSerial = 2958465

// serialEpoch is day zero of spreadsheet date serials. The insurer report
// stores start dates as integer day offsets from this epoch.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// minCellSerial is the smallest number DateFromCell reads as a serial
// (1927-05-18). Bare numbers of four digits or fewer are years or codes.
const minCellSerial = 10000

// stringLayouts are tried in order by DateFromString. Slash and dash
// numeric forms are read month first; day-first layouts follow, so they
// only apply when the first field cannot be a month ("13/01/2026").
var stringLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-2006",
	"01-02-06",
	"1/2/06",
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"02-01-2006",
	"2-1-2006",
	"02-01-06",
	"2/1/06",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"Jan 2, 2006",
	"20060102",
}

// Valid reports whether d holds a real date.
func (d Date) Valid() bool {
	return d != NoDate && d != ""
}

// String returns the textual form.
func (d Date) String() string {
	if d == "" {
		return string(NoDate)
	}
	return string(d)
}

// DateFromString parses a date-like string. Missing or unparseable input
// yields NoDate.
func DateFromString(raw string) Date {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NoDate
	}
	for _, layout := range stringLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t.Format(dateLayout))
		}
	}
	return NoDate
}

// DateFromSerial converts a spreadsheet day serial into a Date. The
// fractional (time of day) part is discarded. Missing, non-numeric or
// out-of-range input yields NoDate.
func DateFromSerial(raw string) Date {
	serial, ok := parseSerial(raw)
	if !ok {
		return NoDate
	}
	return DateFromSerialDays(serial)
}

// DateFromSerialDays converts a whole-day serial into a Date.
func DateFromSerialDays(days int) Date {
	if days < 0 || days > maxSerial {
		return NoDate
	}
	return Date(serialEpoch.AddDate(0, 0, days).Format(dateLayout))
}

// DateFromCell normalizes a spreadsheet cell that may hold either a day
// serial (raw numeric cell) or a formatted date string. Numbers below
// minCellSerial yield NoDate.
func DateFromCell(raw string) Date {
	if serial, ok := parseSerial(raw); ok {
		if serial < minCellSerial {
			return NoDate
		}
		return DateFromSerialDays(serial)
	}
	return DateFromString(raw)
}

// parseSerial reads raw as a day serial within the representable range.
func parseSerial(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	days := int(math.Trunc(f))
	if days < 0 || days > maxSerial {
		return 0, false
	}
	return days, true
}
