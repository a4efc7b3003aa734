// Package grid turns a raw cell grid, as read from a workbook or a
// delimited file, into a domain.Table.
package grid

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

// HeaderScanRows is how many leading rows are searched for the header.
const HeaderScanRows = 20

// Build locates the header row, then maps every following non-blank row
// onto the header names. Short rows are padded and extra cells dropped.
func Build(name string, cells [][]string, headerKeys []string) (*domain.Table, error) {
	header := FindHeader(cells, headerKeys)
	if header < 0 {
		return nil, fmt.Errorf("%w: %s has no header row", domain.ErrInvalidInput, name)
	}

	columns := headerNames(cells[header])
	table := &domain.Table{Name: name, Columns: columns}

	for _, raw := range cells[header+1:] {
		if isBlank(raw) {
			continue
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if i < len(raw) {
				row[col] = raw[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// FindHeader returns the index of the header row among the first
// HeaderScanRows rows: the first row carrying every key, else the row
// carrying the most keys, else the first non-blank row. It returns -1 when
// every scanned row is blank.
func FindHeader(cells [][]string, keys []string) int {
	limit := min(len(cells), HeaderScanRows)

	best, bestHits := -1, 0
	firstNonBlank := -1
	for i := 0; i < limit; i++ {
		if isBlank(cells[i]) {
			continue
		}
		if firstNonBlank < 0 {
			firstNonBlank = i
		}
		hits := countKeys(cells[i], keys)
		if len(keys) > 0 && hits == len(keys) {
			return i
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	if best >= 0 {
		return best
	}
	return firstNonBlank
}

// CleanHeader trims a header cell and puts it in composed Unicode form,
// so "Póliza" typed with a combining accent matches the literal name.
func CleanHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return norm.NFC.String(strings.TrimSpace(s))
}

func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, cell := range raw {
		name := CleanHeader(cell)
		if name == "" {
			name = fmt.Sprintf("Column%d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}

func countKeys(row []string, keys []string) int {
	present := make(map[string]struct{}, len(row))
	for _, cell := range row {
		present[CleanHeader(cell)] = struct{}{}
	}
	hits := 0
	for _, k := range keys {
		if _, ok := present[CleanHeader(k)]; ok {
			hits++
		}
	}
	return hits
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
