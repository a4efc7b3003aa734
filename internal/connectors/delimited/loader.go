// Package delimited loads source tables from CSV and similar text exports.
//
// Exports from the policy and collections systems arrive in whatever
// encoding the exporting machine used, so input is decoded to UTF-8 before
// parsing: a byte-order mark selects UTF-8 or UTF-16, valid UTF-8 passes
// through, and anything else is read as Windows-1252.
package delimited

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/conciliar/internal/connectors/grid"
	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
	"github.com/custodia-labs/conciliar/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.TableLoader = (*Loader)(nil)

// Delimiters are the separators recognised, in order of preference on a tie.
var Delimiters = []rune{',', ';', '\t', '|'}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Loader reads delimited text files.
type Loader struct{}

// New creates a new delimited text loader.
func New() *Loader {
	return &Loader{}
}

// Name returns the loader identifier.
func (l *Loader) Name() string {
	return "delimited"
}

// Extensions returns the file extensions handled.
func (l *Loader) Extensions() []string {
	return []string{".csv", ".tsv", ".txt"}
}

// Load reads the whole file. opts.Sheet is ignored.
func (l *Loader) Load(ctx context.Context, path string, opts driven.LoadOptions) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	text, enc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	delim := DetectDelimiter(text)
	logger.Debug("Reading %s as %s, delimiter %q", filepath.Base(path), enc, delim)

	rows, err := readRows(text, delim)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return grid.Build(filepath.Base(path), rows, opts.HeaderKeys)
}

// Decode converts raw file bytes to UTF-8 and names the encoding found.
func Decode(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, "", err
		}
		return out, "utf-16", nil
	case utf8.Valid(data):
		return data, "utf-8", nil
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", err
	}
	return out, "windows-1252", nil
}

// DetectDelimiter picks the separator that occurs most often, outside
// quotes, on the first non-blank line. It defaults to a comma.
func DetectDelimiter(text []byte) rune {
	line := firstLine(text)

	counts := make(map[rune]int, len(Delimiters))
	quoted := false
	for _, r := range string(line) {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range Delimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

func firstLine(text []byte) []byte {
	for len(text) > 0 {
		var line []byte
		if i := bytes.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i], text[i+1:]
		} else {
			line, text = text, nil
		}
		if len(bytes.TrimSpace(line)) > 0 {
			return line
		}
	}
	return nil
}

func readRows(text []byte, delim rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
}
