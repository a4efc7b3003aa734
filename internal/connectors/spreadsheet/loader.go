// Package spreadsheet loads source tables from Excel workbooks.
package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/conciliar/internal/connectors/grid"
	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
	"github.com/custodia-labs/conciliar/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.TableLoader = (*Loader)(nil)

// Loader reads one worksheet of an Office Open XML workbook.
//
// Cells are read as raw values, so date cells arrive as day serials and
// numbers without their display format.
type Loader struct{}

// New creates a new spreadsheet loader.
func New() *Loader {
	return &Loader{}
}

// Name returns the loader identifier.
func (l *Loader) Name() string {
	return "spreadsheet"
}

// Extensions returns the file extensions handled.
func (l *Loader) Extensions() []string {
	return []string{".xlsx", ".xlsm", ".xltx", ".xltm"}
}

// Load reads the preferred sheet (opts.Sheet, matched case-insensitively)
// or the first sheet of the workbook.
func (l *Loader) Load(ctx context.Context, path string, opts driven.LoadOptions) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	sheet := pickSheet(f.GetSheetList(), opts.Sheet)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook %s has no sheets", domain.ErrInvalidInput, filepath.Base(path))
	}
	logger.Debug("Reading sheet %q of %s", sheet, filepath.Base(path))

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	return grid.Build(filepath.Base(path), rows, opts.HeaderKeys)
}

func pickSheet(sheets []string, preferred string) string {
	if len(sheets) == 0 {
		return ""
	}
	if preferred != "" {
		for _, s := range sheets {
			if strings.EqualFold(strings.TrimSpace(s), preferred) {
				return s
			}
		}
	}
	return sheets[0]
}
