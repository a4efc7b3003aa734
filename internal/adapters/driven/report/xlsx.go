package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
)

// Ensure XLSXWriter implements the interface.
var _ driven.ReportWriter = (*XLSXWriter)(nil)

// SummarySheet is the first worksheet of an exported workbook.
const SummarySheet = "Summary"

var outcomeHeaders = []string{
	"#", "Policy", "Start date", "Internal source", "Internal receipt", "Insurer receipt",
	"Holder", "Balance", "Insurer source", "Client", "Portfolio total",
	"1-30", "31-90", "91-180", "180+", "Backfill primary",
}

// XLSXWriter exports a run as a workbook: a summary sheet followed by one
// sheet per bucket named after the bucket identifier.
type XLSXWriter struct{}

// NewXLSXWriter creates a workbook report writer.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// Format returns the writer identifier.
func (x *XLSXWriter) Format() string { return "xlsx" }

// Extension returns the file extension for reports.
func (x *XLSXWriter) Extension() string { return ".xlsx" }

// Write builds the workbook in memory and writes it to w.
func (x *XLSXWriter) Write(w io.Writer, run *domain.Run) error {
	if run == nil || run.Result == nil {
		return &domain.StateError{Op: "write workbook", Requires: "a classified result"}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeSummarySheet(f, bold, run); err != nil {
		return err
	}
	for _, b := range domain.Buckets {
		if err := writeBucketSheet(f, bold, b, run.Result.Outcomes(b)); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, bold int, run *domain.Run) error {
	sum := run.Summary
	rows := [][]any{
		{"Run", sum.ID},
		{"Generated", sum.StartedAt.Format("2006-01-02 15:04:05")},
		{"Insurer", sum.Insurer},
		{"Mode", string(sum.Mode)},
		{"Combined internal", sum.Combined},
		{"Secondary superseded", sum.Discarded},
		{"Insurer records", sum.External},
		{"Match rate (%)", sum.MatchRate},
		{"Warnings", sum.Warnings},
		{},
		{"Bucket", "Outcomes", "Criteria"},
	}
	for _, b := range domain.Buckets {
		rows = append(rows, []any{b.Title(), len(run.Result.Outcomes(b)), Criteria(b)})
	}

	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}
	// The bucket table header sits after the nine summary lines and a gap.
	return f.SetCellStyle(SummarySheet, "A11", "C11", bold)
}

func writeBucketSheet(f *excelize.File, bold int, b domain.Bucket, outcomes []domain.Outcome) error {
	sheet := b.String()
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	header := make([]any, len(outcomeHeaders))
	for i, h := range outcomeHeaders {
		header[i] = h
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(outcomeHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i := range outcomes {
		if err := setRow(f, sheet, i+2, outcomeRow(i+1, &outcomes[i])); err != nil {
			return err
		}
	}
	return nil
}

func outcomeRow(n int, o *domain.Outcome) []any {
	row := []any{n, o.Policy(), string(o.Date()), "", o.InternalReceipt(), o.ExternalReceipt(),
		"", nil, "", "", nil, nil, nil, nil, nil, o.NeedsPrimaryBackfill}
	if in := o.Internal; in != nil {
		row[3] = in.Origin
		row[6] = in.Counterparty
		row[7] = amountCell(in.Balance)
	}
	if ex := o.External; ex != nil {
		row[8] = ex.Origin
		row[9] = ex.Counterparty
		row[10] = amountCell(ex.Total)
		row[11] = amountCell(ex.Aging.Days1To30)
		row[12] = amountCell(ex.Aging.Days31To90)
		row[13] = amountCell(ex.Aging.Days91To180)
		row[14] = amountCell(ex.Aging.Over180)
	}
	return row
}

// amountCell returns a numeric cell value, or nil to leave the cell blank
// for an invalid amount.
func amountCell(n decimal.NullDecimal) any {
	if !n.Valid {
		return nil
	}
	return n.Decimal.InexactFloat64()
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
