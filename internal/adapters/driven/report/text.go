package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
)

// Ensure TextWriter implements the interface.
var _ driven.ReportWriter = (*TextWriter)(nil)

const rule = "================================================================================"

// TextWriter renders a run as a plain-text report.
type TextWriter struct{}

// NewTextWriter creates a plain-text report writer.
func NewTextWriter() *TextWriter {
	return &TextWriter{}
}

// Format returns the writer identifier.
func (t *TextWriter) Format() string { return "text" }

// Extension returns the file extension for reports.
func (t *TextWriter) Extension() string { return ".txt" }

// Write renders the header, summary, one section per bucket and the
// warning list.
func (t *TextWriter) Write(w io.Writer, run *domain.Run) error {
	if run == nil || run.Result == nil {
		return &domain.StateError{Op: "write report", Requires: "a classified result"}
	}

	bw := bufio.NewWriter(w)
	sum := run.Summary

	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "RECONCILIATION REPORT - %s\n", strings.ToUpper(sum.Insurer))
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "\nRun:       %s\n", sum.ID)
	fmt.Fprintf(bw, "Generated: %s\n", sum.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "Mode:      %s\n", sum.Mode)

	fmt.Fprintln(bw, "\nSUMMARY:")
	for _, src := range sum.Sources {
		fmt.Fprintf(bw, "  - %s (%s): %d rows, %d kept\n", src.Name, src.Kind, src.Loaded, src.Kept)
	}
	fmt.Fprintf(bw, "  - Combined internal: %d records (%d secondary superseded)\n", sum.Combined, sum.Discarded)
	fmt.Fprintf(bw, "  - Insurer: %d records\n", sum.External)
	fmt.Fprintf(bw, "  - Match rate: %s\n", FormatRate(sum.MatchRate))

	fmt.Fprintln(bw, "\nRESULTS:")
	for i, b := range domain.Buckets {
		fmt.Fprintf(bw, "  [%d] %s: %d\n", i+1, b.Title(), len(run.Result.Outcomes(b)))
	}

	for i, b := range domain.Buckets {
		writeSection(bw, i+1, b, run.Result.Outcomes(b))
	}

	if len(run.Warnings) > 0 {
		fmt.Fprintf(bw, "\n%s\nDATA WARNINGS (%d)\n%s\n", rule, len(run.Warnings), rule)
		for _, warn := range run.Warnings {
			fmt.Fprintf(bw, "  %s\n", warn.String())
		}
	}

	return bw.Flush()
}

func writeSection(w io.Writer, n int, b domain.Bucket, outcomes []domain.Outcome) {
	fmt.Fprintf(w, "\n%s\n[%d] %s\n(%s)\n%s\n", rule, n, strings.ToUpper(b.Title()), Criteria(b), rule)
	fmt.Fprintf(w, "Total: %d\n\n", len(outcomes))

	if len(outcomes) == 0 {
		fmt.Fprint(w, "No policies in this section.\n\n")
		return
	}

	for i := range outcomes {
		writeEntry(w, i+1, &outcomes[i])
	}
}

func writeEntry(w io.Writer, n int, o *domain.Outcome) {
	fmt.Fprintf(w, "%d. Policy: %s | Date: %s", n, o.Policy(), o.Date())
	switch o.Bucket {
	case domain.BucketUnpaid, domain.BucketUpdateSystem:
		fmt.Fprintf(w, " | Receipt (%s): %s | Receipt (insurer): %s\n",
			o.Internal.Origin, orDash(o.InternalReceipt()), orDash(o.ExternalReceipt()))
	case domain.BucketMissingReceipt:
		fmt.Fprintf(w, " | Suggested receipt: %s\n", orDash(o.ExternalReceipt()))
	default:
		fmt.Fprintf(w, " | Receipt: %s\n", orDash(o.InternalReceipt()+o.ExternalReceipt()))
	}

	if o.NeedsPrimaryBackfill {
		fmt.Fprintf(w, "   ! Receipt also needs entering in the primary source (only in %s)\n", o.Internal.Origin)
	}
	if o.Internal != nil {
		fmt.Fprintf(w, "   Holder (%s): %s | Balance: %s\n",
			o.Internal.Origin, orDash(o.Internal.Counterparty), FormatAmount(o.Internal.Balance))
	}
	if o.External != nil {
		fmt.Fprintf(w, "   Client (%s): %s | Portfolio: %s\n",
			o.External.Origin, orDash(o.External.Counterparty), FormatAmount(o.External.Total))
	}
	fmt.Fprintln(w)
}
