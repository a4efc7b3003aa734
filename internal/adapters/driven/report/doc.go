// Package report renders reconciliation runs.
//
// Writers implement driven.ReportWriter and produce a complete document
// from a run: TextWriter (plain text, one section per bucket), XLSXWriter
// (one worksheet per bucket) and JSONWriter. SummaryRenderer prints the
// short run summary shown on the terminal after every run.
package report
