package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
)

// Ensure JSONWriter implements the interface.
var _ driven.ReportWriter = (*JSONWriter)(nil)

// JSONWriter renders a run as an indented JSON document.
type JSONWriter struct{}

// NewJSONWriter creates a JSON report writer.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

// Format returns the writer identifier.
func (j *JSONWriter) Format() string { return "json" }

// Extension returns the file extension for reports.
func (j *JSONWriter) Extension() string { return ".json" }

type jsonReport struct {
	ID        string               `json:"id"`
	StartedAt time.Time            `json:"started_at"`
	Insurer   string               `json:"insurer"`
	Mode      string               `json:"mode"`
	Sources   []jsonSource         `json:"sources"`
	Combined  int                  `json:"combined"`
	Discarded int                  `json:"discarded"`
	External  int                  `json:"external"`
	MatchRate float64              `json:"match_rate"`
	Counts    map[string]int       `json:"counts"`
	Buckets   map[string][]jsonRow `json:"buckets"`
	Warnings  []jsonWarning        `json:"warnings"`
}

type jsonSource struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Loaded int    `json:"loaded"`
	Kept   int    `json:"kept"`
}

type jsonRow struct {
	Policy           string `json:"policy"`
	Date             string `json:"date"`
	InternalReceipt  string `json:"internal_receipt,omitempty"`
	ExternalReceipt  string `json:"external_receipt,omitempty"`
	InternalOrigin   string `json:"internal_origin,omitempty"`
	ExternalOrigin   string `json:"external_origin,omitempty"`
	InternalName     string `json:"internal_name,omitempty"`
	ExternalName     string `json:"external_name,omitempty"`
	InternalBalance  string `json:"internal_balance,omitempty"`
	ExternalBalance  string `json:"external_balance,omitempty"`
	NeedsPrimaryFill bool   `json:"needs_primary_backfill,omitempty"`
}

type jsonWarning struct {
	Source string `json:"source"`
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Write encodes the run. Balances are decimal strings, absent when the
// source cell was blank or unparseable.
func (j *JSONWriter) Write(w io.Writer, run *domain.Run) error {
	if run == nil || run.Result == nil {
		return &domain.StateError{Op: "write json", Requires: "a classified result"}
	}
	sum := run.Summary

	doc := jsonReport{
		ID:        sum.ID,
		StartedAt: sum.StartedAt,
		Insurer:   sum.Insurer,
		Mode:      string(sum.Mode),
		Sources:   make([]jsonSource, 0, len(sum.Sources)),
		Combined:  sum.Combined,
		Discarded: sum.Discarded,
		External:  sum.External,
		MatchRate: sum.MatchRate,
		Counts:    make(map[string]int, len(domain.Buckets)),
		Buckets:   make(map[string][]jsonRow, len(domain.Buckets)),
		Warnings:  make([]jsonWarning, 0, len(run.Warnings)),
	}
	for _, s := range sum.Sources {
		doc.Sources = append(doc.Sources, jsonSource(s))
	}
	for _, b := range domain.Buckets {
		doc.Counts[b.String()] = len(run.Result.Outcomes(b))
		doc.Buckets[b.String()] = []jsonRow{}
	}
	for _, a := range run.Result.Archive() {
		doc.Buckets[a.Bucket.String()] = append(doc.Buckets[a.Bucket.String()], jsonRow{
			Policy:           a.Policy,
			Date:             string(a.Date),
			InternalReceipt:  a.InternalReceipt,
			ExternalReceipt:  a.ExternalReceipt,
			InternalOrigin:   a.InternalOrigin,
			ExternalOrigin:   a.ExternalOrigin,
			InternalName:     a.InternalName,
			ExternalName:     a.ExternalName,
			InternalBalance:  a.InternalBalance,
			ExternalBalance:  a.ExternalBalance,
			NeedsPrimaryFill: a.NeedsPrimaryFill,
		})
	}
	for _, warn := range run.Warnings {
		doc.Warnings = append(doc.Warnings, jsonWarning(warn))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
