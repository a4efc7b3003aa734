package domain

import "time"

// SourceCount describes how many rows one source contributed.
type SourceCount struct {
	// Name is the origin tag.
	Name string

	// Kind is "primary", "secondary" or "external".
	Kind string

	// Loaded is the number of rows in the table.
	Loaded int

	// Kept is the number of records after the insurer filter.
	Kept int
}

// RunSummary holds the counts of one reconciliation run.
type RunSummary struct {
	// ID uniquely identifies the run.
	ID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Insurer and Mode are the settings the run used.
	Insurer string
	Mode    Mode

	// Sources lists per-source row counts in load order.
	Sources []SourceCount

	// Combined is the size of the combined internal set.
	Combined int

	// Discarded is the number of secondary records superseded by primary ones.
	Discarded int

	// External is the size of the insurer set.
	External int

	// Counts holds the number of outcomes per bucket.
	Counts map[Bucket]int

	// Warnings is the number of data ambiguity warnings.
	Warnings int

	// MatchRate is the percentage of combined records matched by buckets 1-3.
	MatchRate float64
}

// Run is the full output of a reconciliation run.
type Run struct {
	Summary  RunSummary
	Result   *Result
	Warnings []AmbiguityWarning
}

// ArchivedOutcome is the flat form of an outcome kept in the run archive.
type ArchivedOutcome struct {
	Seq              int
	Bucket           Bucket
	Policy           string
	Date             Date
	InternalReceipt  string
	ExternalReceipt  string
	InternalOrigin   string
	ExternalOrigin   string
	InternalName     string
	ExternalName     string
	InternalBalance  string
	ExternalBalance  string
	NeedsPrimaryFill bool
}

// Archive flattens a result for storage, in bucket order.
func (r *Result) Archive() []ArchivedOutcome {
	var out []ArchivedOutcome
	for _, o := range r.All() {
		a := ArchivedOutcome{
			Seq:              len(out) + 1,
			Bucket:           o.Bucket,
			Policy:           o.Policy(),
			Date:             o.Date(),
			InternalReceipt:  o.InternalReceipt(),
			ExternalReceipt:  o.ExternalReceipt(),
			NeedsPrimaryFill: o.NeedsPrimaryBackfill,
		}
		if o.Internal != nil {
			a.InternalOrigin = o.Internal.Origin
			a.InternalName = o.Internal.Counterparty
			if o.Internal.Balance.Valid {
				a.InternalBalance = o.Internal.Balance.Decimal.String()
			}
		}
		if o.External != nil {
			a.ExternalOrigin = o.External.Origin
			a.ExternalName = o.External.Counterparty
			if o.External.Total.Valid {
				a.ExternalBalance = o.External.Total.Decimal.String()
			}
		}
		out = append(out, a)
	}
	return out
}

// ArchivedRun is a run as read back from the archive.
type ArchivedRun struct {
	Summary  RunSummary
	Outcomes []ArchivedOutcome
	Warnings []AmbiguityWarning
}
