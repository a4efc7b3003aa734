package domain

import "github.com/shopspring/decimal"

// Role is the precedence of an internal source.
type Role int

const (
	// RolePrimary marks the internal source that wins on overlap.
	RolePrimary Role = iota
	// RoleSecondary marks the internal source that is superseded on overlap.
	RoleSecondary
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// keySeparator joins the parts of full and partial keys.
const keySeparator = "_"

// InternalRecord is one billing line from an internal source.
// Raw identifiers are kept for display; normalized forms are derived at
// adaptation time and never change afterwards.
type InternalRecord struct {
	// Row is the 1-based data row in the source table.
	Row int

	// Origin is the source name tag (e.g. the policy-management system).
	Origin string

	// Role is the precedence of the source the record came from.
	Role Role

	// RawPolicy and RawReceipt are the identifiers as they appear in the file.
	RawPolicy  string
	RawReceipt string

	// Policy and Receipt are the normalized identifiers.
	Policy  string
	Receipt string

	// Date is the normalized start date.
	Date Date

	// Counterparty is the policy holder name as displayed by the source.
	Counterparty string

	// Balance is the outstanding amount. Invalid when missing or unparseable.
	Balance decimal.NullDecimal

	// MissingReceipt is set for primary-source lines without a receipt.
	// Such records have no full key and only take part in partial matching.
	MissingReceipt bool
}

// FullKey returns policy_receipt_date and whether it is defined.
func (r *InternalRecord) FullKey() (string, bool) {
	if r.MissingReceipt {
		return "", false
	}
	return fullKey(r.Policy, r.Receipt, r.Date), true
}

// PartialKey returns policy_date. It is always defined.
func (r *InternalRecord) PartialKey() string {
	return partialKey(r.Policy, r.Date)
}

// DisplayBalance returns the balance, or zero when it is missing.
func (r *InternalRecord) DisplayBalance() decimal.Decimal {
	return DisplayAmount(r.Balance)
}

// Aging holds the overdue buckets reported by the insurer.
type Aging struct {
	Days1To30   decimal.NullDecimal
	Days31To90  decimal.NullDecimal
	Days91To180 decimal.NullDecimal
	Over180     decimal.NullDecimal
	Overdue     decimal.NullDecimal
	NotDue      decimal.NullDecimal
}

// ExternalRecord is one portfolio line from the insurer report.
// The insurer always carries a receipt, so both keys are always defined.
type ExternalRecord struct {
	// Row is the 1-based data row in the source table.
	Row int

	// Origin is the portfolio tag (e.g. individual or group portfolio).
	Origin string

	RawPolicy  string
	RawReceipt string

	Policy  string
	Receipt string

	Date Date

	Counterparty string

	// Aging holds the per-period balances.
	Aging Aging

	// Total is the total outstanding portfolio amount.
	Total decimal.NullDecimal
}

// FullKey returns policy_receipt_date.
func (r *ExternalRecord) FullKey() string {
	return fullKey(r.Policy, r.Receipt, r.Date)
}

// PartialKey returns policy_date.
func (r *ExternalRecord) PartialKey() string {
	return partialKey(r.Policy, r.Date)
}

// DisplayTotal returns the total, or zero when it is missing.
func (r *ExternalRecord) DisplayTotal() decimal.Decimal {
	return DisplayAmount(r.Total)
}

// DisplayAmount returns n, or zero when n is invalid. The zero is for
// display only and must never be used for comparison.
func DisplayAmount(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}

func fullKey(policy, receipt string, date Date) string {
	return policy + keySeparator + receipt + keySeparator + date.String()
}

func partialKey(policy string, date Date) string {
	return policy + keySeparator + date.String()
}

// CombinedSet is the union of both internal sources after primary-source
// precedence. No secondary record shares a partial key with a primary record.
// Several records may share a partial key otherwise.
type CombinedSet struct {
	// Records holds the primary records in row order followed by the
	// surviving secondary records in row order.
	Records []InternalRecord

	// Discarded holds the secondary records superseded by a primary record.
	Discarded []InternalRecord
}

// Len returns the number of records in the set.
func (s *CombinedSet) Len() int {
	return len(s.Records)
}

// ExternalSet is the insurer portfolio, possibly built from several tables.
type ExternalSet struct {
	Records []ExternalRecord
}

// Len returns the number of records in the set.
func (s *ExternalSet) Len() int {
	return len(s.Records)
}
