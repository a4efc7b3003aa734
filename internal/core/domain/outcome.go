package domain

// Bucket is one of the five disjoint reconciliation outcomes.
type Bucket int

const (
	// BucketUnpaid: policy, receipt and date agree on both sides, so the
	// insurer still considers the balance open.
	BucketUnpaid Bucket = iota

	// BucketMissingReceipt: a primary-source line without receipt matches
	// the insurer on policy and date. The insurer receipt should be backfilled.
	BucketMissingReceipt

	// BucketUpdateSystem: policy and date agree but the receipt differs.
	BucketUpdateSystem

	// BucketOnlyExternal: the insurer line has no counterpart by either key.
	BucketOnlyExternal

	// BucketOnlyInternal: the internal line has no counterpart by either key.
	BucketOnlyInternal

	bucketCount
)

// Buckets lists every bucket in classification order.
var Buckets = []Bucket{
	BucketUnpaid,
	BucketMissingReceipt,
	BucketUpdateSystem,
	BucketOnlyExternal,
	BucketOnlyInternal,
}

// String returns the stable identifier used in storage and JSON.
func (b Bucket) String() string {
	switch b {
	case BucketUnpaid:
		return "unpaid"
	case BucketMissingReceipt:
		return "missing_receipt"
	case BucketUpdateSystem:
		return "update_system"
	case BucketOnlyExternal:
		return "only_external"
	case BucketOnlyInternal:
		return "only_internal"
	default:
		return "unknown"
	}
}

// Title returns the heading shown in reports.
func (b Bucket) Title() string {
	switch b {
	case BucketUnpaid:
		return "Unpaid - outstanding portfolio"
	case BucketMissingReceipt:
		return "Update receipt in primary source"
	case BucketUpdateSystem:
		return "Update system - receipt differs"
	case BucketOnlyExternal:
		return "Correct policy - only in insurer data"
	case BucketOnlyInternal:
		return "Correct policy - only in internal data"
	default:
		return "Unknown"
	}
}

// ParseBucket returns the bucket for its identifier.
func ParseBucket(s string) (Bucket, error) {
	for _, b := range Buckets {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, ErrInvalidInput
}

// MarshalText encodes the bucket as its identifier.
func (b Bucket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a bucket identifier.
func (b *Bucket) UnmarshalText(text []byte) error {
	parsed, err := ParseBucket(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Outcome is one classified entry. Internal and External are the
// representative records shown to the user (the first by row order when
// several records share a key); either is nil for orphans.
//
// ClaimedInternal and ClaimedExternal index the records of the combined and
// external sets that this outcome accounts for. Across a Result every record
// is claimed exactly once, even when a representative appears in more than
// one outcome for display.
type Outcome struct {
	Bucket Bucket

	Internal *InternalRecord
	External *ExternalRecord

	// NeedsPrimaryBackfill marks an unpaid entry known only to the
	// secondary source: the receipt should also be entered in the primary one.
	NeedsPrimaryBackfill bool

	ClaimedInternal []int
	ClaimedExternal []int
}

// Policy returns the normalized policy number.
func (o *Outcome) Policy() string {
	if o.Internal != nil {
		return o.Internal.Policy
	}
	if o.External != nil {
		return o.External.Policy
	}
	return ""
}

// Date returns the normalized start date.
func (o *Outcome) Date() Date {
	if o.Internal != nil {
		return o.Internal.Date
	}
	if o.External != nil {
		return o.External.Date
	}
	return NoDate
}

// InternalReceipt returns the internal normalized receipt, "" when absent.
func (o *Outcome) InternalReceipt() string {
	if o.Internal == nil || o.Internal.MissingReceipt {
		return ""
	}
	return o.Internal.Receipt
}

// ExternalReceipt returns the insurer normalized receipt, "" when absent.
// For BucketMissingReceipt it is the suggested value to backfill.
func (o *Outcome) ExternalReceipt() string {
	if o.External == nil {
		return ""
	}
	return o.External.Receipt
}

// Result is the partitioned, ordered outcome collection of one run.
type Result struct {
	buckets [bucketCount][]Outcome

	// CombinedSize and ExternalSize are the sizes of the classified sets.
	CombinedSize int
	ExternalSize int
}

// Add appends an outcome to its bucket.
func (r *Result) Add(o Outcome) {
	r.buckets[o.Bucket] = append(r.buckets[o.Bucket], o)
}

// Outcomes returns the outcomes of one bucket in classification order.
func (r *Result) Outcomes(b Bucket) []Outcome {
	if b < 0 || b >= bucketCount {
		return nil
	}
	return r.buckets[b]
}

// All returns every outcome, bucket by bucket.
func (r *Result) All() []Outcome {
	var all []Outcome
	for _, b := range Buckets {
		all = append(all, r.buckets[b]...)
	}
	return all
}

// Counts returns the number of outcomes per bucket.
func (r *Result) Counts() map[Bucket]int {
	counts := make(map[Bucket]int, len(Buckets))
	for _, b := range Buckets {
		counts[b] = len(r.buckets[b])
	}
	return counts
}

// Len returns the total number of outcomes.
func (r *Result) Len() int {
	n := 0
	for _, b := range Buckets {
		n += len(r.buckets[b])
	}
	return n
}

// Membership returns, for every combined and external record, the bucket
// that claimed it. Unclaimed records report -1.
func (r *Result) Membership() (internal []Bucket, external []Bucket) {
	internal = make([]Bucket, r.CombinedSize)
	external = make([]Bucket, r.ExternalSize)
	for i := range internal {
		internal[i] = -1
	}
	for i := range external {
		external[i] = -1
	}
	for _, b := range Buckets {
		for _, o := range r.buckets[b] {
			for _, idx := range o.ClaimedInternal {
				internal[idx] = b
			}
			for _, idx := range o.ClaimedExternal {
				external[idx] = b
			}
		}
	}
	return internal, external
}

// MatchRate returns the percentage of combined records claimed by the
// matching buckets (unpaid, missing receipt, update system).
func (r *Result) MatchRate() float64 {
	if r.CombinedSize == 0 {
		return 0
	}
	matched := 0
	for _, b := range []Bucket{BucketUnpaid, BucketMissingReceipt, BucketUpdateSystem} {
		for _, o := range r.buckets[b] {
			matched += len(o.ClaimedInternal)
		}
	}
	return float64(matched) / float64(r.CombinedSize) * 100
}
