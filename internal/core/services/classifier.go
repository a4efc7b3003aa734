package services

import "github.com/custodia-labs/conciliar/internal/core/domain"

// keyIndex maps a key to record positions in input order.
type keyIndex map[string][]int

func (k keyIndex) add(key string, idx int) {
	k[key] = append(k[key], idx)
}

// classification holds the indexes and claim state of one Classify call.
type classification struct {
	combined *domain.CombinedSet
	external *domain.ExternalSet

	cFull, cPartial keyIndex
	eFull, ePartial keyIndex

	claimedC []bool
	claimedE []bool

	unpaid, missing, update, onlyExternal, onlyInternal []domain.Outcome
}

// Classify partitions the combined internal set and the external set into
// the five reconciliation buckets.
//
// Steps run in a fixed order and each only considers records not claimed
// by an earlier step:
//
//  1. unpaid: full key present on both sides, one outcome per shared key
//  2. missing receipt: receipt-less primary records whose partial key the
//     insurer carries
//  3. update system: remaining internal records sharing a partial key with
//     insurer records of a different receipt, one outcome per pair
//  4. only external: insurer records with no counterpart by either key
//  5. only internal: internal records with no counterpart by either key
//
// Every record of both sets is claimed by exactly one outcome. When several
// records share a key the first by row order is the representative shown;
// the others are still claimed by the same outcome.
//
// Classify returns a StateError when either set is nil. It never modifies
// its inputs.
func Classify(combined *domain.CombinedSet, external *domain.ExternalSet) (*domain.Result, error) {
	if combined == nil {
		return nil, &domain.StateError{Op: "classify", Requires: "combined internal set"}
	}
	if external == nil {
		return nil, &domain.StateError{Op: "classify", Requires: "external set"}
	}

	c := newClassification(combined, external)
	c.matchExact()
	c.matchMissingReceipt()
	c.matchDifferingReceipt()
	c.matchLeftoverExternal()
	c.collectOrphans()

	result := &domain.Result{
		CombinedSize: combined.Len(),
		ExternalSize: external.Len(),
	}
	for _, bucket := range [][]domain.Outcome{c.unpaid, c.missing, c.update, c.onlyExternal, c.onlyInternal} {
		for _, o := range bucket {
			result.Add(o)
		}
	}
	return result, nil
}

func newClassification(combined *domain.CombinedSet, external *domain.ExternalSet) *classification {
	c := &classification{
		combined: combined,
		external: external,
		cFull:    make(keyIndex, combined.Len()),
		cPartial: make(keyIndex, combined.Len()),
		eFull:    make(keyIndex, external.Len()),
		ePartial: make(keyIndex, external.Len()),
		claimedC: make([]bool, combined.Len()),
		claimedE: make([]bool, external.Len()),
	}

	for i := range combined.Records {
		r := &combined.Records[i]
		if full, ok := r.FullKey(); ok {
			c.cFull.add(full, i)
		}
		c.cPartial.add(r.PartialKey(), i)
	}
	for i := range external.Records {
		r := &external.Records[i]
		c.eFull.add(r.FullKey(), i)
		c.ePartial.add(r.PartialKey(), i)
	}
	return c
}

func (c *classification) internal(i int) *domain.InternalRecord {
	return &c.combined.Records[i]
}

func (c *classification) externalRecord(i int) *domain.ExternalRecord {
	return &c.external.Records[i]
}

// claimInternal marks i claimed and reports whether it was free.
func (c *classification) claimInternal(i int) bool {
	if c.claimedC[i] {
		return false
	}
	c.claimedC[i] = true
	return true
}

func (c *classification) claimExternal(i int) bool {
	if c.claimedE[i] {
		return false
	}
	c.claimedE[i] = true
	return true
}

func (c *classification) matchExact() {
	emitted := make(map[string]struct{})
	for i := range c.combined.Records {
		full, ok := c.internal(i).FullKey()
		if !ok {
			continue
		}
		externals, shared := c.eFull[full]
		if !shared {
			continue
		}
		if _, done := emitted[full]; done {
			continue
		}
		emitted[full] = struct{}{}

		internals := c.cFull[full]
		rep := c.internal(internals[0])
		o := domain.Outcome{
			Bucket:               domain.BucketUnpaid,
			Internal:             rep,
			External:             c.externalRecord(externals[0]),
			NeedsPrimaryBackfill: rep.Role == domain.RoleSecondary,
		}
		for _, idx := range internals {
			if c.claimInternal(idx) {
				o.ClaimedInternal = append(o.ClaimedInternal, idx)
			}
		}
		for _, idx := range externals {
			if c.claimExternal(idx) {
				o.ClaimedExternal = append(o.ClaimedExternal, idx)
			}
		}
		c.unpaid = append(c.unpaid, o)
	}
}

func (c *classification) matchMissingReceipt() {
	for i := range c.combined.Records {
		r := c.internal(i)
		if c.claimedC[i] || r.Role != domain.RolePrimary || !r.MissingReceipt {
			continue
		}
		externals, shared := c.ePartial[r.PartialKey()]
		if !shared {
			continue
		}
		c.claimInternal(i)
		c.missing = append(c.missing, domain.Outcome{
			Bucket:          domain.BucketMissingReceipt,
			Internal:        r,
			External:        c.externalRecord(externals[0]),
			ClaimedInternal: []int{i},
		})
	}
}

func (c *classification) matchDifferingReceipt() {
	for i := range c.combined.Records {
		if c.claimedC[i] {
			continue
		}
		r := c.internal(i)
		externals, shared := c.ePartial[r.PartialKey()]
		if !shared {
			continue
		}
		full, _ := r.FullKey()
		for _, idx := range externals {
			e := c.externalRecord(idx)
			if e.FullKey() == full {
				continue
			}
			o := domain.Outcome{
				Bucket:   domain.BucketUpdateSystem,
				Internal: r,
				External: e,
			}
			if c.claimInternal(i) {
				o.ClaimedInternal = []int{i}
			}
			if c.claimExternal(idx) {
				o.ClaimedExternal = []int{idx}
			}
			c.update = append(c.update, o)
		}
	}
}

// matchLeftoverExternal claims insurer records that share a partial key
// with the internal side but were not paired above, for instance a second
// insurer receipt next to an exact match. They are attached to the
// missing-receipt outcome of their partial key when there is one, and
// otherwise reported as a differing receipt against the first internal
// record of that partial key.
func (c *classification) matchLeftoverExternal() {
	missingByKey := make(map[string]int, len(c.missing))
	for i := range c.missing {
		key := c.missing[i].Internal.PartialKey()
		if _, ok := missingByKey[key]; !ok {
			missingByKey[key] = i
		}
	}

	for i := range c.external.Records {
		if c.claimedE[i] {
			continue
		}
		e := c.externalRecord(i)
		internals, shared := c.cPartial[e.PartialKey()]
		if !shared {
			continue
		}
		c.claimExternal(i)
		if m, ok := missingByKey[e.PartialKey()]; ok {
			c.missing[m].ClaimedExternal = append(c.missing[m].ClaimedExternal, i)
			continue
		}
		c.update = append(c.update, domain.Outcome{
			Bucket:          domain.BucketUpdateSystem,
			Internal:        c.internal(internals[0]),
			External:        e,
			ClaimedExternal: []int{i},
		})
	}
}

func (c *classification) collectOrphans() {
	for i := range c.external.Records {
		if c.claimExternal(i) {
			c.onlyExternal = append(c.onlyExternal, domain.Outcome{
				Bucket:          domain.BucketOnlyExternal,
				External:        c.externalRecord(i),
				ClaimedExternal: []int{i},
			})
		}
	}
	for i := range c.combined.Records {
		if c.claimInternal(i) {
			c.onlyInternal = append(c.onlyInternal, domain.Outcome{
				Bucket:          domain.BucketOnlyInternal,
				Internal:        c.internal(i),
				ClaimedInternal: []int{i},
			})
		}
	}
}
