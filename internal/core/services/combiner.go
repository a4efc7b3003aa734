package services

import "github.com/custodia-labs/conciliar/internal/core/domain"

// Combine merges the primary and secondary internal records into one set.
//
// Every secondary record whose partial key is also carried by a primary
// record is discarded: the primary source is taken to represent that policy
// and date more precisely. This happens on policy and date alone, so a
// secondary record with a different receipt is dropped rather than merged;
// dropped records are returned in CombinedSet.Discarded.
//
// A nil slice means the source was not supplied. A StateError is returned
// when neither source is supplied. Input slices are not modified.
func Combine(primary, secondary []domain.InternalRecord) (*domain.CombinedSet, error) {
	if primary == nil && secondary == nil {
		return nil, &domain.StateError{Op: "combine", Requires: "at least one internal source"}
	}

	primaryKeys := make(map[string]struct{}, len(primary))
	for i := range primary {
		primaryKeys[primary[i].PartialKey()] = struct{}{}
	}

	set := &domain.CombinedSet{
		Records: make([]domain.InternalRecord, 0, len(primary)+len(secondary)),
	}
	set.Records = append(set.Records, primary...)

	for i := range secondary {
		if _, superseded := primaryKeys[secondary[i].PartialKey()]; superseded {
			set.Discarded = append(set.Discarded, secondary[i])
			continue
		}
		set.Records = append(set.Records, secondary[i])
	}

	return set, nil
}
