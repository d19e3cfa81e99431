package merge

import (
	"sort"

	"github.com/doctoralliance/patient-dedupe/patients"
)

// createdOnSentinel sorts records without a creation date after every dated
// record.
const createdOnSentinel = "9999-12-31"

// SelectPrimary ranks a conflict-free group: most orders first, then data
// completeness, then earliest creation date. The head is retained.
func SelectPrimary(members []patients.Patient) (patients.Patient, []patients.Patient) {
	if len(members) <= 1 {
		return members[0], nil
	}

	ranked := make([]patients.Patient, len(members))
	copy(ranked, members)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.TotalOrders != b.TotalOrders {
			return a.TotalOrders > b.TotalOrders
		}
		if a.HasDataCompleteness != b.HasDataCompleteness {
			return a.HasDataCompleteness
		}
		return createdOnOrSentinel(a) < createdOnOrSentinel(b)
	})

	return ranked[0], ranked[1:]
}

func createdOnOrSentinel(p patients.Patient) string {
	if p.CreatedOn == "" {
		return createdOnSentinel
	}
	return p.CreatedOn
}
