// Package verification extracts MRN and DOB candidates from a patient's best
// available reference document so conflicting duplicate groups can be ranked.
package verification

import (
	"strings"

	"github.com/doctoralliance/patient-dedupe/patients"
)

// Keyword lists for picking a reference document out of a patient's orders,
// in priority order. The primary list targets plan-of-care style documents
// (CMS-485 and friends); the fallback list admits anything that may still
// carry patient identifiers.
var (
	primaryKeywords = []string{
		"485",
		"plan",
		"cert",
		"poc",
		"care plan",
		"physician",
		"recert",
		"home health",
		"medical",
		"intake",
		"assessment",
	}

	fallbackKeywords = []string{
		"home",
		"health",
		"patient",
		"evaluation",
		"order",
		"note",
		"communication",
	}
)

// SelectReferenceDocument scans orders in their original order and returns the
// first one whose document name contains a primary keyword, retrying with the
// fallback list when nothing matches. Returns nil when no document qualifies.
func SelectReferenceDocument(orders []patients.Dependent) *patients.Dependent {
	if selected := scanByKeywords(orders, primaryKeywords); selected != nil {
		return selected
	}
	return scanByKeywords(orders, fallbackKeywords)
}

func scanByKeywords(orders []patients.Dependent, keywords []string) *patients.Dependent {
	for i := range orders {
		name := strings.ToLower(orders[i].DocumentName)
		if name == "" {
			continue
		}
		for _, keyword := range keywords {
			if strings.Contains(name, keyword) {
				return &orders[i]
			}
		}
	}
	return nil
}
