// Package dedupe decides which patient records of a tenant denote the same
// physical person and partitions them into duplicate groups.
package dedupe

import (
	"github.com/doctoralliance/patient-dedupe/match"
	"github.com/doctoralliance/patient-dedupe/patients"
)

const (
	// RuleTraditional requires a name match within the same PG company plus
	// agreement on at least one of DOB, MRN or company id.
	RuleTraditional = "traditional"
	// RuleNameMrn matches on name plus identical non-empty MRNs.
	RuleNameMrn = "name_mrn"
	// RuleNameDob matches on name plus identical non-empty DOBs.
	RuleNameDob = "name_dob"
)

// Classification is the outcome of comparing one pair of patient records.
type Classification struct {
	IsDuplicate bool
	Rule        string
	Name        match.Result

	DobMatch       bool
	MrnMatch       bool
	CompanyMatch   bool
	PgCompanyMatch bool
}

type Classifier struct {
	matcher *match.Matcher
}

func NewClassifier(matcher *match.Matcher) *Classifier {
	return &Classifier{matcher: matcher}
}

func (c *Classifier) Classify(a, b patients.Patient) Classification {
	result := Classification{
		Name:           c.matcher.Compare(a.FirstName, a.LastName, b.FirstName, b.LastName),
		DobMatch:       fieldsAgree(a.BirthDate, b.BirthDate),
		MrnMatch:       fieldsAgree(a.Mrn, b.Mrn),
		CompanyMatch:   fieldsAgree(a.CompanyId, b.CompanyId),
		PgCompanyMatch: fieldsAgree(a.PgCompanyId, b.PgCompanyId),
	}

	if !result.Name.Match {
		return result
	}

	switch {
	case result.PgCompanyMatch && (result.DobMatch || result.MrnMatch || result.CompanyMatch):
		result.IsDuplicate = true
		result.Rule = RuleTraditional
	case result.MrnMatch:
		result.IsDuplicate = true
		result.Rule = RuleNameMrn
	case result.DobMatch:
		result.IsDuplicate = true
		result.Rule = RuleNameDob
	}

	return result
}

// fieldsAgree requires both values to be present. An absent value on either
// side never counts as a match, so two empty MRNs do not agree.
func fieldsAgree(a, b string) bool {
	return a != "" && b != "" && a == b
}
