// Package merge resolves a duplicate group to a single retained patient and
// migrates the dependents of the rest onto it.
package merge

import (
	"github.com/doctoralliance/patient-dedupe/patients"
)

// ResolvedGroup is a duplicate group with its retained record decided.
// Primary is never part of ToDelete; together they are the full group.
type ResolvedGroup struct {
	Primary  patients.Patient
	ToDelete []patients.Patient

	// Conflict reports whether document verification ran for this group.
	Conflict bool
	// Candidates holds the verification detail per member, in ranking order.
	// Empty when the group had no MRN/DOB conflict.
	Candidates []Candidate
}

// Candidate is one member's document verification outcome.
type Candidate struct {
	PatientId    string
	PatientName  string
	CurrentMrn   string
	CurrentDob   string
	ExtractedMrn string
	ExtractedDob string
	Score        int
}

// Result accumulates the effects of merging one resolved group. It is
// produced exactly once per group and never retried.
type Result struct {
	PrimaryId         string
	DeletedPatientIds []string
	MovedOrderCount   int
	MovedNoteCount    int
	Errors            []string
}
