package merge

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/dedupe"
	"github.com/doctoralliance/patient-dedupe/patients"
	"github.com/doctoralliance/patient-dedupe/verification"
)

// Verification score weights. Agreement with a populated field outweighs
// filling an empty one.
const (
	scoreFieldConfirmed = 2
	scoreFieldRecovered = 1
)

// Resolver picks the retained record of a duplicate group. Groups whose
// members disagree on MRN or DOB are ranked by document verification;
// everything else falls through to SelectPrimary. Callers must filter out
// groups of size one.
type Resolver struct {
	verifier verification.Verifier
	logger   *zap.SugaredLogger
}

func NewResolver(verifier verification.Verifier, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{verifier: verifier, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, group dedupe.Group) ResolvedGroup {
	mrns := mapset.NewSet[string]()
	dobs := mapset.NewSet[string]()
	for _, member := range group.Members {
		if member.Mrn != "" {
			mrns.Add(member.Mrn)
		}
		if member.BirthDate != "" {
			dobs.Add(member.BirthDate)
		}
	}

	if mrns.Cardinality() <= 1 && dobs.Cardinality() <= 1 {
		primary, toDelete := SelectPrimary(group.Members)
		return ResolvedGroup{Primary: primary, ToDelete: toDelete}
	}

	r.logger.Infow("group has conflicting identifiers, verifying against documents",
		"members", len(group.Members),
		"distinctMrns", mrns.Cardinality(),
		"distinctDobs", dobs.Cardinality(),
	)
	return r.resolveByVerification(ctx, group)
}

func (r *Resolver) resolveByVerification(ctx context.Context, group dedupe.Group) ResolvedGroup {
	candidates := make([]Candidate, 0, len(group.Members))
	ranked := make([]patients.Patient, len(group.Members))
	copy(ranked, group.Members)

	scores := make(map[string]int, len(group.Members))
	for _, member := range group.Members {
		fields, err := r.verifier.VerifyPatient(ctx, member.Id)
		if err != nil {
			// Tolerated: an unverifiable member scores zero.
			r.logger.Warnw("document verification failed", "patientId", member.Id, "error", err)
			fields = verification.Fields{}
		}

		candidate := Candidate{
			PatientId:    member.Id,
			PatientName:  member.FullName(),
			CurrentMrn:   member.Mrn,
			CurrentDob:   member.BirthDate,
			ExtractedMrn: fields.Mrn,
			ExtractedDob: fields.Dob,
			Score:        scoreCandidate(member, fields),
		}
		scores[member.Id] = candidate.Score
		candidates = append(candidates, candidate)

		r.logger.Infow("scored verification candidate",
			"patientId", member.Id,
			"score", candidate.Score,
			"extractedMrn", fields.Mrn != "",
			"extractedDob", fields.Dob != "",
		)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if scores[ranked[i].Id] != scores[ranked[j].Id] {
			return scores[ranked[i].Id] > scores[ranked[j].Id]
		}
		return ranked[i].TotalOrders > ranked[j].TotalOrders
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return scoreByTotalOrders(group.Members, candidates[i].PatientId) > scoreByTotalOrders(group.Members, candidates[j].PatientId)
	})

	r.logger.Infow("selected primary after verification", "patientId", ranked[0].Id, "score", scores[ranked[0].Id])
	return ResolvedGroup{
		Primary:    ranked[0],
		ToDelete:   ranked[1:],
		Conflict:   true,
		Candidates: candidates,
	}
}

func scoreCandidate(member patients.Patient, fields verification.Fields) int {
	score := 0
	if fields.Mrn != "" && member.Mrn != "" && fields.Mrn == member.Mrn {
		score += scoreFieldConfirmed
	}
	if fields.Dob != "" && member.BirthDate != "" && fields.Dob == member.BirthDate {
		score += scoreFieldConfirmed
	}
	if fields.Mrn != "" && member.Mrn == "" {
		score += scoreFieldRecovered
	}
	if fields.Dob != "" && member.BirthDate == "" {
		score += scoreFieldRecovered
	}
	return score
}

func scoreByTotalOrders(members []patients.Patient, patientId string) int {
	for _, member := range members {
		if member.Id == patientId {
			return member.TotalOrders
		}
	}
	return 0
}
