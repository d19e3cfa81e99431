package merge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/dedupe"
	"github.com/doctoralliance/patient-dedupe/patients"
)

// RunSummary is the per-tenant outcome. It is always produced, even when
// individual operations failed; failures are enumerated, not thrown.
type RunSummary struct {
	PgCompanyId          string
	DryRun               bool
	TotalPatients        int
	DuplicateGroupsFound int
	PatientsProcessed    int
	PatientsDeleted      int
	OrdersMoved          int
	NotesMoved           int
	Errors               []string
	Groups               []GroupDetail
}

// GroupDetail is the per-group slice of the summary, consumed by reporting.
type GroupDetail struct {
	GroupNumber       int
	PrimaryId         string
	PrimaryName       string
	DeletedPatientIds []string
	MovedOrders       int
	MovedNotes        int
	Candidates        []Candidate
	Errors            []string
}

// Runner drives one tenant end to end: fetch, group, resolve, merge,
// aggregate. Groups are processed sequentially; a failing group never stops
// its siblings.
type Runner struct {
	patients     patients.Service
	grouper      *dedupe.Grouper
	resolver     *Resolver
	orchestrator *Orchestrator
	logger       *zap.SugaredLogger
}

func NewRunner(patientsService patients.Service, grouper *dedupe.Grouper, resolver *Resolver, orchestrator *Orchestrator, logger *zap.SugaredLogger) *Runner {
	return &Runner{
		patients:     patientsService,
		grouper:      grouper,
		resolver:     resolver,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func (r *Runner) Process(ctx context.Context, pgCompanyId string) *RunSummary {
	return r.run(ctx, pgCompanyId, false)
}

// DryRun walks grouping and conflict resolution and counts the dependents
// that would move, without writing to the store.
func (r *Runner) DryRun(ctx context.Context, pgCompanyId string) *RunSummary {
	return r.run(ctx, pgCompanyId, true)
}

func (r *Runner) run(ctx context.Context, pgCompanyId string, dryRun bool) *RunSummary {
	summary := &RunSummary{
		PgCompanyId: pgCompanyId,
		DryRun:      dryRun,
		Errors:      []string{},
	}
	r.logger.Infow("starting duplicate processing", "pgCompanyId", pgCompanyId, "dryRun", dryRun)

	records, err := r.patients.ListByPGCompany(ctx, pgCompanyId)
	if err != nil {
		r.logger.Errorw("failed to fetch patients", "pgCompanyId", pgCompanyId, "error", err)
		summary.Errors = append(summary.Errors, fmt.Sprintf("failed to fetch patients: %v", err))
		return summary
	}
	summary.TotalPatients = len(records)
	if len(records) == 0 {
		r.logger.Warnw("no patients found", "pgCompanyId", pgCompanyId)
		return summary
	}

	groups, err := r.grouper.Group(records)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("failed to group duplicates: %v", err))
		return summary
	}
	summary.DuplicateGroupsFound = len(groups)

	for i, group := range groups {
		r.logger.Infow("processing duplicate group", "group", i+1, "of", len(groups), "members", len(group.Members))
		if err := r.processGroup(ctx, i+1, group, summary, dryRun); err != nil {
			r.logger.Errorw("error processing duplicate group", "group", i+1, "error", err)
			summary.Errors = append(summary.Errors, fmt.Sprintf("error processing group %d: %v", i+1, err))
		}
	}

	r.logger.Infow("duplicate processing completed",
		"pgCompanyId", pgCompanyId,
		"groups", summary.DuplicateGroupsFound,
		"patientsDeleted", summary.PatientsDeleted,
		"ordersMoved", summary.OrdersMoved,
		"notesMoved", summary.NotesMoved,
	)
	return summary
}

func (r *Runner) processGroup(ctx context.Context, number int, group dedupe.Group, summary *RunSummary, dryRun bool) (err error) {
	// A panicking group must not take down the remaining groups.
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()

	resolved := r.resolver.Resolve(ctx, group)
	if len(resolved.ToDelete) == 0 {
		return nil
	}

	var result Result
	if dryRun {
		result = r.simulateMerge(ctx, resolved)
	} else {
		result = r.orchestrator.Merge(ctx, resolved)
	}

	summary.PatientsProcessed += len(group.Members)
	summary.PatientsDeleted += len(result.DeletedPatientIds)
	summary.OrdersMoved += result.MovedOrderCount
	summary.NotesMoved += result.MovedNoteCount
	summary.Errors = append(summary.Errors, result.Errors...)
	summary.Groups = append(summary.Groups, GroupDetail{
		GroupNumber:       number,
		PrimaryId:         resolved.Primary.Id,
		PrimaryName:       resolved.Primary.FullName(),
		DeletedPatientIds: result.DeletedPatientIds,
		MovedOrders:       result.MovedOrderCount,
		MovedNotes:        result.MovedNoteCount,
		Candidates:        resolved.Candidates,
		Errors:            result.Errors,
	})
	return nil
}

// simulateMerge only counts the dependents that would move.
func (r *Runner) simulateMerge(ctx context.Context, group ResolvedGroup) Result {
	result := Result{
		PrimaryId:         group.Primary.Id,
		DeletedPatientIds: []string{},
	}
	for _, duplicate := range group.ToDelete {
		// The duplicate would be deleted; count it so the dry-run summary
		// mirrors a real run.
		result.DeletedPatientIds = append(result.DeletedPatientIds, duplicate.Id)

		orders, err := r.patients.ListOrders(ctx, duplicate.Id)
		if err != nil {
			r.logger.Errorw("failed to list orders", "patientId", duplicate.Id, "error", err)
		}
		for _, order := range orders {
			if !order.IsNote() {
				result.MovedOrderCount++
			}
		}

		notes, err := r.patients.ListNotes(ctx, duplicate.Id)
		if err != nil {
			r.logger.Errorw("failed to list cc notes", "patientId", duplicate.Id, "error", err)
		}
		result.MovedNoteCount += len(notes)
	}
	return result
}
