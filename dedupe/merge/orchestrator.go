package merge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/patients"
	"github.com/doctoralliance/patient-dedupe/rcm"
)

// Orchestrator migrates the dependents of each duplicate onto the retained
// patient, deletes the duplicate, and fires best-effort RCM notifications.
// There is no rollback: a failed step is recorded and its siblings continue.
type Orchestrator struct {
	patients      patients.Service
	notifier      rcm.Notifier
	notifyEnabled bool
	logger        *zap.SugaredLogger
}

func NewOrchestrator(patientsService patients.Service, notifier rcm.Notifier, notifyEnabled bool, logger *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		patients:      patientsService,
		notifier:      notifier,
		notifyEnabled: notifyEnabled,
		logger:        logger,
	}
}

// Merge processes the group's ToDelete members independently and in order.
// Merging a group without members to delete is a no-op.
func (o *Orchestrator) Merge(ctx context.Context, group ResolvedGroup) Result {
	result := Result{
		PrimaryId:         group.Primary.Id,
		DeletedPatientIds: []string{},
	}

	for _, duplicate := range group.ToDelete {
		o.mergeOne(ctx, group.Primary, duplicate, &result)
	}

	o.logger.Infow("merge complete",
		"primaryId", group.Primary.Id,
		"deleted", len(result.DeletedPatientIds),
		"ordersMoved", result.MovedOrderCount,
		"notesMoved", result.MovedNoteCount,
		"errors", len(result.Errors),
	)
	return result
}

func (o *Orchestrator) mergeOne(ctx context.Context, primary, duplicate patients.Patient, result *Result) {
	orders := o.listOrders(ctx, duplicate.Id)
	for _, order := range orders {
		if order.IsNote() {
			// The orders endpoint returns note entries too; they move with
			// the dedicated notes fetch below.
			continue
		}
		if err := o.patients.ReassignOrder(ctx, order, primary.Id); err != nil {
			o.logger.Errorw("failed to move order", "orderId", order.Id, "patientId", duplicate.Id, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("failed to move order %s", order.Id))
			continue
		}
		result.MovedOrderCount++
		o.logger.Infow("moved order", "orderId", order.Id, "from", duplicate.Id, "to", primary.Id)
	}

	notes := o.listNotes(ctx, duplicate.Id)
	for _, note := range notes {
		if err := o.patients.ReassignNote(ctx, note, primary.Id); err != nil {
			o.logger.Errorw("failed to move cc note", "noteId", note.Id, "patientId", duplicate.Id, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("failed to move cc note %s", note.Id))
			continue
		}
		result.MovedNoteCount++
		o.logger.Infow("moved cc note", "noteId", note.Id, "from", duplicate.Id, "to", primary.Id)
	}

	// Deletion is attempted exactly once, regardless of re-ownership failures
	// above. Everything already moved stays moved either way.
	if err := o.patients.Delete(ctx, duplicate.Id); err != nil {
		o.logger.Errorw("failed to delete duplicate patient", "patientId", duplicate.Id, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to delete patient %s", duplicate.Id))
		return
	}
	result.DeletedPatientIds = append(result.DeletedPatientIds, duplicate.Id)
	o.logger.Infow("deleted duplicate patient", "patientId", duplicate.Id, "primaryId", primary.Id)

	o.notify(ctx, duplicate.Id, primary.Id, result)
}

func (o *Orchestrator) notify(ctx context.Context, removedId, keptId string, result *Result) {
	if !o.notifyEnabled {
		o.logger.Infow("rcm notifications disabled")
		return
	}
	if err := o.notifier.Notify(ctx, removedId, true); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("rcm notification failed for removed patient %s: %v", removedId, err))
	}
	if err := o.notifier.Notify(ctx, keptId, false); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("rcm notification failed for kept patient %s: %v", keptId, err))
	}
}

func (o *Orchestrator) listOrders(ctx context.Context, patientId string) []patients.Dependent {
	orders, err := o.patients.ListOrders(ctx, patientId)
	if err != nil {
		// Tolerated: an unreachable orders list moves nothing.
		o.logger.Errorw("failed to list orders", "patientId", patientId, "error", err)
		return nil
	}
	return orders
}

func (o *Orchestrator) listNotes(ctx context.Context, patientId string) []patients.Dependent {
	notes, err := o.patients.ListNotes(ctx, patientId)
	if err != nil {
		o.logger.Errorw("failed to list cc notes", "patientId", patientId, "error", err)
		return nil
	}
	return notes
}
