// Package report renders a run summary into an xlsx workbook.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/dedupe/merge"
)

const (
	SheetNameSummary = "Summary"
	SheetNameGroups  = "Duplicate Groups"
)

// Run identifies one reconciliation run and the directory its artifacts are
// written to, threaded explicitly instead of living in package state.
type Run struct {
	Id        string
	StartedAt time.Time
	OutputDir string
}

func NewRun(outputDir string) Run {
	return Run{
		Id:        uuid.NewString(),
		StartedAt: time.Now(),
		OutputDir: outputDir,
	}
}

type Generator struct {
	logger *zap.SugaredLogger
}

func NewGenerator(logger *zap.SugaredLogger) *Generator {
	return &Generator{logger: logger}
}

// Generate writes the workbook under the run's output directory and returns
// the file path.
func (g *Generator) Generate(run Run, summary *merge.RunSummary) (string, error) {
	workbook := xlsx.NewFile()

	if err := addSummarySheet(workbook, run, summary); err != nil {
		return "", err
	}
	if err := addGroupsSheet(workbook, summary); err != nil {
		return "", err
	}

	if err := os.MkdirAll(run.OutputDir, 0o755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("duplicate_report_%s_%s.xlsx", summary.PgCompanyId, run.StartedAt.Format("20060102_150405"))
	path := filepath.Join(run.OutputDir, filename)
	if err := workbook.Save(path); err != nil {
		return "", err
	}

	g.logger.Infow("report generated", "path", path, "runId", run.Id)
	return path, nil
}

func addSummarySheet(workbook *xlsx.File, run Run, summary *merge.RunSummary) error {
	sh, err := workbook.AddSheet(SheetNameSummary)
	if err != nil {
		return err
	}

	sh.AddRow().AddCell().SetValue("Duplicate Patient Reconciliation")
	sh.AddRow()

	var currentRow *xlsx.Row
	currentRow = sh.AddRow()
	currentRow.AddCell().SetValue("Run Id")
	currentRow.AddCell().SetValue(run.Id)
	currentRow = sh.AddRow()
	currentRow.AddCell().SetValue("Report Generated")
	currentRow.AddCell().SetValue(run.StartedAt.Format(time.RFC3339))
	currentRow = sh.AddRow()
	currentRow.AddCell().SetValue("PG Company")
	currentRow.AddCell().SetValue(summary.PgCompanyId)
	if summary.DryRun {
		sh.AddRow().AddCell().SetValue("DRY RUN - no changes were written")
	}
	sh.AddRow()

	measures := []struct {
		name  string
		value int
	}{
		{"Total Patients", summary.TotalPatients},
		{"Duplicate Groups Found", summary.DuplicateGroupsFound},
		{"Patients Processed", summary.PatientsProcessed},
		{"Patients Deleted", summary.PatientsDeleted},
		{"Orders Moved", summary.OrdersMoved},
		{"CC Notes Moved", summary.NotesMoved},
		{"Errors", len(summary.Errors)},
	}

	currentRow = sh.AddRow()
	currentRow.AddCell().SetValue("Measures ---")
	currentRow.AddCell().SetValue("Count ---")
	for _, measure := range measures {
		currentRow = sh.AddRow()
		currentRow.AddCell().SetValue(measure.name)
		currentRow.AddCell().SetValue(measure.value)
	}
	sh.AddRow()

	if len(summary.Errors) > 0 {
		sh.AddRow().AddCell().SetValue(fmt.Sprintf("Errors (%v)", len(summary.Errors)))
		for _, message := range summary.Errors {
			sh.AddRow().AddCell().SetValue(message)
		}
	}

	return nil
}

func addGroupsSheet(workbook *xlsx.File, summary *merge.RunSummary) error {
	sh, err := workbook.AddSheet(SheetNameGroups)
	if err != nil {
		return err
	}

	currentRow := sh.AddRow()
	currentRow.AddCell().SetValue("Group ---")
	currentRow.AddCell().SetValue("Primary Patient ---")
	currentRow.AddCell().SetValue("Deleted Patients ---")
	currentRow.AddCell().SetValue("Orders Moved ---")
	currentRow.AddCell().SetValue("CC Notes Moved ---")
	currentRow.AddCell().SetValue("Errors ---")

	for _, group := range summary.Groups {
		currentRow = sh.AddRow()
		currentRow.AddCell().SetValue(group.GroupNumber)
		currentRow.AddCell().SetValue(fmt.Sprintf("%s (%s)", group.PrimaryName, group.PrimaryId))
		currentRow.AddCell().SetValue(strings.Join(group.DeletedPatientIds, ", "))
		currentRow.AddCell().SetValue(group.MovedOrders)
		currentRow.AddCell().SetValue(group.MovedNotes)
		currentRow.AddCell().SetValue(strings.Join(group.Errors, "; "))

		for _, candidate := range group.Candidates {
			currentRow = sh.AddRow()
			currentRow.AddCell().SetValue("")
			currentRow.AddCell().SetValue(fmt.Sprintf("  %s (%s)", candidate.PatientName, candidate.PatientId))
			currentRow.AddCell().SetValue(fmt.Sprintf("score %v", candidate.Score))
			currentRow.AddCell().SetValue(fmt.Sprintf("mrn %s / doc %s", orDash(candidate.CurrentMrn), orDash(candidate.ExtractedMrn)))
			currentRow.AddCell().SetValue(fmt.Sprintf("dob %s / doc %s", orDash(candidate.CurrentDob), orDash(candidate.ExtractedDob)))
		}
	}

	return nil
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
