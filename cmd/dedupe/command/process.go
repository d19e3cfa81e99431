package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/config"
	"github.com/doctoralliance/patient-dedupe/dedupe/merge"
	"github.com/doctoralliance/patient-dedupe/report"
)

var processParams = struct {
	PgCompanyId string
	DryRun      bool
	NoReport    bool
}{}

var processCmd = &cobra.Command{
	Use:   "process {pgCompanyId}",
	Args:  cobra.ExactArgs(1),
	Short: "Detect and merge duplicate patients of a PG company",
	Long:  "The process command groups duplicate patients of a PG company, resolves conflicting groups and merges each group into its primary record",
	RunE: func(cmd *cobra.Command, args []string) error {
		processParams.PgCompanyId = args[0]
		return Run(processPatients)
	},
}

func init() {
	processCmd.Flags().BoolVar(&processParams.DryRun, "dry-run", false, "Only prints out the merges that would be executed")
	processCmd.Flags().BoolVar(&processParams.NoReport, "no-report", false, "Skip writing the xlsx report")

	rootCmd.AddCommand(processCmd)
}

func processPatients(runner *merge.Runner, generator *report.Generator, cfg *config.Config, logger *zap.SugaredLogger) error {
	ctx := context.Background()

	var summary *merge.RunSummary
	if processParams.DryRun {
		summary = runner.DryRun(ctx, processParams.PgCompanyId)
	} else {
		summary = runner.Process(ctx, processParams.PgCompanyId)
	}

	printSummary(summary)

	if !processParams.NoReport {
		run := report.NewRun(cfg.OutputDir)
		path, err := generator.Generate(run, summary)
		if err != nil {
			return fmt.Errorf("unable to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", path)
	}

	if len(summary.Errors) > 0 {
		return fmt.Errorf("run completed with %v errors", len(summary.Errors))
	}
	return nil
}

func printSummary(summary *merge.RunSummary) {
	mode := "merge"
	if summary.DryRun {
		mode = "dry run"
	}
	fmt.Printf("PG company %s (%s)\n", summary.PgCompanyId, mode)
	fmt.Printf("Patients fetched: %v\n", summary.TotalPatients)
	fmt.Printf("Duplicate groups: %v\n", summary.DuplicateGroupsFound)
	fmt.Printf("Patients processed: %v\n", summary.PatientsProcessed)
	fmt.Printf("Patients deleted: %v\n", summary.PatientsDeleted)
	fmt.Printf("Orders moved: %v, notes moved: %v\n", summary.OrdersMoved, summary.NotesMoved)

	for _, group := range summary.Groups {
		deleted := "(none)"
		if len(group.DeletedPatientIds) > 0 {
			deleted = strings.Join(group.DeletedPatientIds, ", ")
		}
		fmt.Printf("Group %v - primary %s [%s] - removed [%s]\n", group.GroupNumber, group.PrimaryName, group.PrimaryId, deleted)
	}

	if len(summary.Errors) > 0 {
		fmt.Printf("%v errors:\n", len(summary.Errors))
		for _, e := range summary.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
}
