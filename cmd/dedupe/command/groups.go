package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doctoralliance/patient-dedupe/dedupe"
	"github.com/doctoralliance/patient-dedupe/dedupe/merge"
	"github.com/doctoralliance/patient-dedupe/patients"
)

var groupsParams = struct {
	PgCompanyId string
	Resolve     bool
}{}

var groupsCmd = &cobra.Command{
	Use:   "groups {pgCompanyId}",
	Args:  cobra.ExactArgs(1),
	Short: "List duplicate patient groups of a PG company",
	Long:  "The groups command lists the duplicate groups that would be merged, without modifying any records",
	RunE: func(cmd *cobra.Command, args []string) error {
		groupsParams.PgCompanyId = args[0]
		return Run(listGroups)
	},
}

func init() {
	groupsCmd.Flags().BoolVar(&groupsParams.Resolve, "resolve", false, "Also resolve conflicting groups and print the selected primary")

	rootCmd.AddCommand(groupsCmd)
}

func listGroups(patientsService patients.Service, grouper *dedupe.Grouper, resolver *merge.Resolver) error {
	ctx := context.Background()

	records, err := patientsService.ListByPGCompany(ctx, groupsParams.PgCompanyId)
	if err != nil {
		return fmt.Errorf("unable to fetch patients: %w", err)
	}

	groups, err := grouper.Group(records)
	if err != nil {
		return err
	}

	for i, group := range groups {
		fmt.Printf("Group %v:\n", i+1)
		for _, member := range group.Members {
			fmt.Printf("  %s [%s] - MRN %s - DOB %s - %v orders\n",
				member.FullName(), member.Id, orEmpty(member.Mrn), orEmpty(member.BirthDate), member.TotalOrders)
		}

		if groupsParams.Resolve {
			resolved := resolver.Resolve(ctx, group)
			fmt.Printf("  primary: %s [%s]", resolved.Primary.FullName(), resolved.Primary.Id)
			if resolved.Conflict {
				fmt.Printf(" (resolved by document verification)")
			}
			fmt.Println()
		}
	}

	fmt.Printf("Found %v duplicate groups among %v patients\n", len(groups), len(records))
	return nil
}

func orEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}
