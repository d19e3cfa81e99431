package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doctoralliance/patient-dedupe/match"
)

var matchParams = struct {
	Threshold int
	Names     []string
}{}

var matchCmd = &cobra.Command{
	Use:   "match {first1} {last1} {first2} {last2}",
	Args:  cobra.ExactArgs(4),
	Short: "Compare two patient names",
	Long:  "The match command compares two first/last name pairs and prints the match type and similarity scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		matchParams.Names = args
		return Run(matchNames)
	},
}

func init() {
	matchCmd.Flags().IntVarP(&matchParams.Threshold, "threshold", "t", match.DefaultThreshold, "Similarity threshold used for fuzzy rules")

	rootCmd.AddCommand(matchCmd)
}

func matchNames() error {
	matcher := match.NewMatcher(matchParams.Threshold)
	result := matcher.Compare(matchParams.Names[0], matchParams.Names[1], matchParams.Names[2], matchParams.Names[3])

	verdict := "no match"
	if result.Match {
		verdict = "match"
	}
	fmt.Printf("%s (%s, score %v)\n", verdict, result.Type, result.Score)
	fmt.Printf("first/first %v, last/last %v, first/last %v, last/first %v\n",
		result.FirstToFirst, result.LastToLast, result.FirstToLast, result.LastToFirst)
	return nil
}
