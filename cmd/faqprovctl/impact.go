package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Run and inspect FAQ impact analysis",
}

var impactAffectedOnly bool

var impactAnalyzeCmd = &cobra.Command{
	Use:   "analyze <change-id>",
	Short: "Analyze the FAQ impact of a detected change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			ChangeID          int64            `json:"changeId"`
			TotalAtRisk       int64            `json:"totalAtRisk"`
			AffectedQuestions int64            `json:"affectedQuestions"`
			AffectedAnswers   int64            `json:"affectedAnswers"`
			Records           []map[string]any `json:"records"`
		}
		if err := client.postJSON(impactAPIBase+"/changes/"+args[0]+":analyze", nil, &result); err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		fmt.Printf("Change %d: %d at risk, %d questions and %d answers affected\n",
			result.ChangeID, result.TotalAtRisk, result.AffectedQuestions, result.AffectedAnswers)
		printImpactTable(result.Records)
		return nil
	},
}

var impactListCmd = &cobra.Command{
	Use:   "list <change-id>",
	Short: "List impact records for a change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		path := impactAPIBase + "/changes/" + args[0] + "/records"
		if impactAffectedOnly {
			path += "?affectedOnly=true"
		}

		var result struct {
			Records []map[string]any `json:"records"`
			Size    int              `json:"size"`
		}
		if err := client.getJSON(path, &result); err != nil {
			return fmt.Errorf("failed to list impact records: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		printImpactTable(result.Records)
		fmt.Printf("Total: %d\n", result.Size)
		return nil
	},
}

var impactGetCmd = &cobra.Command{
	Use:   "get <impact-id>",
	Short: "Get an impact record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		result, err := client.getRaw(impactAPIBase + "/records/" + args[0])
		if err != nil {
			return fmt.Errorf("failed to get impact record: %w", err)
		}
		return printOutput(result)
	},
}

func printImpactTable(records []map[string]any) {
	headers := []string{"ID", "Question", "Answer", "Score", "Level", "Affected", "Reason"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			field(rec, "impact_id"),
			field(rec, "question_id"),
			field(rec, "answer_id"),
			field(rec, "overall_impact_score"),
			field(rec, "impact_level"),
			field(rec, "is_affected"),
			truncate(field(rec, "impact_reason"), 50),
		})
	}
	printTable(headers, rows)
}

func init() {
	impactListCmd.Flags().BoolVar(&impactAffectedOnly, "affected-only", false, "Only show records that crossed the impact threshold")

	impactCmd.AddCommand(impactAnalyzeCmd)
	impactCmd.AddCommand(impactListCmd)
	impactCmd.AddCommand(impactGetCmd)
}
