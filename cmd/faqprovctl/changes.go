package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Inspect detected content changes and their diffs",
}

var changesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List changes detected by a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")
		if runID == "" {
			return fmt.Errorf("--run is required")
		}
		client := newClient()

		var result struct {
			Changes []map[string]any `json:"changes"`
			Size    int              `json:"size"`
		}
		if err := client.getJSON(changesAPIBase+"/changes?runId="+runID, &result); err != nil {
			return fmt.Errorf("failed to list changes: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"ID", "Type", "Checksum", "Previous", "Regen", "Detected"}
		rows := make([][]string, 0, len(result.Changes))
		for _, c := range result.Changes {
			rows = append(rows, []string{
				field(c, "change_id"),
				field(c, "change_type"),
				truncate(field(c, "content_checksum"), 12),
				truncate(field(c, "previous_checksum"), 12),
				field(c, "requires_faq_regeneration"),
				field(c, "detection_timestamp"),
			})
		}
		printTable(headers, rows)
		fmt.Printf("Total: %d\n", result.Size)
		return nil
	},
}

var changesGetCmd = &cobra.Command{
	Use:   "get <change-id>",
	Short: "Get change details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		result, err := client.getRaw(changesAPIBase + "/changes/" + args[0])
		if err != nil {
			return fmt.Errorf("failed to get change: %w", err)
		}
		return printOutput(result)
	},
}

var changesDiffsCmd = &cobra.Command{
	Use:   "diffs <change-id>",
	Short: "List diffs recorded for a change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Diffs []map[string]any `json:"diffs"`
			Size  int              `json:"size"`
		}
		if err := client.getJSON(changesAPIBase+"/changes/"+args[0]+"/diffs", &result); err != nil {
			return fmt.Errorf("failed to list diffs: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"ID", "Type", "Additions", "Deletions", "Modifications", "Change %", "Computed"}
		rows := make([][]string, 0, len(result.Diffs))
		for _, d := range result.Diffs {
			rows = append(rows, []string{
				field(d, "diff_id"),
				field(d, "diff_type"),
				field(d, "additions_count"),
				field(d, "deletions_count"),
				field(d, "modifications_count"),
				field(d, "change_percentage"),
				field(d, "computed_at"),
			})
		}
		printTable(headers, rows)
		fmt.Printf("Total: %d\n", result.Size)
		return nil
	},
}

func init() {
	changesListCmd.Flags().String("run", "", "Detection run ID (required)")

	changesCmd.AddCommand(changesListCmd)
	changesCmd.AddCommand(changesGetCmd)
	changesCmd.AddCommand(changesDiffsCmd)
}
