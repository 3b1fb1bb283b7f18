package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Read the append-only audit trail",
}

var (
	auditAction string
	auditLimit  int
)

func printAuditTable(entries []map[string]any, size int) {
	headers := []string{"ID", "Table", "Record", "Action", "By", "At"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			truncate(field(e, "audit_id"), 12),
			field(e, "table_name"),
			field(e, "record_id"),
			field(e, "action"),
			field(e, "changed_by"),
			field(e, "changed_at"),
		})
	}
	printTable(headers, rows)
	fmt.Printf("Total: %d\n", size)
}

func runAuditList(path string) error {
	client := newClient()

	var result struct {
		Entries []map[string]any `json:"entries"`
		Size    int              `json:"size"`
	}
	if err := client.getJSON(path, &result); err != nil {
		return fmt.Errorf("failed to list audit entries: %w", err)
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(result)
	}
	printAuditTable(result.Entries, result.Size)
	return nil
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if auditAction != "" {
			q.Set("action", auditAction)
		}
		if auditLimit > 0 {
			q.Set("limit", fmt.Sprintf("%d", auditLimit))
		}
		path := auditAPIBase + "/entries"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
		return runAuditList(path)
	},
}

var auditGetCmd = &cobra.Command{
	Use:   "get <audit-id>",
	Short: "Get a single audit entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		result, err := client.getRaw(auditAPIBase + "/entries/" + args[0])
		if err != nil {
			return fmt.Errorf("failed to get audit entry: %w", err)
		}
		return printOutput(result)
	},
}

var auditRecordCmd = &cobra.Command{
	Use:   "record <table> <record-id>",
	Short: "List the audit history of a single record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuditList(auditAPIBase + "/records/" + args[0] + "/" + args[1])
	},
}

var auditRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "List audit entries written during a detection run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuditList(auditAPIBase + "/runs/" + args[0])
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditAction, "action", "", "Filter by action (INSERT, UPDATE, DELETE, INVALIDATE, RESTORE, SELECTIVE_INVALIDATE)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 0, "Maximum number of results")

	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditGetCmd)
	auditCmd.AddCommand(auditRecordCmd)
	auditCmd.AddCommand(auditRunCmd)
}
