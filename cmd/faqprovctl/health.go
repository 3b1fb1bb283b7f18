package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health and readiness",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var healthResp map[string]any
		if err := client.getJSON("/healthz", &healthResp); err != nil {
			return fmt.Errorf("server unreachable: %w", err)
		}

		var readyResp map[string]any
		if err := client.getJSON("/readyz", &readyResp); err != nil {
			// Readiness failure is not fatal; the server might still be starting.
			readyResp = map[string]any{"status": "unknown", "error": err.Error()}
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(map[string]any{
				"health":    healthResp,
				"readiness": readyResp,
			})
		}

		printTable([]string{"Check", "Status"}, [][]string{
			{"Liveness", field(healthResp, "status")},
			{"Readiness", field(readyResp, "status")},
		})
		return nil
	},
}
