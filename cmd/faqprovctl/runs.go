package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage change detection runs",
}

type runView struct {
	ID              string `json:"id"`
	SourceName      string `json:"sourceName"`
	Domain          string `json:"domain,omitempty"`
	Service         string `json:"service,omitempty"`
	RequestedBy     string `json:"requestedBy"`
	RequestedAt     string `json:"requestedAt"`
	State           string `json:"state"`
	Message         string `json:"message,omitempty"`
	AttemptCount    int    `json:"attemptCount"`
	LastError       string `json:"lastError,omitempty"`
	ChangesDetected int    `json:"changesDetected,omitempty"`
	FAQsInvalidated int    `json:"faqsInvalidated,omitempty"`
}

var (
	runSource      string
	runDomain      string
	runService     string
	runIdempotency string
	runStateFilter string
)

var runsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Enqueue a new detection run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runSource == "" {
			return fmt.Errorf("--source is required")
		}
		client := newClient()

		body := map[string]any{"sourceName": runSource}
		if runDomain != "" {
			body["domain"] = runDomain
		}
		if runService != "" {
			body["service"] = runService
		}
		if runIdempotency != "" {
			body["idempotencyKey"] = runIdempotency
		}

		var run runView
		if err := client.postJSON(runsAPIBase+"/detections", body, &run); err != nil {
			return fmt.Errorf("failed to create run: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(run)
		}
		fmt.Printf("Run %s enqueued (state: %s)\n", run.ID, run.State)
		return nil
	},
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List detection runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		q := url.Values{}
		if runSource != "" {
			q.Set("sourceName", runSource)
		}
		if runStateFilter != "" {
			q.Set("state", runStateFilter)
		}
		path := runsAPIBase + "/detections"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}

		var result struct {
			Runs          []runView `json:"runs"`
			NextPageToken string    `json:"nextPageToken"`
		}
		if err := client.getJSON(path, &result); err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"ID", "Source", "State", "Requested By", "Requested At", "Attempts", "Changes", "Invalidated"}
		rows := make([][]string, 0, len(result.Runs))
		for _, r := range result.Runs {
			rows = append(rows, []string{
				truncate(r.ID, 12),
				r.SourceName,
				r.State,
				r.RequestedBy,
				r.RequestedAt,
				fmt.Sprintf("%d", r.AttemptCount),
				fmt.Sprintf("%d", r.ChangesDetected),
				fmt.Sprintf("%d", r.FAQsInvalidated),
			})
		}
		printTable(headers, rows)
		if result.NextPageToken != "" {
			fmt.Printf("More results available (page token: %s)\n", result.NextPageToken)
		}
		return nil
	},
}

var runsGetCmd = &cobra.Command{
	Use:   "get <run-id>",
	Short: "Get detection run details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		result, err := client.getRaw(runsAPIBase + "/detections/" + args[0])
		if err != nil {
			return fmt.Errorf("failed to get run: %w", err)
		}
		return printOutput(result)
	},
}

var runsCancelCmd = &cobra.Command{
	Use:   "cancel <run-id>",
	Short: "Cancel a queued detection run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result map[string]any
		if err := client.postJSON(runsAPIBase+"/detections/"+args[0]+":cancel", nil, &result); err != nil {
			return fmt.Errorf("failed to cancel run: %w", err)
		}
		fmt.Printf("Run %s cancelled\n", args[0])
		return nil
	},
}

func init() {
	runsCreateCmd.Flags().StringVar(&runSource, "source", "", "Source document name (required)")
	runsCreateCmd.Flags().StringVar(&runDomain, "domain", "", "Source domain")
	runsCreateCmd.Flags().StringVar(&runService, "service", "", "Source service")
	runsCreateCmd.Flags().StringVar(&runIdempotency, "idempotency-key", "", "Idempotency key to deduplicate retried requests")

	runsListCmd.Flags().StringVar(&runSource, "source", "", "Filter by source document name")
	runsListCmd.Flags().StringVar(&runStateFilter, "state", "", "Filter by run state (queued, running, completed, failed, cancelled)")

	runsCmd.AddCommand(runsCreateCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsGetCmd)
	runsCmd.AddCommand(runsCancelCmd)
}
