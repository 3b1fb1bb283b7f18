package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var checksumsCmd = &cobra.Command{
	Use:   "checksums",
	Short: "Manage registered content checksums",
}

var (
	checksumFileName string
	checksumSection  string
	checksumTitle    string
	checksumURL      string
	checksumDomain   string
	checksumService  string
	checksumPage     int64
	checksumStatus   string
	checksumLimit    int
	statusReason     string
)

var checksumsRegisterCmd = &cobra.Command{
	Use:   "register <checksum>",
	Short: "Register a content checksum with its source location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]any{"checksum": args[0]}
		if checksumFileName != "" {
			body["fileName"] = checksumFileName
		}
		if cmd.Flags().Changed("page") {
			body["pageNumber"] = checksumPage
		}
		if checksumSection != "" {
			body["sectionName"] = checksumSection
		}
		if checksumTitle != "" {
			body["title"] = checksumTitle
		}
		if checksumURL != "" {
			body["url"] = checksumURL
		}
		if checksumDomain != "" {
			body["domain"] = checksumDomain
		}
		if checksumService != "" {
			body["service"] = checksumService
		}

		var result map[string]any
		if err := client.postJSON(contentAPIBase+"/checksums", body, &result); err != nil {
			return fmt.Errorf("failed to register checksum: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Checksum %s registered (status: %s)\n", truncate(args[0], 16), field(result, "status"))
		return nil
	},
}

var checksumsGetCmd = &cobra.Command{
	Use:   "get <checksum>",
	Short: "Get a registered checksum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		result, err := client.getRaw(contentAPIBase + "/checksums/" + args[0])
		if err != nil {
			return fmt.Errorf("failed to get checksum: %w", err)
		}
		return printOutput(result)
	},
}

var checksumsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered checksums",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		q := url.Values{}
		if checksumStatus != "" {
			q.Set("status", checksumStatus)
		}
		if checksumLimit > 0 {
			q.Set("limit", fmt.Sprintf("%d", checksumLimit))
		}
		path := contentAPIBase + "/checksums"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}

		var result struct {
			Checksums []map[string]any `json:"checksums"`
			Size      int              `json:"size"`
		}
		if err := client.getJSON(path, &result); err != nil {
			return fmt.Errorf("failed to list checksums: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"Checksum", "File", "Section", "Status", "First Seen"}
		rows := make([][]string, 0, len(result.Checksums))
		for _, c := range result.Checksums {
			rows = append(rows, []string{
				truncate(field(c, "content_checksum"), 16),
				field(c, "file_name"),
				field(c, "section_name"),
				field(c, "status"),
				field(c, "created_at"),
			})
		}
		printTable(headers, rows)
		fmt.Printf("Total: %d\n", result.Size)
		return nil
	},
}

var checksumsSetStatusCmd = &cobra.Command{
	Use:   "set-status <checksum> <status>",
	Short: "Set a checksum's lifecycle status (active, deleted, superseded)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result map[string]any
		body := map[string]any{"status": args[1]}
		if err := client.postJSON(contentAPIBase+"/checksums/"+args[0]+":setStatus", body, &result); err != nil {
			return fmt.Errorf("failed to set status: %w", err)
		}
		fmt.Printf("Checksum %s status set to %s\n", truncate(args[0], 16), args[1])
		return nil
	},
}

func init() {
	checksumsRegisterCmd.Flags().StringVar(&checksumFileName, "file", "", "Source file name")
	checksumsRegisterCmd.Flags().Int64Var(&checksumPage, "page", 0, "Page number within the source file")
	checksumsRegisterCmd.Flags().StringVar(&checksumSection, "section", "", "Section name within the source file")
	checksumsRegisterCmd.Flags().StringVar(&checksumTitle, "title", "", "Content title")
	checksumsRegisterCmd.Flags().StringVar(&checksumURL, "url", "", "Source URL")
	checksumsRegisterCmd.Flags().StringVar(&checksumDomain, "domain", "", "Source domain")
	checksumsRegisterCmd.Flags().StringVar(&checksumService, "service", "", "Source service")

	checksumsListCmd.Flags().StringVar(&checksumStatus, "status", "", "Filter by status (default: active)")
	checksumsListCmd.Flags().IntVar(&checksumLimit, "limit", 0, "Maximum number of results")

	checksumsCmd.AddCommand(checksumsRegisterCmd)
	checksumsCmd.AddCommand(checksumsGetCmd)
	checksumsCmd.AddCommand(checksumsListCmd)
	checksumsCmd.AddCommand(checksumsSetStatusCmd)
}
