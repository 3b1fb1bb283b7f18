package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage generated FAQ questions and answers",
}

var (
	questionSourceType string
	questionGenMethod  string
	questionDomain     string
	questionService    string
	questionStatus     string
	questionLimit      int
	answerFormat       string
	answerConfidence   float64
)

var questionsCreateCmd = &cobra.Command{
	Use:   "create <text>",
	Short: "Create a generated question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]any{"text": args[0]}
		if questionSourceType != "" {
			body["sourceType"] = questionSourceType
		}
		if questionGenMethod != "" {
			body["generationMethod"] = questionGenMethod
		}
		if questionDomain != "" {
			body["domain"] = questionDomain
		}
		if questionService != "" {
			body["service"] = questionService
		}

		var result map[string]any
		if err := client.postJSON(faqAPIBase+"/questions", body, &result); err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Question %s created\n", field(result, "question_id"))
		return nil
	},
}

var questionsGetCmd = &cobra.Command{
	Use:   "get <question-id>",
	Short: "Get a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		result, err := client.getRaw(faqAPIBase + "/questions/" + args[0])
		if err != nil {
			return fmt.Errorf("failed to get question: %w", err)
		}
		return printOutput(result)
	},
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		q := url.Values{}
		if questionStatus != "" {
			q.Set("status", questionStatus)
		}
		if questionLimit > 0 {
			q.Set("limit", fmt.Sprintf("%d", questionLimit))
		}
		path := faqAPIBase + "/questions"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}

		var result struct {
			Questions []map[string]any `json:"questions"`
			Size      int              `json:"size"`
		}
		if err := client.getJSON(path, &result); err != nil {
			return fmt.Errorf("failed to list questions: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"ID", "Text", "Status", "Source", "Created"}
		rows := make([][]string, 0, len(result.Questions))
		for _, item := range result.Questions {
			rows = append(rows, []string{
				field(item, "question_id"),
				truncate(field(item, "question_text"), 60),
				field(item, "status"),
				field(item, "source_type"),
				field(item, "created_at"),
			})
		}
		printTable(headers, rows)
		fmt.Printf("Total: %d\n", result.Size)
		return nil
	},
}

var questionsAnswerCmd = &cobra.Command{
	Use:   "answer <question-id> <text>",
	Short: "Attach the answer to a question",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]any{"text": args[1]}
		if answerFormat != "" {
			body["format"] = answerFormat
		}
		if cmd.Flags().Changed("confidence") {
			body["confidence"] = answerConfidence
		}

		var result map[string]any
		if err := client.postJSON(faqAPIBase+"/questions/"+args[0]+"/answer", body, &result); err != nil {
			return fmt.Errorf("failed to create answer: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Answer %s attached to question %s\n", field(result, "answer_id"), args[0])
		return nil
	},
}

var questionsGetAnswerCmd = &cobra.Command{
	Use:   "get-answer <question-id>",
	Short: "Get the answer attached to a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		result, err := client.getRaw(faqAPIBase + "/questions/" + args[0] + "/answer")
		if err != nil {
			return fmt.Errorf("failed to get answer: %w", err)
		}
		return printOutput(result)
	},
}

var questionsSetStatusCmd = &cobra.Command{
	Use:   "set-status <question-id> <status>",
	Short: "Set a question's lifecycle status (active, invalidated, archived)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result map[string]any
		body := map[string]any{"status": args[1]}
		if err := client.postJSON(faqAPIBase+"/questions/"+args[0]+":setStatus", body, &result); err != nil {
			return fmt.Errorf("failed to set status: %w", err)
		}
		fmt.Printf("Question %s status set to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	questionsCreateCmd.Flags().StringVar(&questionSourceType, "source-type", "", "Question source type (generated, manual, imported)")
	questionsCreateCmd.Flags().StringVar(&questionGenMethod, "generation-method", "", "Generation method")
	questionsCreateCmd.Flags().StringVar(&questionDomain, "domain", "", "Domain the question belongs to")
	questionsCreateCmd.Flags().StringVar(&questionService, "service", "", "Service the question belongs to")

	questionsListCmd.Flags().StringVar(&questionStatus, "status", "", "Filter by status (default: active)")
	questionsListCmd.Flags().IntVar(&questionLimit, "limit", 0, "Maximum number of results")

	questionsAnswerCmd.Flags().StringVar(&answerFormat, "format", "", "Answer format (html, markdown, plain)")
	questionsAnswerCmd.Flags().Float64Var(&answerConfidence, "confidence", 0, "Generation confidence in [0,1]")

	questionsCmd.AddCommand(questionsCreateCmd)
	questionsCmd.AddCommand(questionsGetCmd)
	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsAnswerCmd)
	questionsCmd.AddCommand(questionsGetAnswerCmd)
	questionsCmd.AddCommand(questionsSetStatusCmd)
}
