package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	outputFmt string
	actorName string
)

var rootCmd = &cobra.Command{
	Use:   "faqprovctl",
	Short: "CLI for the FAQ provenance registry",
	Long: `faqprovctl interacts with a running faqprov server.

It covers the full API surface: content checksums, FAQ questions and
answers, provenance links, detected changes and diffs, impact analysis,
detection runs and the audit trail.

Write operations are attributed to the identity given via --actor (or
the FAQPROV_ACTOR environment variable).`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "faqprov server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&actorName, "actor", "", "Acting identity for write operations (default: from FAQPROV_ACTOR env)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(checksumsCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(changesCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(auditCmd)
}

// resolvedActor returns the effective acting identity.
// Priority: --actor flag > FAQPROV_ACTOR env var > empty (server default).
func resolvedActor() string {
	if actorName != "" {
		return actorName
	}
	return os.Getenv("FAQPROV_ACTOR")
}
