package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/centsible/centsible/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "centsible",
	Short: "Personal finance ledger with automatic transaction categorization",
	Long: "centsible ingests raw transaction records, classifies them with a " +
		"fitted two-stage model, and keeps accounts, budgets, and bills " +
		"consistent in a local sqlite ledger.",
	RunE: runServe,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(resetCmd)
}

func loadConfig() (config.Config, error) {
	return config.Load()
}
