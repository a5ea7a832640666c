// Package main provides the entry point for the LeadLens CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for LeadLens.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leadlens",
		Short: "Small-business lead discovery and website evidence auditing",
		Long: `LeadLens discovers small-business leads from a plain-language request or a
structured query file. It searches business directories, audits each
candidate's website for booking tools, chat widgets, SSL, and mobile
readiness, then scores and ranks the results with evidence attached.

API keys are read from the environment (or a .env file):
  OPENAI_API_KEY      planning and synthesis (optional, falls back to defaults)
  DIRECTORY_API_KEY   business directory search
  DIRECTORY_BASE_URL  business directory endpoint`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewRecipesCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
