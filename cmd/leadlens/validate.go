package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/leadlens/leadlens/internal/query"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <query-file>",
		Short: "Validate a structured query file",
		Long: `Validate parses a structured JSON query file and reports every field
that fails validation, without running the pipeline.

Examples:
  # Validate a query file
  leadlens validate query.json`,
		Args: cobra.ExactArgs(1),
		RunE: runValidateCmd,
	}
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0]) //nolint:gosec // Path comes from the user's own argument
	if err != nil {
		return fmt.Errorf("failed to read query file: %w", err)
	}

	q, err := query.ParseAndValidate(data)
	if err != nil {
		var verrs *query.ValidationErrors
		if errors.As(err, &verrs) {
			fmt.Fprintf(cmd.OutOrStdout(), "Query file %s is invalid:\n", args[0])
			for _, fe := range verrs.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", fe.Path, fe.Message)
			}
			return fmt.Errorf("%d validation error(s)", len(verrs.Errors))
		}
		return fmt.Errorf("failed to parse query file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Query file %s is valid.\n", args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "  vertical: %s\n", q.Vertical)
	fmt.Fprintf(cmd.OutOrStdout(), "  location: %s, %s\n", q.Geo.City, q.Geo.State)
	fmt.Fprintf(cmd.OutOrStdout(), "  target:   %d leads\n", q.ResultSize.Target)
	fmt.Fprintf(cmd.OutOrStdout(), "  output:   %s\n", q.Output.Contract)
	return nil
}
