package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leadlens/leadlens/internal/config"
	"github.com/leadlens/leadlens/internal/store"
	"github.com/spf13/cobra"
)

// NewRunsCmd creates the runs command.
// This command browses run history stored in the database.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List stored runs or show one run's top leads",
		Long: `Runs browses the history of pipeline runs saved in the local database.

Without arguments it lists every stored run, newest first. With a run ID
it shows that run's top leads. Use 'leadlens run' to execute runs and
populate the database.

Examples:
  # List all stored runs
  leadlens runs

  # Show the top leads of a specific run
  leadlens runs 2f9c1a7e-...

  # Show only the top five leads
  leadlens runs --top 5 2f9c1a7e-...

  # Full run result as JSON
  leadlens runs --json 2f9c1a7e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunsCmd,
	}

	cmd.Flags().IntP("top", "n", 0,
		"Limit how many leads are shown (0 shows all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the full run result in JSON format")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, args []string) error {
	db, err := store.Open(config.XDGDataDir(), store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if len(args) == 0 {
		return listRuns(ctx, db, cmd.OutOrStdout())
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if jsonOutput {
		return showRunJSON(ctx, db, cmd.OutOrStdout(), args[0])
	}

	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}
	return showRunLeads(ctx, db, cmd.OutOrStdout(), args[0], top)
}

// listRuns prints metadata for every stored run.
func listRuns(ctx context.Context, db *store.RunDB, out io.Writer) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No stored runs found. Use 'leadlens run' to execute a run.")
		return nil
	}

	fmt.Fprintf(out, "%d stored run(s):\n\n", len(runs))
	for _, meta := range runs {
		status := "ok"
		if !meta.Success {
			status = "no leads"
		}
		fmt.Fprintf(out, "%s  %s  %s in %s, %s  (%d leads, %d errors, %s)\n",
			meta.RunID,
			meta.StartedAt.Format("2006-01-02 15:04"),
			meta.Vertical, meta.City, meta.State,
			meta.LeadCount, meta.ErrorCount, status)
	}
	return nil
}

// showRunLeads prints a run's leads ordered by score.
func showRunLeads(ctx context.Context, db *store.RunDB, out io.Writer, runID string, limit int) error {
	leads, err := db.TopLeads(ctx, runID, limit)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return fmt.Errorf("run not found: %s (use 'leadlens runs' to list stored runs)", runID)
		}
		return fmt.Errorf("failed to load leads: %w", err)
	}

	if len(leads) == 0 {
		fmt.Fprintf(out, "Run %s has no stored leads.\n", runID)
		return nil
	}

	fmt.Fprintf(out, "Top leads for run %s:\n\n", runID)
	for i, lead := range leads {
		website := lead.Website
		if website == "" {
			website = "no website"
		}
		fmt.Fprintf(out, "%2d. %-30s  score %.1f  %s\n", i+1, lead.Name, lead.Score, website)
		if len(lead.ReasonCodes) > 0 {
			fmt.Fprintf(out, "    reasons: %s\n", strings.Join(lead.ReasonCodes, ", "))
		}
		for _, s := range lead.Suggestions {
			fmt.Fprintf(out, "    suggest: %s (%.2f)\n", s.Code, s.Confidence)
		}
	}
	return nil
}

// showRunJSON prints the full stored run result as indented JSON.
func showRunJSON(ctx context.Context, db *store.RunDB, out io.Writer, runID string) error {
	result, err := db.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return fmt.Errorf("run not found: %s (use 'leadlens runs' to list stored runs)", runID)
		}
		return fmt.Errorf("failed to load run: %w", err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
