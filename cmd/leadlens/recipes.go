package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/leadlens/leadlens/internal/config"
	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/recipe"
	"github.com/leadlens/leadlens/internal/store"
	"github.com/spf13/cobra"
)

// NewRecipesCmd creates the recipes command.
func NewRecipesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes [run-id]",
		Short: "Compile automation recipes for a stored run's leads",
		Long: `Recipes compiles executable automation recipes from the package
suggestions of a stored run. Each recipe carries the guards, ordered
steps, and human approval points for one package on one lead.

Without a run ID the latest stored run is used. Recipes are always
emitted as drafts; activating them is a human decision.

Examples:
  # Compile recipes for every suggested package of the latest run
  leadlens recipes

  # Compile recipes for a specific run
  leadlens recipes 2f9c1a7e-...

  # Only the AI receptionist package
  leadlens recipes --package ai_receptionist

  # Only one lead
  leadlens recipes --lead cand-0001`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRecipesCmd,
	}

	cmd.Flags().StringP("package", "p", "",
		"Compile only this package code (web_presence, ai_receptionist, followup_automation)")
	cmd.Flags().String("lead", "",
		"Compile only for this candidate ID")

	return cmd
}

// runRecipesCmd executes the recipes command.
func runRecipesCmd(cmd *cobra.Command, args []string) error {
	packageCode, err := cmd.Flags().GetString("package")
	if err != nil {
		return err
	}
	leadID, err := cmd.Flags().GetString("lead")
	if err != nil {
		return err
	}

	db, err := store.Open(config.XDGDataDir(), store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	var runID string
	if len(args) > 0 {
		runID = args[0]
	}

	result, err := loadRun(ctx, db, runID)
	if err != nil {
		return err
	}

	return compileRecipes(cmd.OutOrStdout(), result, model.PackageCode(packageCode), leadID)
}

// loadRun fetches a stored run by ID, or the latest run when id is empty.
func loadRun(ctx context.Context, db *store.RunDB, runID string) (*model.RunResult, error) {
	if runID == "" {
		result, err := db.GetLatestRun(ctx)
		if err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				return nil, errors.New("no stored runs found (use 'leadlens run' to execute a run)")
			}
			return nil, fmt.Errorf("failed to load latest run: %w", err)
		}
		return result, nil
	}

	result, err := db.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return nil, fmt.Errorf("run not found: %s (use 'leadlens runs' to list stored runs)", runID)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return result, nil
}

// compileRecipes compiles and prints recipes for the run's leads, honoring
// the optional package and lead filters.
func compileRecipes(out io.Writer, result *model.RunResult, packageCode model.PackageCode, leadID string) error {
	if packageCode != "" && !packageCode.Valid() {
		return fmt.Errorf("%w: %q", recipe.ErrUnknownPackage, packageCode)
	}

	var recipes []model.Recipe
	for _, lead := range result.Leads {
		if leadID != "" && lead.Candidate.ID != leadID {
			continue
		}

		if packageCode != "" {
			r, err := recipe.Compile(packageCode, lead)
			if err != nil {
				return err
			}
			recipes = append(recipes, r)
			continue
		}

		recipes = append(recipes, recipe.CompileAll(lead)...)
	}

	if len(recipes) == 0 {
		fmt.Fprintf(out, "Run %s produced no matching recipes.\n", result.RunID)
		return nil
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(recipes)
}
