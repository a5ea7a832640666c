package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/leadlens/leadlens/internal/audit"
	"github.com/leadlens/leadlens/internal/config"
	"github.com/leadlens/leadlens/internal/discovery"
	"github.com/leadlens/leadlens/internal/log"
	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/pipeline"
	"github.com/leadlens/leadlens/internal/planner"
	"github.com/leadlens/leadlens/internal/query"
	"github.com/leadlens/leadlens/internal/report"
	"github.com/leadlens/leadlens/internal/store"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [query text]",
		Short: "Discover, audit, and score small-business leads",
		Long: `Run executes the full lead discovery pipeline for one query.

The query is either free text ("dentists in Columbia, SC with no website")
or a structured JSON file passed with --query-file. The pipeline plans
directory searches, discovers candidate businesses, audits their websites
for feature evidence, scores each lead, and synthesizes a recommendation.

Every run is saved to the local database so the runs and recipes commands
can revisit it later.

Examples:
  # Free-text query
  leadlens run "dentists in Columbia, SC"

  # Structured query file
  leadlens run --query-file query.json

  # Audit candidates from a file instead of the directory API
  leadlens run --candidates-file candidates.json "hvac companies in Austin, TX"

  # Markdown report written to a file
  leadlens run --markdown -o report.md "law firms in Denver, CO"

  # Named scoring profile from a .leadlens file
  leadlens run --profiles .leadlens "auto repair shops in Boise, ID"`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	// Query input flags
	cmd.Flags().StringP("query-file", "q", "",
		"Structured JSON query file (overrides free-text arguments)")
	cmd.Flags().StringP("location", "l", "",
		"Location hint for free-text queries that omit a city and state")

	// Collaborator flags
	cmd.Flags().String("candidates-file", "",
		"JSON candidate file to use instead of the directory search API")
	cmd.Flags().String("profiles", "",
		"Scoring profile file path (default: .leadlens in current or home directory)")

	// Pipeline behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultRunTimeout,
		"Timeout for the whole pipeline run")
	cmd.Flags().Int("concurrency", config.DefaultAuditConcurrency,
		"Number of concurrent website audits")
	cmd.Flags().Int("max-candidates", config.DefaultMaxAuditCandidates,
		"Maximum number of discovered candidates to audit")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (overrides the query's output contract)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (overrides the query's output contract)")
	cmd.Flags().Bool("csv", false,
		"Output CSV report (overrides the query's output contract)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	q, queryText, err := buildQuery(cmd, args, logger)
	if err != nil {
		return err
	}

	extraPatterns, err := resolveProfiles(cmd, q)
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runPipeline(ctx, cmd, cfg, q, queryText, extraPatterns, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildRunConfig loads configuration from the environment and applies
// flag overrides.
func buildRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	cfg.RunTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.AuditConcurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.MaxAuditCandidates, err = cmd.Flags().GetInt("max-candidates")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// buildQuery produces the validated query for this run. A --query-file
// takes precedence; otherwise the positional arguments are treated as free
// text and run through extraction.
func buildQuery(cmd *cobra.Command, args []string, logger *slog.Logger) (*model.Query, string, error) {
	queryFile, err := cmd.Flags().GetString("query-file")
	if err != nil {
		return nil, "", err
	}

	if queryFile != "" {
		data, err := os.ReadFile(queryFile) //nolint:gosec // Path comes from the user's own flag
		if err != nil {
			return nil, "", fmt.Errorf("failed to read query file: %w", err)
		}
		q, err := query.ParseAndValidate(data)
		if err != nil {
			return nil, "", fmt.Errorf("invalid query file %s: %w", queryFile, err)
		}
		return q, "", nil
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return nil, "", errors.New("no query provided (pass free text as arguments or use --query-file)")
	}

	locationHint, err := cmd.Flags().GetString("location")
	if err != nil {
		return nil, "", err
	}

	ext, err := query.Extract(text, locationHint)
	if err != nil {
		return nil, "", fmt.Errorf("could not understand query %q: %w", text, err)
	}
	for _, w := range ext.Warnings {
		logger.Warn("query extraction", "warning", w)
	}

	q := query.MinimalQuery(ext.Geo.City, ext.Geo.State)
	q.Vertical = ext.Vertical
	q.Constraints = ext.Constraints

	validated, err := query.Validate(q)
	if err != nil {
		return nil, "", fmt.Errorf("extracted query is invalid: %w", err)
	}
	return validated, text, nil
}

// resolveProfiles loads the optional .leadlens profile file. It fills in
// scoring weights when the query names a profile without explicit weights,
// and returns the file's extra booking vendor patterns for the audit
// engine.
func resolveProfiles(cmd *cobra.Command, q *model.Query) ([]string, error) {
	explicit, err := cmd.Flags().GetString("profiles")
	if err != nil {
		return nil, err
	}

	needsProfile := q.Scoring != nil && q.Scoring.Profile != "" && q.Scoring.Weights == nil

	path := config.FindProfileFile(explicit)
	if path == "" {
		if explicit != "" {
			return nil, fmt.Errorf("profile file not found: %s", explicit)
		}
		if needsProfile {
			return nil, fmt.Errorf("query names scoring profile %q but no %s file was found",
				q.Scoring.Profile, config.DefaultProfileFile)
		}
		return nil, nil
	}

	profiles, err := config.LoadProfileFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile file %s: %w", path, err)
	}

	if needsProfile {
		weights, err := profiles.Profile(q.Scoring.Profile)
		if err != nil {
			return nil, fmt.Errorf("profile file %s: %w", path, err)
		}
		q.Scoring.Weights = &weights
	}
	return profiles.BookingPatterns, nil
}

// runPipeline wires the collaborators, executes the run, and reports the
// result.
func runPipeline(ctx context.Context, cmd *cobra.Command, cfg *config.Config, q *model.Query, queryText string, extraPatterns []string, logger *slog.Logger) error {
	logger.Info("starting run",
		"vertical", string(q.Vertical),
		"city", q.Geo.City,
		"state", q.Geo.State,
		"target", q.ResultSize.Target,
	)

	// Open the run database using the XDG data directory
	db, err := store.Open(config.XDGDataDir(), store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	discoverer, err := newDiscoverer(cmd, cfg, logger)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{
		pipeline.WithConcurrency(cfg.AuditConcurrency),
		pipeline.WithMaxCandidates(cfg.MaxAuditCandidates),
		pipeline.WithRunTimeout(cfg.RunTimeout),
		pipeline.WithLogger(logger),
	}

	// The planning collaborator is optional. Without a key the pipeline
	// falls back to the deterministic default plan and synthesis.
	pl, err := planner.NewFromSecrets(cfg.Secrets, planner.WithLogger(logger))
	switch {
	case errors.Is(err, planner.ErrNoAPIKey):
		logger.Warn("OPENAI_API_KEY not set, using deterministic planning and synthesis")
	case err != nil:
		return fmt.Errorf("failed to create planner: %w", err)
	default:
		opts = append(opts, pipeline.WithPlanner(pl), pipeline.WithSynthesizer(pl))
	}

	orch := pipeline.New(discoverer, newAuditorFactory(cfg, extraPatterns, logger), opts...)

	fmt.Printf("Running lead discovery for %s, %s...\n", q.Geo.City, q.Geo.State)
	startTime := time.Now()

	result := orch.Run(ctx, q, queryText)

	elapsed := time.Since(startTime)
	fmt.Printf("Run completed in %s (%d leads)\n\n", elapsed.Round(time.Millisecond), len(result.Leads))

	if err := outputReport(cmd, q, result); err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	if err := db.SaveRun(ctx, result); err != nil {
		logger.Error("failed to save run", "runID", result.RunID, "error", err)
	} else {
		logger.Info("run saved to database", "runID", result.RunID)
	}

	if !result.PipelineSuccess {
		return fmt.Errorf("run %s produced no leads", result.RunID)
	}
	return nil
}

// newDiscoverer selects between the directory search API and a local
// candidate file.
func newDiscoverer(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (pipeline.Discoverer, error) {
	candidatesFile, err := cmd.Flags().GetString("candidates-file")
	if err != nil {
		return nil, err
	}
	if candidatesFile != "" {
		return discovery.NewFileSource(candidatesFile), nil
	}

	httpClient := &http.Client{Timeout: cfg.FetchTimeout}
	client, err := discovery.NewClient(httpClient, cfg.Secrets.DirectoryBaseURL, cfg.Secrets.DirectoryAPIKey,
		discovery.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("directory search not configured: %w (set DIRECTORY_API_KEY and DIRECTORY_BASE_URL, or use --candidates-file)", err)
	}
	return client, nil
}

// newAuditorFactory builds audit engines configured from the verification
// plan. Each run gets one engine; the factory exists so plan-supplied paths
// and vendor patterns reach the engine. Profile-file patterns come first so
// operator additions keep their precedence over plan guesses.
func newAuditorFactory(cfg *config.Config, extraPatterns []string, logger *slog.Logger) pipeline.AuditorFactory {
	return func(plan model.VerificationPlan) pipeline.Auditor {
		paths := plan.WebsitePaths
		if len(paths) == 0 {
			paths = cfg.AuditPaths
		}

		opts := []audit.Option{
			audit.WithPaths(paths),
			audit.WithFetchTimeout(cfg.FetchTimeout),
			audit.WithUserAgent(cfg.UserAgent),
			audit.WithMaxBodySize(cfg.MaxBodySize),
			audit.WithLogger(logger),
		}
		patterns := append(append([]string(nil), extraPatterns...), plan.BookingVendorPatterns...)
		if len(patterns) > 0 {
			opts = append(opts, audit.WithExtraBookingPatterns(patterns))
		}

		return audit.NewEngine(&http.Client{}, opts...)
	}
}

// outputReport writes the run report in the requested format.
func outputReport(cmd *cobra.Command, q *model.Query, result *model.RunResult) error {
	reportFile, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	// Determine output destination
	var output io.Writer = os.Stdout
	if reportFile != "" {
		dir := filepath.Dir(reportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(reportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // Path comes from the user's own flag
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	writer, err := newReportWriter(cmd, output, q.Output.Contract)
	if err != nil {
		return err
	}
	_, err = writer.Write(result)
	return err
}

// newReportWriter resolves the report format. Explicit flags win; otherwise
// the query's output contract decides.
func newReportWriter(cmd *cobra.Command, output io.Writer, contract model.OutputContract) (report.Writer, error) {
	jsonFlag, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	markdownFlag, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	csvFlag, err := cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}

	switch {
	case jsonFlag:
		return report.NewJSONWriter(output, report.WithPrettyPrint()), nil
	case markdownFlag:
		return report.NewMarkdownWriter(output), nil
	case csvFlag:
		return report.NewCSVWriter(output), nil
	}

	switch contract {
	case model.OutputCSV:
		return report.NewCSVWriter(output), nil
	case model.OutputExcel:
		// Spreadsheet formatting belongs to the UI layer, so the Excel
		// contract is honored with its CSV equivalent.
		fmt.Fprintln(os.Stderr, "Note: excel output contract is rendered as CSV")
		return report.NewCSVWriter(output), nil
	case model.OutputJSON:
		return report.NewJSONWriter(output, report.WithPrettyPrint()), nil
	}
	return report.NewMarkdownWriter(output), nil
}
