package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/leadlens/leadlens/internal/model"
)

// ErrRunNotFound is returned when a requested run does not exist.
var ErrRunNotFound = errors.New("store: run not found")

// RunDB provides SQLite-based storage for pipeline runs.
//
// Design decision: One database file for all runs rather than a file per
// run. Run history queries span runs, and a single file keeps backup and
// cleanup trivial.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB under the specified directory.
// With CreateIfNotExists the directory and database file are created;
// without it a missing database is an error.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, "leadlens.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw prevents creating new files, mode=rwc
	// allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; keep the pool at a single
	// connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store complete pipeline results as JSON plus queryable metadata
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		vertical TEXT,
		city TEXT,
		state TEXT,
		lead_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		success INTEGER NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_vertical ON runs(vertical);

	-- Leads are projected per run so ranked lists can be read without
	-- decoding the full result document
	CREATE TABLE IF NOT EXISTS leads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		candidate_id TEXT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		website TEXT,
		score REAL NOT NULL,
		reason_codes TEXT,
		suggestions TEXT,
		UNIQUE(run_id, candidate_id),
		FOREIGN KEY(run_id) REFERENCES runs(run_id)
	);

	CREATE INDEX IF NOT EXISTS idx_leads_run ON leads(run_id);
	CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(run_id, score);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists one completed run: the full result document plus the
// per-lead projection. Saving the same run ID again replaces both.
func (rdb *RunDB) SaveRun(ctx context.Context, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize run result: %w", err)
	}

	var vertical, city, state string
	if result.Query != nil {
		vertical = string(result.Query.Vertical)
		city = result.Query.Geo.City
		state = result.Query.Geo.State
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, started_at, vertical, city, state, lead_count, error_count, success, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		started_at = excluded.started_at,
		vertical = excluded.vertical,
		city = excluded.city,
		state = excluded.state,
		lead_count = excluded.lead_count,
		error_count = excluded.error_count,
		success = excluded.success,
		result_json = excluded.result_json
	`,
		result.RunID,
		result.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		vertical,
		city,
		state,
		len(result.Leads),
		len(result.Errors),
		boolToInt(result.PipelineSuccess),
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM leads WHERE run_id = ?", result.RunID); err != nil {
		return fmt.Errorf("failed to clear run leads: %w", err)
	}

	for _, lead := range result.Leads {
		reasonsJSON, err := json.Marshal(lead.ReasonCodes)
		if err != nil {
			return fmt.Errorf("failed to serialize reason codes: %w", err)
		}
		suggestionsJSON, err := json.Marshal(lead.Suggestions)
		if err != nil {
			return fmt.Errorf("failed to serialize suggestions: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO leads (run_id, candidate_id, name, phone, website, score, reason_codes, suggestions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			result.RunID,
			lead.Candidate.ID,
			lead.Candidate.Name,
			lead.Candidate.Phone,
			lead.Candidate.Website,
			lead.Score,
			string(reasonsJSON),
			string(suggestionsJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to save lead %s: %w", lead.Candidate.ID, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a complete run result by ID.
func (rdb *RunDB) GetRun(ctx context.Context, runID string) (*model.RunResult, error) {
	var resultJSON string
	err := rdb.db.QueryRowContext(ctx,
		"SELECT result_json FROM runs WHERE run_id = ?", runID).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var result model.RunResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse run result: %w", err)
	}
	return &result, nil
}

// GetLatestRun retrieves the most recently started run, or ErrRunNotFound
// when the database holds none.
func (rdb *RunDB) GetLatestRun(ctx context.Context) (*model.RunResult, error) {
	var resultJSON string
	err := rdb.db.QueryRowContext(ctx,
		"SELECT result_json FROM runs ORDER BY started_at DESC LIMIT 1").Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	var result model.RunResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse run result: %w", err)
	}
	return &result, nil
}

// RunMetadata summarizes one stored run without its full result document.
type RunMetadata struct {
	// RunID identifies the run.
	RunID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Vertical, City, and State echo the run's query.
	Vertical string
	City     string
	State    string

	// LeadCount and ErrorCount summarize the outcome.
	LeadCount  int
	ErrorCount int

	// Success reports whether the run scored at least one lead.
	Success bool
}

// ListRuns returns metadata for every stored run, newest first.
func (rdb *RunDB) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT run_id, started_at, vertical, city, state, lead_count, error_count, success
	FROM runs
	ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt string
		var success int

		if err := rows.Scan(&meta.RunID, &startedAt, &meta.Vertical, &meta.City, &meta.State,
			&meta.LeadCount, &meta.ErrorCount, &success); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}
		meta.StartedAt = parseTimestamp(startedAt)
		meta.Success = success != 0
		results = append(results, meta)
	}

	return results, rows.Err()
}

// StoredLead is the per-lead projection of a stored run.
type StoredLead struct {
	CandidateID string
	Name        string
	Phone       string
	Website     string
	Score       float64
	ReasonCodes []string
	Suggestions []model.PackageSuggestion
}

// TopLeads returns a run's leads ordered by descending score, up to limit.
// A non-positive limit returns all of them.
func (rdb *RunDB) TopLeads(ctx context.Context, runID string, limit int) ([]StoredLead, error) {
	query := `
	SELECT candidate_id, name, phone, website, score, reason_codes, suggestions
	FROM leads
	WHERE run_id = ?
	ORDER BY score DESC, candidate_id ASC
	`
	args := []interface{}{runID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var results []StoredLead
	for rows.Next() {
		var lead StoredLead
		var reasonsJSON, suggestionsJSON sql.NullString

		if err := rows.Scan(&lead.CandidateID, &lead.Name, &lead.Phone, &lead.Website,
			&lead.Score, &reasonsJSON, &suggestionsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		if reasonsJSON.Valid && reasonsJSON.String != "" {
			if err := json.Unmarshal([]byte(reasonsJSON.String), &lead.ReasonCodes); err != nil {
				return nil, fmt.Errorf("failed to parse reason codes: %w", err)
			}
		}
		if suggestionsJSON.Valid && suggestionsJSON.String != "" {
			if err := json.Unmarshal([]byte(suggestionsJSON.String), &lead.Suggestions); err != nil {
				return nil, fmt.Errorf("failed to parse suggestions: %w", err)
			}
		}
		results = append(results, lead)
	}

	return results, rows.Err()
}

// DeleteRun removes a run and its lead projection. Deleting an absent run
// is not an error.
func (rdb *RunDB) DeleteRun(ctx context.Context, runID string) error {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM leads WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to delete run leads: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
