package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Default configuration values. These are chosen for auditing ordinary
// small-business websites, which are often slow shared-hosting setups but
// nothing like as slow as an anonymity network.
const (
	// DefaultFetchTimeout bounds each individual path fetch. Ten seconds
	// tolerates slow shared hosting while keeping a full audit of the
	// default path set under a minute even when every path times out.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultRunTimeout bounds one whole pipeline invocation, covering the
	// planning, discovery, and synthesis collaborators as well as the audit
	// fan-out. A stalled collaborator fails its stage rather than hanging
	// the process.
	DefaultRunTimeout = 5 * time.Minute

	// DefaultAuditConcurrency is the number of audits in flight at once.
	// Small on purpose: audits hit third-party websites and the bottleneck
	// is their rate limits, not local CPU.
	DefaultAuditConcurrency = 6

	// DefaultMaxAuditCandidates caps how many discovered candidates get
	// audited in one run. This is a cost control: discovery can return far
	// more businesses than are worth fetching.
	DefaultMaxAuditCandidates = 10

	// DefaultMaxBodySize limits how much of a response body is read.
	// Five megabytes comfortably covers real homepages and prevents memory
	// exhaustion from pathological responses.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent identifies audit traffic so site operators can tell
	// what fetched their pages.
	DefaultUserAgent = "LeadLens/1.0 (website feature audit; +https://github.com/leadlens/leadlens)"

	// AppName is used for XDG data directory paths.
	AppName = "leadlens"
)

// DefaultAuditPaths is the fixed set of common booking/contact paths checked
// when neither the caller nor the planning collaborator supplies paths.
// Order matters: the homepage goes first because most vendor signatures
// live there, and first match wins.
var DefaultAuditPaths = []string{
	"/",
	"/booking",
	"/book",
	"/appointments",
	"/schedule",
	"/contact",
}

// Config is the explicit process configuration passed into the orchestrator
// and the audit engine at construction time. Created once per process
// start, read-only thereafter.
type Config struct {
	// FetchTimeout bounds each audit path fetch.
	FetchTimeout time.Duration

	// RunTimeout bounds one whole pipeline invocation. Zero disables the
	// pipeline-wide deadline.
	RunTimeout time.Duration

	// AuditConcurrency is the maximum number of concurrent audits.
	AuditConcurrency int

	// MaxAuditCandidates caps how many candidates are audited per run.
	MaxAuditCandidates int

	// MaxBodySize limits response body reads, in bytes.
	MaxBodySize int64

	// UserAgent is sent with every audit fetch.
	UserAgent string

	// AuditPaths is the default path set for audits.
	AuditPaths []string

	// Secrets carries API credentials loaded from the environment.
	Secrets Secrets
}

// Secrets carries API credentials. Loaded from the environment, optionally
// seeded by a .env file. Both collaborators are optional: a run without
// keys degrades to the deterministic fallbacks.
type Secrets struct {
	// OpenAIAPIKey authenticates the planning and synthesis collaborators.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// OpenAIModel selects the chat model; empty uses the planner default.
	OpenAIModel string `envconfig:"OPENAI_MODEL"`

	// DirectoryAPIKey authenticates the business-directory collaborator.
	DirectoryAPIKey string `envconfig:"DIRECTORY_API_KEY"`

	// DirectoryBaseURL overrides the directory endpoint, mostly for tests.
	DirectoryBaseURL string `envconfig:"DIRECTORY_BASE_URL"`
}

// Default returns the configuration with every field at its default.
// Secrets are left empty; use Load to pull them from the environment.
func Default() *Config {
	return &Config{
		FetchTimeout:       DefaultFetchTimeout,
		RunTimeout:         DefaultRunTimeout,
		AuditConcurrency:   DefaultAuditConcurrency,
		MaxAuditCandidates: DefaultMaxAuditCandidates,
		MaxBodySize:        DefaultMaxBodySize,
		UserAgent:          DefaultUserAgent,
		AuditPaths:         append([]string(nil), DefaultAuditPaths...),
	}
}

// Load builds the default configuration and fills Secrets from the
// environment. A .env file in the working directory is honored when present
// and silently skipped otherwise.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if err := envconfig.Process("leadlens", &cfg.Secrets); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return cfg, nil
}

// XDGDataDir returns the XDG data directory for LeadLens.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/leadlens
// On macOS: ~/Library/Application Support/leadlens
// On Windows: %LOCALAPPDATA%\leadlens
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration for values that would break a run.
func (c *Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.RunTimeout < 0 {
		return ErrInvalidRunTimeout
	}
	if c.AuditConcurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.MaxAuditCandidates < 1 {
		return ErrInvalidCandidateCap
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
