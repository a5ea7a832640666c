// Package config holds the explicit process configuration for LeadLens.
//
// Configuration is created once at process start and read-only thereafter.
// There is no package-level mutable state: the orchestrator and the audit
// engine receive the configuration object at construction time.
//
// Secrets (API keys) come from the environment, optionally via a .env file.
// Scoring weight profiles and per-vertical vendor pattern additions come
// from an optional YAML file (.leadlens).
package config
