// Package log provides sanitized structured logging for the pipeline.
//
// Runs handle credentials on both ends: API keys for the generative and
// directory collaborators going out, and whatever a fetched page or a
// collaborator response echoes back coming in. The SecureHandler wraps any
// slog.Handler and masks attribute values that look like secrets before
// they reach the log output, so a debug-level run transcript is safe to
// attach to a bug report.
package log
