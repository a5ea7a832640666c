// Package store persists completed runs to SQLite so past lead lists can
// be reviewed without re-running discovery. Full run results are stored as
// JSON documents alongside a small queryable metadata projection; leads get
// their own rows so ranked lists can be read without decoding whole runs.
package store
