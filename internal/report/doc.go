// Package report renders pipeline run results for humans and tools.
// JSON serves programmatic consumers, Markdown serves review and sharing,
// and CSV serves spreadsheet import. Writers share one interface so runs
// can be written to several destinations at once.
package report
