// Package main provides the entry point for the LeadLens CLI.
//
// LeadLens turns a plain-language request for small-business leads into a
// ranked, evidence-backed lead list. It plans directory searches, audits
// candidate websites for booking tools and other features, scores each
// business, and recommends service packages.
//
// Usage:
//
//	leadlens run "dentists in Columbia, SC"
//	leadlens run --query-file query.json
//
// See --help for all available options.
package main

// main is the entry point for LeadLens.
func main() {
	Execute()
}
