// Package discovery finds candidate businesses for a verification plan's
// directory queries. The HTTP client speaks a places-style text search API;
// the file source replays saved candidate lists for offline runs. Records
// are consumed as-is: discovery performs no retries and no enrichment.
package discovery
