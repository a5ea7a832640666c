package model

import "time"

// AuditResult is the outcome of auditing one candidate website.
// It is created once per audit invocation and immutable thereafter;
// a re-audit produces a new result rather than updating in place.
type AuditResult struct {
	// WebsiteURL is the normalized URL that was audited. The scheme
	// defaults to https when the input carried none.
	WebsiteURL string `json:"website_url"`

	// HasWebsite is false when the candidate had no website to audit.
	HasWebsite bool `json:"has_website"`

	// Features holds one detection per tracked feature.
	Features map[Feature]*FeatureDetection `json:"features"`

	// EvidenceLog is the ordered sequence of every evidence entry produced
	// during the audit, including failed fetches.
	EvidenceLog []EvidenceEntry `json:"evidence_log"`

	// ConfidenceScore is successful checks over attempted paths, in [0,1].
	// Zero attempted paths yields zero confidence.
	ConfidenceScore float64 `json:"confidence_score"`

	// PathsAttempted counts the paths the engine tried to fetch.
	PathsAttempted int `json:"paths_attempted"`

	// PathsSucceeded counts the paths that returned a success status.
	// The absence policy keys off this: a feature gets an explicit negative
	// evidence entry only when at least two paths succeeded.
	PathsSucceeded int `json:"paths_succeeded"`

	// AuditTimestamp is when the audit started.
	AuditTimestamp time.Time `json:"audit_timestamp"`
}

// NewAuditResult creates an audit result with one empty detection per
// tracked feature.
func NewAuditResult(websiteURL string) *AuditResult {
	features := make(map[Feature]*FeatureDetection, len(Features))
	for _, f := range Features {
		features[f] = &FeatureDetection{}
	}
	return &AuditResult{
		WebsiteURL:     websiteURL,
		Features:       features,
		EvidenceLog:    make([]EvidenceEntry, 0),
		AuditTimestamp: time.Now(),
	}
}

// AddEvidence appends an entry to the audit's evidence log.
func (a *AuditResult) AddEvidence(e EvidenceEntry) {
	a.EvidenceLog = append(a.EvidenceLog, e)
}

// Feature returns the detection for f, creating an empty one if absent.
// The empty case only arises for results deserialized from storage.
func (a *AuditResult) Feature(f Feature) *FeatureDetection {
	if a.Features == nil {
		a.Features = make(map[Feature]*FeatureDetection, len(Features))
	}
	d, ok := a.Features[f]
	if !ok {
		d = &FeatureDetection{}
		a.Features[f] = d
	}
	return d
}

// FeatureFound reports whether the named feature was detected.
// It is safe to call on a nil result (no website, no audit): every feature
// reads as not found.
func (a *AuditResult) FeatureFound(f Feature) bool {
	if a == nil || a.Features == nil {
		return false
	}
	d, ok := a.Features[f]
	return ok && d.Found
}

// ErrorCount returns the number of error-status entries in the evidence log.
func (a *AuditResult) ErrorCount() int {
	count := 0
	for _, e := range a.EvidenceLog {
		if e.Status == StatusError {
			count++
		}
	}
	return count
}
