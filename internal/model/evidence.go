package model

import "time"

// CheckType classifies what an evidence entry was checking for.
type CheckType string

// Check types. The set is closed; the audit engine only emits these values.
const (
	CheckWebsite  CheckType = "website"
	CheckBooking  CheckType = "booking"
	CheckContact  CheckType = "contact"
	CheckSocial   CheckType = "social"
	CheckFeatures CheckType = "features"
)

// EvidenceSource identifies where an observation came from.
type EvidenceSource string

// Evidence sources.
const (
	SourceRenderedContent EvidenceSource = "rendered_content"
	SourceHeaders         EvidenceSource = "headers"
	SourceOutboundLinks   EvidenceSource = "outbound_links"
	SourceVendorSignature EvidenceSource = "vendor_signature"
)

// EvidenceStatus is the outcome of a single check.
type EvidenceStatus string

// Evidence statuses. An errored fetch is evidence too: it counts against
// the audit's aggregate confidence.
const (
	StatusFound    EvidenceStatus = "found"
	StatusNotFound EvidenceStatus = "not_found"
	StatusError    EvidenceStatus = "error"
)

// MaxSnippetLength bounds the snippet stored with an evidence entry.
// Longer snippets are truncated, keeping evidence logs compact enough to
// persist and ship to the synthesis collaborator.
const MaxSnippetLength = 200

// EvidenceEntry is the atomic unit of proof: one timestamped observation
// with provenance and a calibrated confidence in [0,1].
//
// Entries are append-only. Once created they are never mutated; an audit's
// evidence log is the ordered sequence of all entries produced during that
// audit, including failed fetches.
type EvidenceEntry struct {
	// Timestamp is when the observation was made.
	Timestamp time.Time `json:"timestamp"`

	// CheckType classifies what was being checked.
	CheckType CheckType `json:"check_type"`

	// Source identifies how the observation was made.
	Source EvidenceSource `json:"source"`

	// URL is the page the observation pertains to.
	URL string `json:"url"`

	// Path is the relative path fetched, when applicable.
	Path string `json:"path,omitempty"`

	// Selector is the CSS selector that matched, when the observation came
	// from parsed document structure.
	Selector string `json:"selector,omitempty"`

	// Snippet is a bounded excerpt of the matched content.
	Snippet string `json:"snippet,omitempty"`

	// Status is the outcome of the check.
	Status EvidenceStatus `json:"status"`

	// Confidence is the calibrated confidence of the claim, in [0,1].
	Confidence float64 `json:"confidence"`
}

// NewEvidence creates an evidence entry stamped with the current time.
// The snippet is truncated to MaxSnippetLength.
func NewEvidence(check CheckType, source EvidenceSource, url string, status EvidenceStatus, confidence float64) EvidenceEntry {
	return EvidenceEntry{
		Timestamp:  time.Now(),
		CheckType:  check,
		Source:     source,
		URL:        url,
		Status:     status,
		Confidence: confidence,
	}
}

// WithPath returns a copy of the entry with the relative path set.
func (e EvidenceEntry) WithPath(path string) EvidenceEntry {
	e.Path = path
	return e
}

// WithSelector returns a copy of the entry with the matched selector set.
func (e EvidenceEntry) WithSelector(selector string) EvidenceEntry {
	e.Selector = selector
	return e
}

// WithSnippet returns a copy of the entry with a truncated snippet attached.
func (e EvidenceEntry) WithSnippet(snippet string) EvidenceEntry {
	e.Snippet = TruncateSnippet(snippet)
	return e
}

// TruncateSnippet bounds s to MaxSnippetLength, appending an ellipsis
// marker when content was dropped.
func TruncateSnippet(s string) string {
	if len(s) <= MaxSnippetLength {
		return s
	}
	return s[:MaxSnippetLength] + "..."
}

// Feature names one tracked website capability.
type Feature string

// Tracked features. Every audit result carries a detection for each.
const (
	FeatureOnlineBooking    Feature = "online_booking"
	FeatureChatWidget       Feature = "chat_widget"
	FeaturePaymentProcessor Feature = "payment_processor"
	FeatureSSL              Feature = "ssl"
	FeatureMobileResponsive Feature = "mobile_responsive"
)

// Features lists every tracked feature in stable order.
var Features = []Feature{
	FeatureOnlineBooking,
	FeatureChatWidget,
	FeaturePaymentProcessor,
	FeatureSSL,
	FeatureMobileResponsive,
}

// FeatureDetection records whether one tracked feature was observed,
// with the evidence entries that pertain to it.
type FeatureDetection struct {
	// Found reports whether the feature was observed. A false value with no
	// negative evidence entry means "insufficient evidence", not
	// "confirmed absent"; see AuditResult.
	Found bool `json:"found"`

	// Evidence is the subset of the audit's evidence log pertaining to
	// this feature.
	Evidence []EvidenceEntry `json:"evidence,omitempty"`

	// VendorDetected names the specific product matched, if any
	// (e.g. "calendly", "intercom", "stripe").
	VendorDetected string `json:"vendor_detected,omitempty"`
}
