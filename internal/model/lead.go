package model

// Candidate is a raw business record produced by the discovery collaborator.
// Records are consumed as-is; the pipeline assigns the ID at ingest so that
// ranking has a deterministic secondary sort key.
type Candidate struct {
	// ID is assigned by the pipeline when the candidate is ingested.
	ID string `json:"id"`

	// Name is the business name as reported by the directory.
	Name string `json:"name"`

	// Address is the formatted street address.
	Address string `json:"address,omitempty"`

	// Phone is the formatted phone number, when listed.
	Phone string `json:"phone,omitempty"`

	// Website is the listed website URL; empty when the business has none.
	Website string `json:"website,omitempty"`

	// Rating is the average review rating, 0 when unrated.
	Rating float64 `json:"rating,omitempty"`

	// ReviewsCount is the number of reviews behind the rating.
	ReviewsCount int `json:"reviews_count,omitempty"`

	// Categories are the directory's category tags for this business.
	Categories []string `json:"categories,omitempty"`

	// OwnerIdentified reports whether the directory record names an owner
	// or decision maker.
	OwnerIdentified bool `json:"owner_identified,omitempty"`
}

// Subscores are the four named components of a lead score, each in [0,100].
// ComplianceRisk counts against the combined score.
type Subscores struct {
	ICPFit         float64 `json:"icp_fit"`
	Pain           float64 `json:"pain"`
	Reachability   float64 `json:"reachability"`
	ComplianceRisk float64 `json:"compliance_risk"`
}

// Reason codes attached to scores and package suggestions. Codes are stable
// identifiers meant for programmatic filtering; human-readable rationale is
// the synthesis collaborator's job.
const (
	ReasonNoWebsite        = "NO_WEBSITE"
	ReasonNoBookingTool    = "NO_BOOKING_TOOL"
	ReasonNoChatWidget     = "NO_CHAT_WIDGET"
	ReasonNoSSL            = "NO_SSL"
	ReasonNotMobileFriendly = "NOT_MOBILE_FRIENDLY"
	ReasonHighReviewVolume = "HIGH_REVIEW_VOLUME"
	ReasonStrongRating     = "STRONG_RATING"
	ReasonPhoneListed      = "PHONE_LISTED"
	ReasonOwnerIdentified  = "OWNER_IDENTIFIED"
	ReasonLowEvidence      = "LOW_EVIDENCE_CONFIDENCE"
	ReasonDNCRisk          = "DNC_RISK"
	ReasonVerticalMatch    = "VERTICAL_MATCH"
)

// Lead is a business candidate enriched with audit output, score, subscores,
// and reason codes. Created by the scoring engine; never mutated by the
// audit engine.
type Lead struct {
	// Candidate is the business identity the lead was built from.
	Candidate Candidate `json:"candidate"`

	// Audit is the audit result for the candidate's website, or nil when
	// the audit stage did not reach this candidate.
	Audit *AuditResult `json:"audit,omitempty"`

	// Score is the combined lead score in [0,100].
	Score float64 `json:"score"`

	// Subscores are the four named score components.
	Subscores Subscores `json:"subscores"`

	// ReasonCodes explain the score.
	ReasonCodes []string `json:"reason_codes,omitempty"`

	// Suggestions are the recommended packages for this lead.
	Suggestions []PackageSuggestion `json:"suggestions,omitempty"`
}
