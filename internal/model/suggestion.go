package model

// PackageCode identifies one of the three fixed action packages.
type PackageCode string

// The fixed package codes.
const (
	// PackageWebPresence stands up or rebuilds the business's web presence.
	PackageWebPresence PackageCode = "web_presence"

	// PackageReceptionist provisions an AI receptionist / SDR that answers
	// calls and books appointments.
	PackageReceptionist PackageCode = "ai_receptionist"

	// PackageFollowUp automates review and customer follow-up messaging.
	PackageFollowUp PackageCode = "followup_automation"
)

// PackageCodes lists every package code in stable order.
var PackageCodes = []PackageCode{
	PackageWebPresence,
	PackageReceptionist,
	PackageFollowUp,
}

// Valid reports whether c is a known package code.
func (c PackageCode) Valid() bool {
	switch c {
	case PackageWebPresence, PackageReceptionist, PackageFollowUp:
		return true
	}
	return false
}

// SuggestionStatus is the lifecycle state of a package suggestion.
type SuggestionStatus string

// Suggestion statuses. Suggestions are created as drafts; activation is a
// human decision made outside this core.
const (
	SuggestionDraft  SuggestionStatus = "draft"
	SuggestionActive SuggestionStatus = "active"
)

// MinSuggestionConfidence is the floor below which suggestions are dropped.
// The recommendation engine never returns a suggestion under this value.
const MinSuggestionConfidence = 0.55

// PackageSuggestion is a recommended action package for one lead, produced
// deterministically from the scored candidate. Multiple suggestions may
// coexist per candidate.
type PackageSuggestion struct {
	Code        PackageCode      `json:"code"`
	ReasonCodes []string         `json:"reason_codes,omitempty"`
	Confidence  float64          `json:"confidence"`
	Status      SuggestionStatus `json:"status"`
}
