package model

// SchemaVersion is the single supported query schema version.
// Queries carrying any other version are rejected at validation time.
const SchemaVersion = 1

// Vertical is a supported business category.
//
// Design decision: We use typed string constants rather than iota integers
// because verticals appear verbatim in query files and reports; a closed
// constant set still lets the validator reject unknown values.
type Vertical string

// Supported verticals. VerticalGeneric is the default when a query does not
// name one.
const (
	VerticalGeneric    Vertical = "generic"
	VerticalDentist    Vertical = "dentist"
	VerticalHVAC       Vertical = "hvac"
	VerticalPlumber    Vertical = "plumber"
	VerticalRestaurant Vertical = "restaurant"
	VerticalSalon      Vertical = "salon"
	VerticalLawFirm    Vertical = "law_firm"
	VerticalAutoRepair Vertical = "auto_repair"
)

// Verticals lists every supported vertical in declaration order.
// The order is stable and meaningful: the constraint extractor resolves
// synonym ties by first match over this order.
var Verticals = []Vertical{
	VerticalGeneric,
	VerticalDentist,
	VerticalHVAC,
	VerticalPlumber,
	VerticalRestaurant,
	VerticalSalon,
	VerticalLawFirm,
	VerticalAutoRepair,
}

// Valid reports whether v is a supported vertical.
func (v Vertical) Valid() bool {
	for _, known := range Verticals {
		if v == known {
			return true
		}
	}
	return false
}

// SortBy selects the ordering of the final lead list.
type SortBy string

// Supported sort orders.
const (
	SortByScore   SortBy = "score"
	SortByRating  SortBy = "rating"
	SortByReviews SortBy = "reviews_count"
	SortByName    SortBy = "name"
)

// Valid reports whether s is a supported sort order.
func (s SortBy) Valid() bool {
	switch s {
	case SortByScore, SortByRating, SortByReviews, SortByName:
		return true
	}
	return false
}

// OutputContract selects the export format of the final lead list.
type OutputContract string

// Supported output contracts. Excel is accepted by the validator but
// rendered as CSV; spreadsheet formatting belongs to the UI layer.
const (
	OutputCSV   OutputContract = "csv"
	OutputJSON  OutputContract = "json"
	OutputExcel OutputContract = "excel"
)

// Valid reports whether o is a supported output contract.
func (o OutputContract) Valid() bool {
	switch o {
	case OutputCSV, OutputJSON, OutputExcel:
		return true
	}
	return false
}

// ComplianceRespectDNC is the compliance flag requiring do-not-contact
// lists to be honored by any downstream outreach. It is present in every
// validated query by default.
const ComplianceRespectDNC = "respect_do_not_contact"

// Query is the structured search request. It is immutable once validated;
// the validator returns a fully-defaulted copy rather than mutating input.
type Query struct {
	// Version must equal SchemaVersion.
	Version int `json:"version"`

	// Vertical is the business category to search. Defaults to generic.
	Vertical Vertical `json:"vertical,omitempty"`

	// Geo describes where to search.
	Geo Geo `json:"geo"`

	// Constraints holds the must/optional/exclude predicate lists.
	Constraints ConstraintSet `json:"constraints,omitempty"`

	// ResultSize bounds how many leads the caller wants.
	ResultSize ResultSize `json:"result_size,omitempty"`

	// Scoring optionally overrides subscore weights or names a profile.
	Scoring *ScoringSpec `json:"scoring,omitempty"`

	// SortBy orders the final lead list. Defaults to score.
	SortBy SortBy `json:"sort_by,omitempty"`

	// Output describes the export contract.
	Output Output `json:"output,omitempty"`

	// Notify configures on-complete notification.
	Notify Notify `json:"notify,omitempty"`

	// ComplianceFlags always includes ComplianceRespectDNC after validation.
	ComplianceFlags []string `json:"compliance_flags,omitempty"`
}

// Geo describes the geographic scope of a query.
type Geo struct {
	// City is the search center. Required.
	City string `json:"city"`

	// State is the 2-letter state code, normalized to uppercase.
	// Full state names are mapped to codes before length validation.
	State string `json:"state"`

	// RadiusKM is the search radius in kilometers, in [1,100]. Defaults to 25.
	RadiusKM int `json:"radius_km,omitempty"`

	// ZipCodes optionally narrows the search to specific zip codes.
	ZipCodes []string `json:"zip_codes,omitempty"`

	// Neighborhoods optionally narrows the search to named neighborhoods.
	Neighborhoods []string `json:"neighborhoods,omitempty"`
}

// ConstraintSet groups predicates by how they affect the result set:
// must predicates are ANDed filters, optional predicates influence scoring
// only, and exclude predicates remove matches.
type ConstraintSet struct {
	Must     []ConstraintPredicate `json:"must,omitempty"`
	Optional []ConstraintPredicate `json:"optional,omitempty"`
	Exclude  []ConstraintPredicate `json:"exclude,omitempty"`
}

// ConstraintPredicate is a sparse record of named assertions. Every key is
// independently optional; a predicate with zero keys matches everything and
// is meaningless but not invalid.
//
/// Design decision: Pointer fields distinguish "no opinion" from an explicit
// false/zero. The deterministic extractor never sets a field it cannot
// support textually, so nil means the predicate is silent on that dimension.
type ConstraintPredicate struct {
	NoWebsite        *bool `json:"no_website,omitempty"`
	HasChatbot       *bool `json:"has_chatbot,omitempty"`
	HasOnlineBooking *bool `json:"has_online_booking,omitempty"`
	OwnerIdentified  *bool `json:"owner_identified,omitempty"`

	ReviewsCountGT *int     `json:"reviews_count_gt,omitempty"`
	ReviewsCountLT *int     `json:"reviews_count_lt,omitempty"`
	RatingGT       *float64 `json:"rating_gt,omitempty"`
	RatingLT       *float64 `json:"rating_lt,omitempty"`

	YearsInBusinessGT  *int      `json:"years_in_business_gt,omitempty"`
	EmployeeCountRange *IntRange `json:"employee_count_range,omitempty"`
}

// IsZero reports whether the predicate asserts nothing.
func (p ConstraintPredicate) IsZero() bool {
	return p.NoWebsite == nil && p.HasChatbot == nil && p.HasOnlineBooking == nil &&
		p.OwnerIdentified == nil && p.ReviewsCountGT == nil && p.ReviewsCountLT == nil &&
		p.RatingGT == nil && p.RatingLT == nil && p.YearsInBusinessGT == nil &&
		p.EmployeeCountRange == nil
}

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ResultSize bounds the number of leads a caller wants.
type ResultSize struct {
	// Target is the desired lead count, in [10,1000]. Defaults to 250.
	Target int `json:"target,omitempty"`

	// Minimum, when set, records the smallest acceptable lead count.
	// It is advisory: an unmet minimum produces a warning, never a failure.
	Minimum *int `json:"minimum,omitempty"`
}

// ScoringSpec optionally overrides how subscores combine into the lead score.
type ScoringSpec struct {
	// Profile names a weight profile from the configuration file.
	Profile string `json:"profile,omitempty"`

	// Weights overrides the four subscore weights directly.
	// The weights conceptually sum to 1.0; the validator tolerates small
	// floating point drift but rejects grossly unnormalized sets.
	Weights *Weights `json:"weights,omitempty"`
}

// Weights holds the relative weight of each subscore family.
// ComplianceRisk is subtracted from the combined score, not added.
type Weights struct {
	ICPFit         float64 `json:"icp_fit"`
	Pain           float64 `json:"pain"`
	Reachability   float64 `json:"reachability"`
	ComplianceRisk float64 `json:"compliance_risk"`
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.ICPFit + w.Pain + w.Reachability + w.ComplianceRisk
}

// Output describes the export contract of the final lead list.
type Output struct {
	Contract OutputContract `json:"contract,omitempty"`
}

// Notify configures the on-complete notification. Delivery is an external
// collaborator's responsibility; the pipeline only records the request.
type Notify struct {
	OnComplete bool   `json:"on_complete,omitempty"`
	Webhook    string `json:"webhook,omitempty"`
	Email      string `json:"email,omitempty"`
}
