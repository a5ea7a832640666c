package scoring

import (
	"sort"
	"strings"

	"github.com/leadlens/leadlens/internal/model"
)

const (
	// HighReviewThreshold is the review count treated as "high volume" by
	// both the pain subscore and the recommendation rules.
	HighReviewThreshold = 50

	// StrongRatingThreshold is the average rating treated as strong.
	StrongRatingThreshold = 4.5

	// lowEvidenceThreshold is the audit confidence below which pain claims
	// are dampened.
	lowEvidenceThreshold = 0.5

	// optionalMatchBonus is the ICP-fit bonus per satisfied optional
	// predicate.
	optionalMatchBonus = 5.0
)

// DefaultWeights returns the subscore weights used when the query names no
// profile and carries no override.
func DefaultWeights() model.Weights {
	return model.Weights{
		ICPFit:         0.30,
		Pain:           0.35,
		Reachability:   0.25,
		ComplianceRisk: 0.10,
	}
}

// Input bundles everything the scoring function reads. Fields beyond
// Candidate are optional; the zero value for each is a meaningful "not
// known" state.
type Input struct {
	// Candidate is the business record under scoring.
	Candidate model.Candidate

	// Audit is the evidence for the candidate's website, nil when the
	// audit stage did not reach it.
	Audit *model.AuditResult

	// Vertical is the query's vertical, used for category fit.
	Vertical model.Vertical

	// OptionalMatches counts the query's satisfied optional predicates.
	OptionalMatches int

	// Weights combine the subscores. A zero value falls back to
	// DefaultWeights.
	Weights model.Weights
}

// Score computes the lead score, subscores, and reason codes for one
// candidate. It is a pure function: identical input yields identical output.
//
// Each subscore lives in [0,100]. The combined score is the weighted sum of
// the first three minus the weighted compliance risk, clamped to [0,100].
func Score(in Input) (float64, model.Subscores, []string) {
	weights := in.Weights
	if weights.Sum() == 0 {
		weights = DefaultWeights()
	}

	var reasons []string
	sub := model.Subscores{}

	sub.ICPFit, reasons = icpFit(in, reasons)
	sub.Pain, reasons = pain(in, reasons)
	sub.Reachability, reasons = reachability(in, reasons)
	sub.ComplianceRisk, reasons = complianceRisk(in, reasons)

	score := sub.ICPFit*weights.ICPFit +
		sub.Pain*weights.Pain +
		sub.Reachability*weights.Reachability -
		sub.ComplianceRisk*weights.ComplianceRisk

	return clamp(score), sub, reasons
}

// icpFit measures how well the candidate matches the ideal customer
// profile: category fit, rating strength, and review volume.
func icpFit(in Input, reasons []string) (float64, []string) {
	score := 50.0

	if verticalMatches(in.Vertical, in.Candidate.Categories) {
		score += 15
		reasons = append(reasons, model.ReasonVerticalMatch)
	}
	if in.Candidate.Rating >= StrongRatingThreshold && in.Candidate.ReviewsCount > 0 {
		score += 20
		reasons = append(reasons, model.ReasonStrongRating)
	}
	if in.Candidate.ReviewsCount >= HighReviewThreshold {
		score += 15
		reasons = append(reasons, model.ReasonHighReviewVolume)
	}
	score += float64(in.OptionalMatches) * optionalMatchBonus

	return clamp(score), reasons
}

// pain measures the absence of tooling the business should have. Absence
// claims require corroboration: a feature merely unobserved contributes
// nothing.
func pain(in Input, reasons []string) (float64, []string) {
	if in.Candidate.Website == "" && (in.Audit == nil || !in.Audit.HasWebsite) {
		reasons = append(reasons, model.ReasonNoWebsite)
		return 85, reasons
	}
	if in.Audit == nil {
		// Website exists but was never audited: no evidence either way.
		reasons = append(reasons, model.ReasonLowEvidence)
		return 0, reasons
	}

	var score float64
	if ConfirmedAbsent(in.Audit, model.FeatureOnlineBooking) {
		score += 35
		reasons = append(reasons, model.ReasonNoBookingTool)
	}
	if ConfirmedAbsent(in.Audit, model.FeatureChatWidget) {
		score += 25
		reasons = append(reasons, model.ReasonNoChatWidget)
	}
	if sslAbsent(in.Audit) {
		score += 20
		reasons = append(reasons, model.ReasonNoSSL)
	}
	if ConfirmedAbsent(in.Audit, model.FeatureMobileResponsive) {
		score += 20
		reasons = append(reasons, model.ReasonNotMobileFriendly)
	}

	if in.Audit.ConfidenceScore < lowEvidenceThreshold {
		// Weak evidence halves the pain claims rather than dropping them.
		score /= 2
		reasons = append(reasons, model.ReasonLowEvidence)
	}
	return clamp(score), reasons
}

// reachability measures how contactable the business is.
func reachability(in Input, reasons []string) (float64, []string) {
	var score float64
	if in.Candidate.Phone != "" {
		score += 40
		reasons = append(reasons, model.ReasonPhoneListed)
	}
	if in.Candidate.OwnerIdentified {
		score += 30
		reasons = append(reasons, model.ReasonOwnerIdentified)
	}
	if in.Candidate.Website != "" {
		score += 20
	}
	if in.Candidate.ReviewsCount > 0 {
		score += 10
	}
	return clamp(score), reasons
}

// complianceRisk estimates outreach risk. Cold-calling a listed phone
// number carries do-not-contact exposure; everything else is baseline.
func complianceRisk(in Input, reasons []string) (float64, []string) {
	if in.Candidate.Phone != "" {
		reasons = append(reasons, model.ReasonDNCRisk)
		return 30, reasons
	}
	return 5, reasons
}

// sslAbsent reports whether the audit classified the site as plain HTTP.
// The SSL classification is syntactic and always recorded, so unlike the
// scanned features it needs no multi-path corroboration.
func sslAbsent(audit *model.AuditResult) bool {
	det, ok := audit.Features[model.FeatureSSL]
	return ok && det != nil && !det.Found && len(det.Evidence) > 0
}

// verticalMatches reports whether any candidate category names the query
// vertical. The generic vertical matches no category.
func verticalMatches(v model.Vertical, categories []string) bool {
	if v == "" || v == model.VerticalGeneric {
		return false
	}
	needle := strings.ReplaceAll(string(v), "_", " ")
	for _, cat := range categories {
		if strings.Contains(strings.ToLower(cat), needle) {
			return true
		}
	}
	return false
}

// RankLeads sorts leads by descending score, breaking ties by ascending
// candidate ID so that ranking is deterministic across runs.
func RankLeads(leads []model.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		if leads[i].Score != leads[j].Score {
			return leads[i].Score > leads[j].Score
		}
		return leads[i].Candidate.ID < leads[j].Candidate.ID
	})
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
