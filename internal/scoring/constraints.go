package scoring

import "github.com/leadlens/leadlens/internal/model"

// PassesMust reports whether the candidate satisfies every predicate in the
// must list. Must predicates are ANDed; an empty list passes everything.
func PassesMust(set model.ConstraintSet, c model.Candidate, audit *model.AuditResult) bool {
	for _, p := range set.Must {
		if !EvaluatePredicate(p, c, audit) {
			return false
		}
	}
	return true
}

// IsExcluded reports whether any exclude predicate matches the candidate.
func IsExcluded(set model.ConstraintSet, c model.Candidate, audit *model.AuditResult) bool {
	for _, p := range set.Exclude {
		if p.IsZero() {
			// A zero predicate matches everything; excluding on it would
			// empty the result set, so it is ignored.
			continue
		}
		if EvaluatePredicate(p, c, audit) {
			return true
		}
	}
	return false
}

// OptionalMatches counts the optional predicates the candidate satisfies.
// Optional predicates never filter; the count feeds the ICP-fit subscore.
func OptionalMatches(set model.ConstraintSet, c model.Candidate, audit *model.AuditResult) int {
	var n int
	for _, p := range set.Optional {
		if p.IsZero() {
			continue
		}
		if EvaluatePredicate(p, c, audit) {
			n++
		}
	}
	return n
}

// EvaluatePredicate reports whether every assertion the predicate carries
// holds for the candidate. Nil fields assert nothing and always hold.
//
// Design decision: Assertions the directory record cannot answer
// (years_in_business_gt, employee_count_range) are treated as satisfied
// rather than failed. Failing them would silently empty every result set
// that uses one, which is worse than admitting a candidate we cannot
// disprove.
func EvaluatePredicate(p model.ConstraintPredicate, c model.Candidate, audit *model.AuditResult) bool {
	if p.NoWebsite != nil {
		hasNone := c.Website == "" && (audit == nil || !audit.HasWebsite)
		if *p.NoWebsite != hasNone {
			return false
		}
	}
	if p.HasChatbot != nil && !featureAssertionHolds(*p.HasChatbot, audit, model.FeatureChatWidget) {
		return false
	}
	if p.HasOnlineBooking != nil && !featureAssertionHolds(*p.HasOnlineBooking, audit, model.FeatureOnlineBooking) {
		return false
	}
	if p.OwnerIdentified != nil && *p.OwnerIdentified != c.OwnerIdentified {
		return false
	}
	if p.ReviewsCountGT != nil && c.ReviewsCount <= *p.ReviewsCountGT {
		return false
	}
	if p.ReviewsCountLT != nil && c.ReviewsCount >= *p.ReviewsCountLT {
		return false
	}
	if p.RatingGT != nil && c.Rating <= *p.RatingGT {
		return false
	}
	if p.RatingLT != nil && c.Rating >= *p.RatingLT {
		return false
	}
	return true
}

// featureAssertionHolds checks a boolean feature assertion against the
// audit. A positive assertion needs a positive detection. A negative
// assertion needs confirmed absence: a detection that is not found AND
// carries explicit negative evidence, or no website at all. A feature that
// is merely unobserved satisfies neither direction of the assertion except
// when there is nothing to observe.
func featureAssertionHolds(want bool, audit *model.AuditResult, f model.Feature) bool {
	if audit == nil {
		// No audit reached this candidate: a positive assertion cannot be
		// confirmed and a negative one defaults to holding, matching the
		// no-website case.
		return !want
	}
	if want {
		return audit.FeatureFound(f)
	}
	if !audit.HasWebsite {
		return true
	}
	return ConfirmedAbsent(audit, f)
}

// ConfirmedAbsent reports whether the audit carries explicit negative
// evidence for the feature. A false detection without a negative entry is
// insufficient evidence, not confirmed absence.
func ConfirmedAbsent(audit *model.AuditResult, f model.Feature) bool {
	det, ok := audit.Features[f]
	if !ok || det == nil || det.Found {
		return false
	}
	for _, e := range det.Evidence {
		if e.Status == model.StatusNotFound {
			return true
		}
	}
	return false
}
