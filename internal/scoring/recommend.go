package scoring

import "github.com/leadlens/leadlens/internal/model"

// Suggestion confidences per rule. Values below the floor in
// model.MinSuggestionConfidence never survive, so every rule here sits
// above it on purpose.
const (
	noWebsiteConfidence       = 0.90
	receptionistConfidence    = 0.75
	followupConfidence        = 0.65
	weakWebPresenceConfidence = 0.60
)

// Recommend maps one scored lead to its package suggestions. Pure and
// deterministic: rule order is fixed and every produced suggestion carries
// the reason codes that fired it. Suggestions below the confidence floor
// are dropped before returning.
func Recommend(lead model.Lead) []model.PackageSuggestion {
	var suggestions []model.PackageSuggestion

	hasWebsite := lead.Candidate.Website != "" || (lead.Audit != nil && lead.Audit.HasWebsite)

	if !hasWebsite {
		suggestions = append(suggestions, model.PackageSuggestion{
			Code:        model.PackageWebPresence,
			ReasonCodes: []string{model.ReasonNoWebsite},
			Confidence:  noWebsiteConfidence,
			Status:      model.SuggestionDraft,
		})
	} else if lead.Audit != nil && ConfirmedAbsent(lead.Audit, model.FeatureOnlineBooking) {
		// A business fielding real review volume with no booking tool is
		// the strongest receptionist fit. With thinner volume the site
		// itself is the problem, at lower confidence.
		if lead.Candidate.ReviewsCount >= HighReviewThreshold {
			suggestions = append(suggestions, model.PackageSuggestion{
				Code:        model.PackageReceptionist,
				ReasonCodes: []string{model.ReasonNoBookingTool, model.ReasonHighReviewVolume},
				Confidence:  receptionistConfidence,
				Status:      model.SuggestionDraft,
			})
		}
		suggestions = append(suggestions, model.PackageSuggestion{
			Code:        model.PackageWebPresence,
			ReasonCodes: []string{model.ReasonNoBookingTool},
			Confidence:  weakWebPresenceConfidence,
			Status:      model.SuggestionDraft,
		})
	}

	if lead.Candidate.ReviewsCount >= HighReviewThreshold {
		reasons := []string{model.ReasonHighReviewVolume}
		if lead.Candidate.Rating >= StrongRatingThreshold {
			reasons = append(reasons, model.ReasonStrongRating)
		}
		suggestions = append(suggestions, model.PackageSuggestion{
			Code:        model.PackageFollowUp,
			ReasonCodes: reasons,
			Confidence:  followupConfidence,
			Status:      model.SuggestionDraft,
		})
	}

	return applyConfidenceFloor(suggestions)
}

// applyConfidenceFloor drops suggestions below the fixed confidence floor.
func applyConfidenceFloor(suggestions []model.PackageSuggestion) []model.PackageSuggestion {
	kept := suggestions[:0]
	for _, s := range suggestions {
		if s.Confidence >= model.MinSuggestionConfidence {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
