package scoring

import (
	"reflect"
	"testing"

	"github.com/leadlens/leadlens/internal/model"
)

func TestRecommend_NoWebsite(t *testing.T) {
	t.Parallel()

	lead := model.Lead{Candidate: model.Candidate{ID: "c1", Name: "Shadeless Blinds"}}
	suggestions := Recommend(lead)

	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1: %+v", len(suggestions), suggestions)
	}
	s := suggestions[0]
	if s.Code != model.PackageWebPresence {
		t.Errorf("code = %q, want %q", s.Code, model.PackageWebPresence)
	}
	if s.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", s.Confidence)
	}
	if s.Status != model.SuggestionDraft {
		t.Errorf("status = %q, want %q", s.Status, model.SuggestionDraft)
	}
	if !containsReason(s.ReasonCodes, model.ReasonNoWebsite) {
		t.Errorf("reason codes %v missing %s", s.ReasonCodes, model.ReasonNoWebsite)
	}
}

func TestRecommend_WebsiteWithoutBooking(t *testing.T) {
	t.Parallel()

	lead := model.Lead{
		Candidate: model.Candidate{ID: "c1", Website: "https://x.example", ReviewsCount: 12},
		Audit:     auditWithAbsences(t, "https://x.example", model.FeatureOnlineBooking),
	}
	suggestions := Recommend(lead)

	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1: %+v", len(suggestions), suggestions)
	}
	s := suggestions[0]
	if s.Code != model.PackageWebPresence {
		t.Errorf("code = %q, want %q", s.Code, model.PackageWebPresence)
	}
	if s.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6 for website-present no-booking", s.Confidence)
	}
}

func TestRecommend_ReceptionistForBusyNoBooking(t *testing.T) {
	t.Parallel()

	lead := model.Lead{
		Candidate: model.Candidate{ID: "c1", Website: "https://x.example", Rating: 4.8, ReviewsCount: 130},
		Audit:     auditWithAbsences(t, "https://x.example", model.FeatureOnlineBooking),
	}
	suggestions := Recommend(lead)

	codes := make([]model.PackageCode, 0, len(suggestions))
	for _, s := range suggestions {
		codes = append(codes, s.Code)
	}
	want := []model.PackageCode{model.PackageReceptionist, model.PackageWebPresence, model.PackageFollowUp}
	if !reflect.DeepEqual(codes, want) {
		t.Fatalf("suggestion codes = %v, want %v", codes, want)
	}

	if suggestions[0].Confidence != 0.75 {
		t.Errorf("receptionist confidence = %v, want 0.75", suggestions[0].Confidence)
	}
	if !containsReason(suggestions[0].ReasonCodes, model.ReasonHighReviewVolume) {
		t.Errorf("receptionist reasons %v missing %s", suggestions[0].ReasonCodes, model.ReasonHighReviewVolume)
	}
	if !containsReason(suggestions[2].ReasonCodes, model.ReasonStrongRating) {
		t.Errorf("follow-up reasons %v missing %s for a 4.8 rating", suggestions[2].ReasonCodes, model.ReasonStrongRating)
	}
}

func TestRecommend_FollowupOnVolumeAlone(t *testing.T) {
	t.Parallel()

	// Booking is present, so only review volume drives a suggestion.
	audit := model.NewAuditResult("https://x.example")
	audit.HasWebsite = true
	det := audit.Feature(model.FeatureOnlineBooking)
	det.Found = true
	det.VendorDetected = "calendly"

	lead := model.Lead{
		Candidate: model.Candidate{ID: "c1", Website: "https://x.example", Rating: 4.2, ReviewsCount: 80},
		Audit:     audit,
	}
	suggestions := Recommend(lead)

	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1: %+v", len(suggestions), suggestions)
	}
	if suggestions[0].Code != model.PackageFollowUp {
		t.Errorf("code = %q, want %q", suggestions[0].Code, model.PackageFollowUp)
	}
}

func TestRecommend_ConfidenceFloor(t *testing.T) {
	t.Parallel()

	// A quiet, fully tooled business triggers no rule at all; and no
	// returned suggestion may ever dip under the floor.
	audit := model.NewAuditResult("https://x.example")
	audit.HasWebsite = true
	audit.Feature(model.FeatureOnlineBooking).Found = true

	lead := model.Lead{
		Candidate: model.Candidate{ID: "c1", Website: "https://x.example", ReviewsCount: 3},
		Audit:     audit,
	}
	if got := Recommend(lead); got != nil {
		t.Errorf("Recommend() = %+v, want nil for a fully tooled quiet business", got)
	}

	cases := []model.Lead{
		{Candidate: model.Candidate{ID: "c2"}},
		{Candidate: model.Candidate{ID: "c3", Website: "https://y.example", ReviewsCount: 200},
			Audit: auditWithAbsences(t, "https://y.example", model.FeatureOnlineBooking)},
	}
	for _, l := range cases {
		for _, s := range Recommend(l) {
			if s.Confidence < model.MinSuggestionConfidence {
				t.Errorf("suggestion %q confidence %v below floor %v", s.Code, s.Confidence, model.MinSuggestionConfidence)
			}
		}
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	t.Parallel()

	lead := model.Lead{
		Candidate: model.Candidate{ID: "c1", Website: "https://x.example", Rating: 4.9, ReviewsCount: 300},
		Audit:     auditWithAbsences(t, "https://x.example", model.FeatureOnlineBooking, model.FeatureChatWidget),
	}
	first := Recommend(lead)
	second := Recommend(lead)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Recommend() not deterministic:\n%+v\n%+v", first, second)
	}
}
