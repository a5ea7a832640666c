package scoring

import (
	"reflect"
	"testing"

	"github.com/leadlens/leadlens/internal/model"
)

// auditWithAbsences builds an audit result where the given features carry
// confirmed negative evidence, as after two successful path fetches.
func auditWithAbsences(t *testing.T, url string, absent ...model.Feature) *model.AuditResult {
	t.Helper()
	a := model.NewAuditResult(url)
	a.HasWebsite = true
	a.PathsAttempted = 2
	a.PathsSucceeded = 2
	a.ConfidenceScore = 1.0

	ssl := a.Feature(model.FeatureSSL)
	ssl.Found = true
	ssl.Evidence = append(ssl.Evidence,
		model.NewEvidence(model.CheckWebsite, model.SourceHeaders, url, model.StatusFound, 1.0))

	for _, f := range absent {
		det := a.Feature(f)
		det.Evidence = append(det.Evidence,
			model.NewEvidence(model.CheckFeatures, model.SourceRenderedContent, url, model.StatusNotFound, 0.7))
	}
	return a
}

func TestScore_Determinism(t *testing.T) {
	t.Parallel()

	in := Input{
		Candidate: model.Candidate{
			ID:           "cand-1",
			Name:         "Smile Dental",
			Phone:        "+1 803 555 0101",
			Website:      "https://smiledental.example",
			Rating:       4.7,
			ReviewsCount: 120,
			Categories:   []string{"Dentist", "Cosmetic Dentist"},
		},
		Audit:    auditWithAbsences(t, "https://smiledental.example", model.FeatureOnlineBooking, model.FeatureChatWidget),
		Vertical: model.VerticalDentist,
		Weights:  DefaultWeights(),
	}

	score1, sub1, reasons1 := Score(in)
	score2, sub2, reasons2 := Score(in)

	if score1 != score2 {
		t.Errorf("scores differ across identical calls: %v vs %v", score1, score2)
	}
	if sub1 != sub2 {
		t.Errorf("subscores differ across identical calls: %+v vs %+v", sub1, sub2)
	}
	if !reflect.DeepEqual(reasons1, reasons2) {
		t.Errorf("reason codes differ across identical calls: %v vs %v", reasons1, reasons2)
	}
}

func TestScore_Bounds(t *testing.T) {
	t.Parallel()

	inputs := []Input{
		{},
		{Candidate: model.Candidate{ID: "c1"}},
		{
			Candidate: model.Candidate{
				ID: "c2", Phone: "555", Website: "https://x.example",
				OwnerIdentified: true, Rating: 5.0, ReviewsCount: 999,
				Categories: []string{"HVAC Contractor"},
			},
			Audit:           auditWithAbsences(t, "https://x.example", model.FeatureOnlineBooking, model.FeatureChatWidget, model.FeatureMobileResponsive),
			Vertical:        model.VerticalHVAC,
			OptionalMatches: 10,
		},
	}

	for _, in := range inputs {
		score, sub, _ := Score(in)
		if score < 0 || score > 100 {
			t.Errorf("score %v out of [0,100] for %+v", score, in.Candidate)
		}
		for name, v := range map[string]float64{
			"icp_fit": sub.ICPFit, "pain": sub.Pain,
			"reachability": sub.Reachability, "compliance_risk": sub.ComplianceRisk,
		} {
			if v < 0 || v > 100 {
				t.Errorf("subscore %s = %v out of [0,100]", name, v)
			}
		}
	}
}

func TestScore_NoWebsitePain(t *testing.T) {
	t.Parallel()

	_, sub, reasons := Score(Input{
		Candidate: model.Candidate{ID: "c1", Name: "Shadeless Blinds"},
	})

	if sub.Pain != 85 {
		t.Errorf("pain = %v, want 85 for a business with no website", sub.Pain)
	}
	if !containsReason(reasons, model.ReasonNoWebsite) {
		t.Errorf("reason codes %v missing %s", reasons, model.ReasonNoWebsite)
	}
}

func TestScore_InsufficientEvidenceCarriesNoPain(t *testing.T) {
	t.Parallel()

	// Website exists, audit reached it, but only one path succeeded so no
	// feature absence was confirmed. Pain claims must not fire.
	a := model.NewAuditResult("https://x.example")
	a.HasWebsite = true
	a.PathsAttempted = 3
	a.PathsSucceeded = 1
	a.ConfidenceScore = 1.0 / 3.0
	ssl := a.Feature(model.FeatureSSL)
	ssl.Found = true
	ssl.Evidence = append(ssl.Evidence,
		model.NewEvidence(model.CheckWebsite, model.SourceHeaders, "https://x.example", model.StatusFound, 1.0))

	_, sub, reasons := Score(Input{
		Candidate: model.Candidate{ID: "c1", Website: "https://x.example"},
		Audit:     a,
	})

	if containsReason(reasons, model.ReasonNoBookingTool) {
		t.Error("NO_BOOKING_TOOL asserted without confirmed absence")
	}
	if containsReason(reasons, model.ReasonNoChatWidget) {
		t.Error("NO_CHAT_WIDGET asserted without confirmed absence")
	}
	if sub.Pain > 50 {
		t.Errorf("pain = %v with insufficient evidence, want low", sub.Pain)
	}
}

func TestScore_LowConfidenceDampensPain(t *testing.T) {
	t.Parallel()

	full := auditWithAbsences(t, "https://x.example", model.FeatureOnlineBooking, model.FeatureChatWidget)
	weak := auditWithAbsences(t, "https://x.example", model.FeatureOnlineBooking, model.FeatureChatWidget)
	weak.ConfidenceScore = 0.25

	candidate := model.Candidate{ID: "c1", Website: "https://x.example"}
	_, subFull, _ := Score(Input{Candidate: candidate, Audit: full})
	_, subWeak, reasons := Score(Input{Candidate: candidate, Audit: weak})

	if subWeak.Pain >= subFull.Pain {
		t.Errorf("low-confidence pain %v not below full-confidence pain %v", subWeak.Pain, subFull.Pain)
	}
	if !containsReason(reasons, model.ReasonLowEvidence) {
		t.Errorf("reason codes %v missing %s", reasons, model.ReasonLowEvidence)
	}
}

func TestScore_WeightsChangeRanking(t *testing.T) {
	t.Parallel()

	in := Input{
		Candidate: model.Candidate{ID: "c1", Phone: "555-0100", ReviewsCount: 10},
	}

	painHeavy := in
	painHeavy.Weights = model.Weights{ICPFit: 0.1, Pain: 0.7, Reachability: 0.1, ComplianceRisk: 0.1}
	reachHeavy := in
	reachHeavy.Weights = model.Weights{ICPFit: 0.1, Pain: 0.1, Reachability: 0.7, ComplianceRisk: 0.1}

	p, _, _ := Score(painHeavy)
	r, _, _ := Score(reachHeavy)
	if p == r {
		t.Error("distinct weight profiles produced identical scores for an asymmetric candidate")
	}
}

func TestRankLeads_DeterministicTieBreak(t *testing.T) {
	t.Parallel()

	leads := []model.Lead{
		{Candidate: model.Candidate{ID: "cand-b"}, Score: 70},
		{Candidate: model.Candidate{ID: "cand-c"}, Score: 90},
		{Candidate: model.Candidate{ID: "cand-a"}, Score: 70},
	}
	RankLeads(leads)

	got := []string{leads[0].Candidate.ID, leads[1].Candidate.ID, leads[2].Candidate.ID}
	want := []string{"cand-c", "cand-a", "cand-b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ranking order = %v, want %v", got, want)
	}
}

func TestEvaluatePredicate(t *testing.T) {
	t.Parallel()

	boolPtr := func(b bool) *bool { return &b }
	intPtr := func(n int) *int { return &n }
	floatPtr := func(f float64) *float64 { return &f }

	withBooking := model.NewAuditResult("https://x.example")
	withBooking.HasWebsite = true
	det := withBooking.Feature(model.FeatureOnlineBooking)
	det.Found = true
	det.Evidence = append(det.Evidence,
		model.NewEvidence(model.CheckBooking, model.SourceVendorSignature, "https://x.example", model.StatusFound, 0.95))

	noBooking := auditWithAbsences(t, "https://y.example", model.FeatureOnlineBooking)

	tests := []struct {
		name      string
		predicate model.ConstraintPredicate
		candidate model.Candidate
		audit     *model.AuditResult
		want      bool
	}{
		{
			name:      "no_website true matches sites without websites",
			predicate: model.ConstraintPredicate{NoWebsite: boolPtr(true)},
			candidate: model.Candidate{ID: "c1"},
			want:      true,
		},
		{
			name:      "no_website true rejects sites with websites",
			predicate: model.ConstraintPredicate{NoWebsite: boolPtr(true)},
			candidate: model.Candidate{ID: "c1", Website: "https://x.example"},
			audit:     withBooking,
			want:      false,
		},
		{
			name:      "has_online_booking true needs a positive detection",
			predicate: model.ConstraintPredicate{HasOnlineBooking: boolPtr(true)},
			candidate: model.Candidate{ID: "c1", Website: "https://x.example"},
			audit:     withBooking,
			want:      true,
		},
		{
			name:      "has_online_booking false needs confirmed absence",
			predicate: model.ConstraintPredicate{HasOnlineBooking: boolPtr(false)},
			candidate: model.Candidate{ID: "c1", Website: "https://y.example"},
			audit:     noBooking,
			want:      true,
		},
		{
			name:      "has_online_booking false fails on a positive detection",
			predicate: model.ConstraintPredicate{HasOnlineBooking: boolPtr(false)},
			candidate: model.Candidate{ID: "c1", Website: "https://x.example"},
			audit:     withBooking,
			want:      false,
		},
		{
			name:      "reviews_count_gt boundary is strict",
			predicate: model.ConstraintPredicate{ReviewsCountGT: intPtr(50)},
			candidate: model.Candidate{ID: "c1", ReviewsCount: 50},
			want:      false,
		},
		{
			name:      "rating_lt passes under the bound",
			predicate: model.ConstraintPredicate{RatingLT: floatPtr(4.0)},
			candidate: model.Candidate{ID: "c1", Rating: 3.2},
			want:      true,
		},
		{
			name:      "unverifiable assertions are skipped",
			predicate: model.ConstraintPredicate{YearsInBusinessGT: intPtr(5)},
			candidate: model.Candidate{ID: "c1"},
			want:      true,
		},
		{
			name:      "empty predicate matches everything",
			predicate: model.ConstraintPredicate{},
			candidate: model.Candidate{ID: "c1"},
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EvaluatePredicate(tt.predicate, tt.candidate, tt.audit); got != tt.want {
				t.Errorf("EvaluatePredicate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConstraintSetHelpers(t *testing.T) {
	t.Parallel()

	boolPtr := func(b bool) *bool { return &b }
	intPtr := func(n int) *int { return &n }

	set := model.ConstraintSet{
		Must:     []model.ConstraintPredicate{{NoWebsite: boolPtr(true)}},
		Optional: []model.ConstraintPredicate{{OwnerIdentified: boolPtr(true)}, {ReviewsCountGT: intPtr(10)}},
		Exclude:  []model.ConstraintPredicate{{ReviewsCountGT: intPtr(500)}},
	}

	match := model.Candidate{ID: "c1", OwnerIdentified: true, ReviewsCount: 40}
	if !PassesMust(set, match, nil) {
		t.Error("candidate without website failed a no_website must")
	}
	if IsExcluded(set, match, nil) {
		t.Error("candidate under the exclude threshold was excluded")
	}
	if got := OptionalMatches(set, match, nil); got != 2 {
		t.Errorf("OptionalMatches = %d, want 2", got)
	}

	famous := model.Candidate{ID: "c2", ReviewsCount: 600}
	if !IsExcluded(set, famous, nil) {
		t.Error("candidate over the exclude threshold was not excluded")
	}
}

func containsReason(reasons []string, code string) bool {
	for _, r := range reasons {
		if r == code {
			return true
		}
	}
	return false
}
