package model

import (
	"strings"
	"testing"
)

// TestTruncateSnippet tests snippet bounding behavior.
func TestTruncateSnippet(t *testing.T) {
	t.Parallel()

	t.Run("short snippet is unchanged", func(t *testing.T) {
		t.Parallel()

		if got := TruncateSnippet("book now"); got != "book now" {
			t.Errorf("expected unchanged snippet, got %q", got)
		}
	})

	t.Run("long snippet is truncated with marker", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("x", MaxSnippetLength*2)
		got := TruncateSnippet(long)

		if len(got) != MaxSnippetLength+3 {
			t.Errorf("expected length %d, got %d", MaxSnippetLength+3, len(got))
		}
		if !strings.HasSuffix(got, "...") {
			t.Error("expected truncation marker suffix")
		}
	})
}

// TestAuditResultFeatureFound tests nil-safety of feature lookups.
func TestAuditResultFeatureFound(t *testing.T) {
	t.Parallel()

	t.Run("nil result reports not found", func(t *testing.T) {
		t.Parallel()

		var a *AuditResult
		if a.FeatureFound(FeatureOnlineBooking) {
			t.Error("nil audit result must report feature not found")
		}
	})

	t.Run("new result has all five detections", func(t *testing.T) {
		t.Parallel()

		a := NewAuditResult("https://example.com")
		if len(a.Features) != len(Features) {
			t.Errorf("expected %d detections, got %d", len(Features), len(a.Features))
		}
		for _, f := range Features {
			if a.FeatureFound(f) {
				t.Errorf("feature %s should default to not found", f)
			}
		}
	})
}

// TestStageString tests the stage name mapping used in error tags.
func TestStageString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage Stage
		want  string
	}{
		{StagePlanning, "Planning"},
		{StageDiscovering, "Discovering"},
		{StageAuditing, "Auditing"},
		{StageScoring, "Scoring"},
		{StageSynthesizing, "Synthesizing"},
		{Stage(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.want {
			t.Errorf("Stage(%d).String() = %q, want %q", tt.stage, got, tt.want)
		}
	}
}

// TestConstraintPredicateIsZero tests the empty-predicate check.
func TestConstraintPredicateIsZero(t *testing.T) {
	t.Parallel()

	var empty ConstraintPredicate
	if !empty.IsZero() {
		t.Error("zero-value predicate should report IsZero")
	}

	yes := true
	withField := ConstraintPredicate{NoWebsite: &yes}
	if withField.IsZero() {
		t.Error("predicate with a field set should not report IsZero")
	}
}

// TestPackageCodeValid tests the closed package code set.
func TestPackageCodeValid(t *testing.T) {
	t.Parallel()

	for _, code := range PackageCodes {
		if !code.Valid() {
			t.Errorf("expected %s to be valid", code)
		}
	}
	if PackageCode("premium_plus").Valid() {
		t.Error("unknown code should be invalid")
	}
}
