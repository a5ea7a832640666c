package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leadlens/leadlens/internal/model"
)

func TestEngine_Audit_NoWebsite(t *testing.T) {
	t.Parallel()

	engine := NewEngine(http.DefaultClient)

	for _, url := range []string{"", "   "} {
		result := engine.Audit(context.Background(), url)

		if result.HasWebsite {
			t.Errorf("Audit(%q).HasWebsite = true, want false", url)
		}
		if result.PathsAttempted != 0 {
			t.Errorf("Audit(%q).PathsAttempted = %d, want 0 (no fetches for blank URL)", url, result.PathsAttempted)
		}
		if got := len(result.EvidenceLog); got != 1 {
			t.Fatalf("Audit(%q) evidence log length = %d, want 1", url, got)
		}
		entry := result.EvidenceLog[0]
		if entry.Status != model.StatusNotFound {
			t.Errorf("evidence status = %q, want %q", entry.Status, model.StatusNotFound)
		}
		if entry.Confidence != 1.0 {
			t.Errorf("evidence confidence = %v, want 1.0", entry.Confidence)
		}
		for _, f := range model.Features {
			det := result.Features[f]
			if det == nil || len(det.Evidence) != 1 {
				t.Errorf("feature %q missing replicated not_found evidence", f)
			}
			if result.FeatureFound(f) {
				t.Errorf("feature %q reported found on blank URL", f)
			}
		}
	}
}

func TestEngine_Audit_VendorSignature(t *testing.T) {
	t.Parallel()

	const homepage = `<!DOCTYPE html>
<html><head>
<meta name="viewport" content="width=device-width, initial-scale=1">
<script src="https://assets.calendly.com/assets/external/widget.js"></script>
</head><body>
<h1>Smile Dental</h1>
</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte(homepage)) //nolint:errcheck
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	engine := NewEngine(srv.Client(), WithPaths([]string{"/", "/booking"}))
	result := engine.Audit(context.Background(), srv.URL)

	if !result.HasWebsite {
		t.Fatal("HasWebsite = false, want true")
	}

	booking := result.Features[model.FeatureOnlineBooking]
	if booking == nil || !booking.Found {
		t.Fatal("online_booking not detected from calendly signature")
	}
	if booking.VendorDetected != "calendly" {
		t.Errorf("VendorDetected = %q, want %q", booking.VendorDetected, "calendly")
	}

	var sigEntry *model.EvidenceEntry
	for i := range booking.Evidence {
		if booking.Evidence[i].Source == model.SourceVendorSignature {
			sigEntry = &booking.Evidence[i]
			break
		}
	}
	if sigEntry == nil {
		t.Fatal("no vendor_signature evidence recorded for booking detection")
	}
	if sigEntry.Confidence != vendorMatchConfidence {
		t.Errorf("signature confidence = %v, want %v", sigEntry.Confidence, vendorMatchConfidence)
	}
	if sigEntry.CheckType != model.CheckBooking {
		t.Errorf("signature check type = %q, want %q", sigEntry.CheckType, model.CheckBooking)
	}

	// The script element referencing the vendor should corroborate the
	// substring match with a selector-scoped outbound-link entry.
	var linkEntry *model.EvidenceEntry
	for i := range booking.Evidence {
		if booking.Evidence[i].Source == model.SourceOutboundLinks {
			linkEntry = &booking.Evidence[i]
			break
		}
	}
	if linkEntry == nil {
		t.Fatal("no outbound_links corroboration entry recorded")
	}
	if linkEntry.Selector != "script[src]" {
		t.Errorf("corroboration selector = %q, want %q", linkEntry.Selector, "script[src]")
	}
	if !strings.Contains(linkEntry.Snippet, "calendly") {
		t.Errorf("corroboration snippet %q does not reference the vendor", linkEntry.Snippet)
	}

	mobile := result.Features[model.FeatureMobileResponsive]
	if mobile == nil || !mobile.Found {
		t.Error("mobile_responsive not detected despite viewport meta tag")
	}
}

func TestEngine_Audit_AbsencePolicy(t *testing.T) {
	t.Parallel()

	// Two paths succeed with no chat widget anywhere: the absence policy
	// requires an explicit negative entry for chat_widget.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta name="viewport" content="width=device-width"></head><body>plain page</body></html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	engine := NewEngine(srv.Client(), WithPaths([]string{"/", "/contact"}))
	result := engine.Audit(context.Background(), srv.URL)

	if result.PathsSucceeded != 2 {
		t.Fatalf("PathsSucceeded = %d, want 2", result.PathsSucceeded)
	}

	chat := result.Features[model.FeatureChatWidget]
	if chat == nil {
		t.Fatal("chat_widget detection missing")
	}
	if chat.Found {
		t.Error("chat_widget reported found on a plain page")
	}
	var negative bool
	for _, entry := range chat.Evidence {
		if entry.Status == model.StatusNotFound && entry.Confidence == absenceConfidence {
			negative = true
		}
	}
	if !negative {
		t.Error("no explicit negative evidence recorded for confirmed chat_widget absence")
	}
}

func TestEngine_Audit_InsufficientEvidenceForAbsence(t *testing.T) {
	t.Parallel()

	// Exactly one path succeeds, so absence cannot be confirmed: features
	// stay not-found without any negative entry.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte(`<html><body>home</body></html>`)) //nolint:errcheck
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	engine := NewEngine(srv.Client(), WithPaths([]string{"/", "/booking"}))
	result := engine.Audit(context.Background(), srv.URL)

	if result.PathsSucceeded != 1 {
		t.Fatalf("PathsSucceeded = %d, want 1", result.PathsSucceeded)
	}
	chat := result.Features[model.FeatureChatWidget]
	if chat == nil {
		t.Fatal("chat_widget detection missing")
	}
	for _, entry := range chat.Evidence {
		if entry.Status == model.StatusNotFound {
			t.Error("negative evidence recorded with only one successful path")
		}
	}
}

func TestEngine_Audit_FetchErrorsContained(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte(`<html><body><a href="https://www.booksy.com/biz/123">Book</a></body></html>`)) //nolint:errcheck
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	engine := NewEngine(srv.Client(), WithPaths([]string{"/", "/booking", "/contact"}))
	result := engine.Audit(context.Background(), srv.URL)

	if result.PathsAttempted != 3 {
		t.Errorf("PathsAttempted = %d, want 3", result.PathsAttempted)
	}
	if result.PathsSucceeded != 1 {
		t.Errorf("PathsSucceeded = %d, want 1", result.PathsSucceeded)
	}
	if got := result.ErrorCount(); got != 2 {
		t.Errorf("ErrorCount() = %d, want 2 (one per failed path)", got)
	}

	// Booking still detected from the page that did load.
	if !result.FeatureFound(model.FeatureOnlineBooking) {
		t.Error("online_booking not detected from the successful path")
	}

	want := 1.0 / 3.0
	if diff := result.ConfidenceScore - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ConfidenceScore = %v, want %v", result.ConfidenceScore, want)
	}
}

func TestEngine_Audit_ConfidenceBounds(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>fine</body></html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	engine := NewEngine(srv.Client(), WithPaths([]string{"/", "/contact", "/booking"}))
	result := engine.Audit(context.Background(), srv.URL)

	if result.ConfidenceScore < 0 || result.ConfidenceScore > 1 {
		t.Errorf("ConfidenceScore = %v, want within [0,1]", result.ConfidenceScore)
	}
	if result.ConfidenceScore != 1.0 {
		t.Errorf("ConfidenceScore = %v, want 1.0 when every path succeeds", result.ConfidenceScore)
	}
}

func TestEngine_Audit_CTAFallback(t *testing.T) {
	t.Parallel()

	// No vendor script present, but the page carries a booking phrase.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/form">Book an Appointment</a></body></html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	engine := NewEngine(srv.Client(), WithPaths([]string{"/"}))
	result := engine.Audit(context.Background(), srv.URL)

	booking := result.Features[model.FeatureOnlineBooking]
	if booking == nil || !booking.Found {
		t.Fatal("online_booking not detected from call-to-action phrase")
	}
	if booking.VendorDetected != "" {
		t.Errorf("VendorDetected = %q, want empty for a phrase-only match", booking.VendorDetected)
	}
	var ctaEntry bool
	for _, entry := range booking.Evidence {
		if entry.Source == model.SourceRenderedContent && entry.Confidence == ctaMatchConfidence {
			ctaEntry = true
		}
	}
	if !ctaEntry {
		t.Error("no rendered_content evidence at the phrase-match confidence")
	}
}

func TestEngine_Audit_ExtraBookingPatterns(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><script src="https://widget.nichebook.example/v2.js"></script></body></html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	engine := NewEngine(srv.Client(),
		WithPaths([]string{"/"}),
		WithExtraBookingPatterns([]string{"nichebook.example"}),
	)
	result := engine.Audit(context.Background(), srv.URL)

	booking := result.Features[model.FeatureOnlineBooking]
	if booking == nil || !booking.Found {
		t.Fatal("online_booking not detected from extra pattern")
	}
	if booking.VendorDetected != "nichebook.example" {
		t.Errorf("VendorDetected = %q, want %q", booking.VendorDetected, "nichebook.example")
	}
}

func TestEngine_Audit_SSLClassification(t *testing.T) {
	t.Parallel()

	t.Run("http scheme is classified as no ssl", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html><body>ok</body></html>`)) //nolint:errcheck
		}))
		defer srv.Close()

		engine := NewEngine(srv.Client(), WithPaths([]string{"/"}))
		result := engine.Audit(context.Background(), srv.URL)

		if result.FeatureFound(model.FeatureSSL) {
			t.Error("ssl reported found for a plain http URL")
		}
		ssl := result.Features[model.FeatureSSL]
		if ssl == nil || len(ssl.Evidence) == 0 {
			t.Fatal("no ssl classification evidence recorded")
		}
		if ssl.Evidence[0].Confidence != syntacticFactConfidence {
			t.Errorf("ssl evidence confidence = %v, want %v", ssl.Evidence[0].Confidence, syntacticFactConfidence)
		}
	})

	t.Run("bare host is normalized to https", func(t *testing.T) {
		t.Parallel()

		if got := normalizeURL("example.com"); got != "https://example.com" {
			t.Errorf("normalizeURL(example.com) = %q", got)
		}
		if got := normalizeURL("http://example.com"); got != "http://example.com" {
			t.Errorf("normalizeURL must not rewrite an explicit scheme, got %q", got)
		}
	})
}

func TestEngine_Audit_ContextCancellation(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`<html><body>ok</body></html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(srv.Client(), WithPaths([]string{"/", "/contact"}))
	result := engine.Audit(ctx, srv.URL)

	if hits != 0 {
		t.Errorf("server hit %d times after cancellation, want 0", hits)
	}
	if result.PathsSucceeded != 0 {
		t.Errorf("PathsSucceeded = %d, want 0", result.PathsSucceeded)
	}
	if result.ErrorCount() == 0 {
		t.Error("cancelled paths should leave error evidence")
	}
}

func TestJoinURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		path string
		want string
	}{
		{"https://example.com", "/", "https://example.com/"},
		{"https://example.com/", "/booking", "https://example.com/booking"},
		{"https://example.com", "contact", "https://example.com/contact"},
		{"https://example.com", "", "https://example.com/"},
	}
	for _, tt := range tests {
		if got := joinURL(tt.base, tt.path); got != tt.want {
			t.Errorf("joinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestEngine_FetchTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late")) //nolint:errcheck
	}))
	defer srv.Close()

	engine := NewEngine(srv.Client(),
		WithPaths([]string{"/"}),
		WithFetchTimeout(20*time.Millisecond),
	)
	result := engine.Audit(context.Background(), srv.URL)

	if result.PathsSucceeded != 0 {
		t.Errorf("PathsSucceeded = %d, want 0 for a slow server", result.PathsSucceeded)
	}
	if result.ErrorCount() != 1 {
		t.Errorf("ErrorCount() = %d, want 1", result.ErrorCount())
	}
}
