package audit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/leadlens/leadlens/internal/config"
	"github.com/leadlens/leadlens/internal/model"
)

// FetchError describes a failed path fetch during an audit. Fetch failures
// are never raised to the caller; they are converted into error-status
// evidence entries and the audit continues with the next path.
type FetchError struct {
	// URL is the page that failed.
	URL string

	// StatusCode is the HTTP status, or 0 for transport errors.
	StatusCode int

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap returns the underlying transport error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Engine audits one website at a time. It holds no state across audits
// beyond its configuration, so a single engine is safe for concurrent use
// by independent audits.
//
// Design decision: We require an external *http.Client rather than creating
// one internally because connection pooling should be shared across the
// audit fan-out, and tests inject a client pointed at a local server.
type Engine struct {
	// client performs all fetches.
	client *http.Client

	// paths are the relative paths checked per audit, in order.
	paths []string

	// fetchTimeout bounds each individual fetch.
	fetchTimeout time.Duration

	// userAgent identifies audit traffic to site operators.
	userAgent string

	// maxBodySize limits how much of each response body is read.
	maxBodySize int64

	// extraBookingPatterns extends the fixed booking signature table.
	// They rank after the built-in signatures.
	extraBookingPatterns []string

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPaths overrides the relative paths checked per audit.
// Order is preserved: paths are fetched first to last and the first vendor
// match wins.
func WithPaths(paths []string) Option {
	return func(e *Engine) {
		if len(paths) > 0 {
			e.paths = append([]string(nil), paths...)
		}
	}
}

// WithFetchTimeout bounds each individual path fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.fetchTimeout = d
		}
	}
}

// WithUserAgent sets the client identifier sent with every fetch.
func WithUserAgent(ua string) Option {
	return func(e *Engine) {
		e.userAgent = ua
	}
}

// WithMaxBodySize limits response body reads.
func WithMaxBodySize(size int64) Option {
	return func(e *Engine) {
		if size > 0 {
			e.maxBodySize = size
		}
	}
}

// WithExtraBookingPatterns appends lowercase booking vendor substrings to
// the fixed signature table. Used to carry planner-suggested patterns and
// profile-file additions into the audit.
func WithExtraBookingPatterns(patterns []string) Option {
	return func(e *Engine) {
		e.extraBookingPatterns = append([]string(nil), patterns...)
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an audit engine with the given HTTP client.
func NewEngine(client *http.Client, opts ...Option) *Engine {
	e := &Engine{
		client:       client,
		paths:        append([]string(nil), config.DefaultAuditPaths...),
		fetchTimeout: config.DefaultFetchTimeout,
		userAgent:    config.DefaultUserAgent,
		maxBodySize:  config.DefaultMaxBodySize,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Audit fetches the configured paths for websiteURL and produces one
// immutable audit result. It never returns an error: fetch failures become
// error-status evidence entries and the audit proceeds.
//
// An empty or blank URL short-circuits with no network calls: the result
// reports has_website=false and a single confidence-1.0 not_found entry
// replicated across every feature detection.
func (e *Engine) Audit(ctx context.Context, websiteURL string) *model.AuditResult {
	trimmed := strings.TrimSpace(websiteURL)
	if trimmed == "" {
		return noWebsiteResult()
	}

	normalized := normalizeURL(trimmed)
	result := model.NewAuditResult(normalized)
	result.HasWebsite = true

	e.classifySSL(result, normalized)

	for _, path := range effectivePaths(e.paths) {
		// A cancelled run stops fetching but still produces a result with
		// the evidence gathered so far.
		select {
		case <-ctx.Done():
			result.PathsAttempted++
			entry := model.NewEvidence(model.CheckWebsite, model.SourceRenderedContent, normalized, model.StatusError, 0).
				WithPath(path).
				WithSnippet(ctx.Err().Error())
			result.AddEvidence(entry)
			continue
		default:
		}

		result.PathsAttempted++
		pageURL := joinURL(normalized, path)

		body, err := e.fetch(ctx, pageURL)
		if err != nil {
			e.logger.Debug("path fetch failed", "url", pageURL, "error", err)
			entry := model.NewEvidence(model.CheckWebsite, model.SourceRenderedContent, pageURL, model.StatusError, 0).
				WithPath(path).
				WithSnippet(err.Error())
			result.AddEvidence(entry)
			continue
		}

		result.PathsSucceeded++
		e.scanPage(result, pageURL, path, body)
	}

	e.recordAbsences(result)

	// Aggregate confidence is successful path checks over attempted paths.
	// Zero attempted paths yields zero confidence.
	if result.PathsAttempted > 0 {
		result.ConfidenceScore = float64(result.PathsSucceeded) / float64(result.PathsAttempted)
	}

	e.logger.Debug("audit complete",
		"url", normalized,
		"paths_attempted", result.PathsAttempted,
		"paths_succeeded", result.PathsSucceeded,
		"confidence", result.ConfidenceScore,
	)
	return result
}

// noWebsiteResult builds the short-circuit result for a blank URL: one
// confidence-1.0 not_found entry shared by every feature detection.
func noWebsiteResult() *model.AuditResult {
	result := model.NewAuditResult("")
	entry := model.NewEvidence(model.CheckWebsite, model.SourceRenderedContent, "", model.StatusNotFound, 1.0)
	result.AddEvidence(entry)
	for _, f := range model.Features {
		det := result.Feature(f)
		det.Evidence = append(det.Evidence, entry)
	}
	return result
}

// classifySSL records the scheme-based SSL classification. This is a
// syntactic fact about the normalized URL, not an inference, hence the
// fixed 1.0 confidence.
func (e *Engine) classifySSL(result *model.AuditResult, url string) {
	det := result.Feature(model.FeatureSSL)
	status := model.StatusNotFound
	if strings.HasPrefix(url, "https://") {
		det.Found = true
		status = model.StatusFound
	}
	entry := model.NewEvidence(model.CheckWebsite, model.SourceHeaders, url, status, syntacticFactConfidence)
	result.AddEvidence(entry)
	det.Evidence = append(det.Evidence, entry)
}

// fetch performs one bounded GET and returns the body on success.
func (e *Engine) fetch(ctx context.Context, url string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read-side close error is not actionable

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodySize))
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	return string(body), nil
}

// scanPage scans one successfully fetched page for every feature not yet
// found. Scans are case-insensitive; detections already made on earlier
// paths are never overwritten (first match wins).
func (e *Engine) scanPage(result *model.AuditResult, pageURL, path, body string) {
	lowered := strings.ToLower(body)

	// The parsed document is only needed for outbound-link corroboration,
	// so parse errors degrade to substring evidence alone.
	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(body))
	if docErr != nil {
		doc = nil
	}

	if det := result.Feature(model.FeatureMobileResponsive); !det.Found {
		if viewportPattern.MatchString(lowered) {
			entry := model.NewEvidence(model.CheckFeatures, model.SourceRenderedContent, pageURL, model.StatusFound, viewportConfidence).
				WithPath(path).
				WithSnippet("mobile viewport meta tag")
			det.Found = true
			det.Evidence = append(det.Evidence, entry)
			result.AddEvidence(entry)
		}
	}

	for _, feature := range []model.Feature{model.FeatureOnlineBooking, model.FeatureChatWidget, model.FeaturePaymentProcessor} {
		det := result.Feature(feature)
		if det.Found {
			continue
		}
		if sig, ok := e.matchVendor(feature, lowered); ok {
			entry := model.NewEvidence(checkTypeFor(feature), model.SourceVendorSignature, pageURL, model.StatusFound, vendorMatchConfidence).
				WithPath(path).
				WithSnippet(sig.pattern)
			det.Found = true
			det.VendorDetected = sig.vendor
			det.Evidence = append(det.Evidence, entry)
			result.AddEvidence(entry)

			if doc != nil {
				if link := findVendorLink(doc, sig.pattern, pageURL, checkTypeFor(feature)); link != nil {
					det.Evidence = append(det.Evidence, *link)
					result.AddEvidence(*link)
				}
			}
		}
	}

	// Secondary pass: generic booking call-to-action phrases, only when no
	// vendor signature identified a booking product.
	if det := result.Feature(model.FeatureOnlineBooking); !det.Found {
		for _, phrase := range bookingCTAPatterns {
			if strings.Contains(lowered, phrase) {
				entry := model.NewEvidence(model.CheckBooking, model.SourceRenderedContent, pageURL, model.StatusFound, ctaMatchConfidence).
					WithPath(path).
					WithSnippet(phrase)
				det.Found = true
				det.Evidence = append(det.Evidence, entry)
				result.AddEvidence(entry)
				break
			}
		}
	}
}

// matchVendor finds the first vendor signature for feature present in the
// lowercased content. Extra booking patterns rank after the fixed table.
func (e *Engine) matchVendor(feature model.Feature, lowered string) (vendorSignature, bool) {
	for _, sig := range signaturesFor(feature) {
		if strings.Contains(lowered, sig.pattern) {
			return sig, true
		}
	}
	if feature == model.FeatureOnlineBooking {
		for _, pattern := range e.extraBookingPatterns {
			if pattern != "" && strings.Contains(lowered, pattern) {
				return vendorSignature{vendor: pattern, pattern: pattern}, true
			}
		}
	}
	return vendorSignature{}, false
}

// findVendorLink corroborates a vendor match with the document element that
// references the vendor, recording the selector and the attribute value.
func findVendorLink(doc *goquery.Document, pattern, pageURL string, check model.CheckType) *model.EvidenceEntry {
	selectors := []struct {
		selector string
		attr     string
	}{
		{"script[src]", "src"},
		{"iframe[src]", "src"},
		{"a[href]", "href"},
		{"link[href]", "href"},
	}

	for _, s := range selectors {
		var found *model.EvidenceEntry
		doc.Find(s.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			value, _ := sel.Attr(s.attr)
			if strings.Contains(strings.ToLower(value), pattern) {
				entry := model.NewEvidence(check, model.SourceOutboundLinks, pageURL, model.StatusFound, vendorMatchConfidence).
					WithSelector(s.selector).
					WithSnippet(value)
				found = &entry
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// recordAbsences applies the absence policy: a feature is confirmed absent
// with an explicit negative evidence entry only after at least two paths
// were successfully fetched without a match. With fewer successes the
// feature stays found=false with no negative entry, which callers must
// treat as insufficient evidence.
func (e *Engine) recordAbsences(result *model.AuditResult) {
	if result.PathsSucceeded < 2 {
		return
	}
	for _, feature := range scannableFeatures {
		det := result.Feature(feature)
		if det.Found {
			continue
		}
		entry := model.NewEvidence(checkTypeFor(feature), model.SourceRenderedContent, result.WebsiteURL, model.StatusNotFound, absenceConfidence).
			WithSnippet(fmt.Sprintf("no match across %d fetched paths", result.PathsSucceeded))
		det.Evidence = append(det.Evidence, entry)
		result.AddEvidence(entry)
	}
}

// normalizeURL prefixes the secure scheme when the input carries none.
func normalizeURL(u string) string {
	if strings.Contains(u, "://") {
		return u
	}
	return "https://" + u
}

// joinURL joins a base URL and a relative path without doubling slashes.
func joinURL(base, path string) string {
	base = strings.TrimSuffix(base, "/")
	if path == "" || path == "/" {
		return base + "/"
	}
	return base + "/" + strings.TrimPrefix(path, "/")
}

// effectivePaths guards against a nil path set so an audit always attempts
// something sensible.
func effectivePaths(paths []string) []string {
	if len(paths) == 0 {
		return config.DefaultAuditPaths
	}
	return paths
}
