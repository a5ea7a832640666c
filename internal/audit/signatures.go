package audit

import (
	"regexp"

	"github.com/leadlens/leadlens/internal/model"
)

// vendorSignature identifies a specific third-party product by a fixed
// lowercase substring of page content.
type vendorSignature struct {
	// vendor is the product name recorded on a match.
	vendor string

	// pattern is the lowercase substring that identifies the product.
	pattern string
}

// Vendor signature tables. Each table is an ordered slice iterated first to
// last; the first matching signature wins and is recorded with its vendor
// name at vendorMatchConfidence. Order therefore expresses precedence, not
// popularity: more specific patterns sit above generic ones.
var (
	bookingSignatures = []vendorSignature{
		{"calendly", "calendly"},
		{"acuity", "acuityscheduling"},
		{"square_appointments", "squareup.com/appointments"},
		{"booksy", "booksy"},
		{"vagaro", "vagaro"},
		{"setmore", "setmore"},
		{"zocdoc", "zocdoc"},
		{"mindbody", "mindbody"},
		{"housecallpro", "housecallpro"},
	}

	chatSignatures = []vendorSignature{
		{"intercom", "intercom"},
		{"drift", "drift.com"},
		{"tawk", "tawk.to"},
		{"zendesk_chat", "zopim"},
		{"livechat", "livechatinc"},
		{"tidio", "tidio"},
		{"crisp", "crisp.chat"},
	}

	paymentSignatures = []vendorSignature{
		{"stripe", "js.stripe.com"},
		{"stripe", "stripe.com/v3"},
		{"square", "squareup.com/payments"},
		{"paypal", "paypal.com/sdk"},
		{"paypal", "paypalobjects"},
		{"clover", "clover.com"},
	}
)

// bookingCTAPatterns are generic call-to-action phrases checked only when no
// booking vendor signature matched. A CTA match is weaker evidence than a
// vendor signature, hence the lower confidence.
var bookingCTAPatterns = []string{
	"book now",
	"book an appointment",
	"book online",
	"schedule an appointment",
	"request an appointment",
	"schedule your visit",
}

// viewportPattern detects the mobile-viewport meta marker. The scan runs on
// lowercased content, so the pattern is lowercase.
var viewportPattern = regexp.MustCompile(`<meta[^>]*name=["']?viewport`)

// Detection confidences. Vendor signatures are near-certain; the viewport
// marker is strong but themes sometimes ship it unused; a CTA phrase alone
// is the weakest positive signal. Confirmed absence (two or more clean
// fetches with no match) sits below every positive signal.
const (
	vendorMatchConfidence   = 0.95
	viewportConfidence      = 0.9
	ctaMatchConfidence      = 0.8
	absenceConfidence       = 0.7
	syntacticFactConfidence = 1.0
)

// scannableFeatures are the features detected from page content, in scan
// order. SSL is excluded: it is classified once from the URL scheme.
var scannableFeatures = []model.Feature{
	model.FeatureOnlineBooking,
	model.FeatureChatWidget,
	model.FeaturePaymentProcessor,
	model.FeatureMobileResponsive,
}

// checkTypeFor maps a feature to the check type recorded on its evidence.
func checkTypeFor(f model.Feature) model.CheckType {
	switch f {
	case model.FeatureOnlineBooking:
		return model.CheckBooking
	case model.FeatureChatWidget:
		return model.CheckContact
	case model.FeatureSSL:
		return model.CheckWebsite
	default:
		return model.CheckFeatures
	}
}

// signaturesFor returns the vendor table for a content-scannable feature.
func signaturesFor(f model.Feature) []vendorSignature {
	switch f {
	case model.FeatureOnlineBooking:
		return bookingSignatures
	case model.FeatureChatWidget:
		return chatSignatures
	case model.FeaturePaymentProcessor:
		return paymentSignatures
	default:
		return nil
	}
}
