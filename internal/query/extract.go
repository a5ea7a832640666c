package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/leadlens/leadlens/internal/model"
)

// Extraction is a best-effort partial query built from free text.
// Fields the text does not support are left at their zero values: absence
// of a pattern match means "no opinion", never "false".
type Extraction struct {
	// Vertical is the detected business category, or generic when no
	// synonym matched.
	Vertical model.Vertical

	// Geo carries the extracted city and normalized state code.
	Geo model.Geo

	// Constraints holds the predicates the text asserted.
	Constraints model.ConstraintSet

	// Warnings describe guesses the extractor had to make.
	Warnings []string
}

// verticalSynonyms binds one vertical to its detection keywords.
type verticalSynonyms struct {
	vertical model.Vertical
	synonyms []string
}

// verticalTable is iterated in declaration order; the first matching synonym
// wins. The order is stable and documented, not arbitrary: ties between
// verticals resolve to the earlier table entry.
var verticalTable = []verticalSynonyms{
	{model.VerticalDentist, []string{"dentist", "dental", "orthodontist"}},
	{model.VerticalHVAC, []string{"hvac", "air conditioning", "heating and cooling", "furnace"}},
	{model.VerticalPlumber, []string{"plumber", "plumbing", "drain cleaning"}},
	{model.VerticalRestaurant, []string{"restaurant", "pizzeria", "diner", "cafe"}},
	{model.VerticalSalon, []string{"salon", "barber", "nail", "spa"}},
	{model.VerticalLawFirm, []string{"law firm", "lawyer", "attorney", "legal practice"}},
	{model.VerticalAutoRepair, []string{"auto repair", "mechanic", "auto shop", "body shop"}},
}

// Location patterns, attempted in order. The city capture may include lead-in
// words ("dentists in Columbia"); trimCityFragment strips those afterwards.
var (
	// "City, ST"
	cityStateCodePattern = regexp.MustCompile(`([A-Za-z][A-Za-z .'-]*?),\s*([A-Za-z]{2})\b`)

	// "City ST"
	cityStateBarePattern = regexp.MustCompile(`([A-Za-z][A-Za-z .'-]*?)\s+([A-Z]{2})\b`)

	// "City, State-name"
	cityStateNamePattern = regexp.MustCompile(`([A-Za-z][A-Za-z .'-]*?),\s*([A-Za-z]+(?: [A-Za-z]+)?)`)
)

// cityLeadIns are words that commonly precede the city in free text.
var cityLeadIns = []string{"in", "near", "around", "for", "of"}

// Numeric constraint patterns.
var (
	reviewsMoreThanPattern = regexp.MustCompile(`(?i)(?:more than|over)\s+(\d+)\s+reviews`)
	reviewsAtLeastPattern  = regexp.MustCompile(`(?i)at least\s+(\d+)\s+reviews`)
	ratingBelowPattern     = regexp.MustCompile(`(?i)(?:rating|rated)\s+(?:below|under|less than)\s+(\d(?:\.\d)?)`)
	starsBelowPattern      = regexp.MustCompile(`(?i)(?:below|under)\s+(\d(?:\.\d)?)\s+stars`)
	ratingAbovePattern     = regexp.MustCompile(`(?i)(?:rating|rated)\s+(?:above|over|at least)\s+(\d(?:\.\d)?)`)
	noWebsitePattern       = regexp.MustCompile(`(?i)\b(?:no|without|lacking)(?: an?)? (?:web ?site|web presence|online presence)\b`)
	chatbotPattern         = regexp.MustCompile(`(?i)\b(?:chat ?bot|live ?chat|chat widget)\b`)
	bookingPattern         = regexp.MustCompile(`(?i)\b(?:online booking|book online|online scheduling)\b`)
	ownerPattern           = regexp.MustCompile(`(?i)\b(?:owner identified|known owner|named owner)\b`)
	negationPattern        = regexp.MustCompile(`(?i)\b(?:no|not|without|lacking|missing)\b[a-z ]{0,20}$`)
)

// Extract builds a best-effort partial query from free text. It is fully
// deterministic: fixed tables and ordered regular expressions, no external
// calls. locationHint is used (with a warning) when the text itself yields
// no location; pass "" when no hint is available.
//
// Extract returns an error only when no location can be determined at all,
// since a discovery search cannot run without one.
func Extract(text, locationHint string) (*Extraction, error) {
	ex := &Extraction{Vertical: detectVertical(text)}

	city, state, warnings, err := extractLocation(text)
	if err != nil && locationHint != "" {
		city, state, warnings, err = extractLocation(locationHint)
		warnings = append(warnings, "location taken from hint, not query text")
	}
	if err != nil {
		return nil, err
	}
	ex.Geo.City = city
	ex.Geo.State = state
	ex.Warnings = append(ex.Warnings, warnings...)

	ex.Constraints.Must = extractPredicates(text)
	return ex, nil
}

// detectVertical returns the first vertical whose synonym appears in the
// text, iterating the fixed table in declaration order.
func detectVertical(text string) model.Vertical {
	lower := strings.ToLower(text)
	for _, entry := range verticalTable {
		for _, synonym := range entry.synonyms {
			if strings.Contains(lower, synonym) {
				return entry.vertical
			}
		}
	}
	return model.VerticalGeneric
}

// extractLocation attempts the ordered location patterns, then falls back to
// treating the last whitespace-delimited token as a state guess.
func extractLocation(text string) (city, state string, warnings []string, err error) {
	// "City, ST"
	if m := cityStateCodePattern.FindStringSubmatch(text); m != nil {
		if code, ok := NormalizeState(m[2]); ok {
			return trimCityFragment(m[1]), code, nil, nil
		}
	}

	// "City ST"
	if m := cityStateBarePattern.FindStringSubmatch(text); m != nil {
		if code, ok := NormalizeState(m[2]); ok {
			return trimCityFragment(m[1]), code, nil, nil
		}
	}

	// "City, State-name". The name capture is greedy and may swallow a
	// trailing word ("Virginia without"), so the one-word reading is tried
	// when the two-word lookup misses.
	if m := cityStateNamePattern.FindStringSubmatch(text); m != nil {
		if code, ok := NormalizeState(m[2]); ok {
			return trimCityFragment(m[1]), code, nil, nil
		}
		if first, _, found := strings.Cut(m[2], " "); found {
			if code, ok := NormalizeState(first); ok {
				return trimCityFragment(m[1]), code, nil, nil
			}
		}
	}

	// Fallback: guess the state from the trailing token.
	tokens := strings.Fields(strings.Trim(text, " .,!?"))
	if len(tokens) < 2 {
		return "", "", nil, fmt.Errorf("cannot extract location from %q: need at least a city and state", text)
	}
	guess, ok := NormalizeState(strings.Trim(tokens[len(tokens)-1], ".,"))
	if !ok {
		return "", "", nil, fmt.Errorf("cannot extract location from %q: trailing token %q is not a state", text, tokens[len(tokens)-1])
	}
	city = strings.Trim(tokens[len(tokens)-2], ".,")
	warnings = append(warnings, fmt.Sprintf("location guessed from trailing tokens: %s, %s", city, guess))
	return city, guess, warnings, nil
}

// trimCityFragment strips lead-in words from a captured city fragment,
// keeping only the part after the last lead-in. "dentists in Columbia"
// becomes "Columbia".
func trimCityFragment(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	words := strings.Fields(fragment)
	cut := 0
	for i, word := range words {
		lower := strings.ToLower(word)
		for _, leadIn := range cityLeadIns {
			if lower == leadIn {
				cut = i + 1
			}
		}
	}
	return strings.Join(words[cut:], " ")
}

// extractPredicates collects the constraint assertions the text supports.
// Each assertion becomes its own must predicate; must predicates are ANDed
// downstream, so the split carries no semantic difference and keeps each
// predicate traceable to one phrase.
func extractPredicates(text string) []model.ConstraintPredicate {
	var preds []model.ConstraintPredicate
	add := func(p model.ConstraintPredicate) {
		if !p.IsZero() {
			preds = append(preds, p)
		}
	}

	if noWebsitePattern.MatchString(text) {
		yes := true
		add(model.ConstraintPredicate{NoWebsite: &yes})
	}

	if loc := chatbotPattern.FindStringIndex(text); loc != nil {
		val := !isNegated(text, loc[0])
		add(model.ConstraintPredicate{HasChatbot: &val})
	}

	if loc := bookingPattern.FindStringIndex(text); loc != nil {
		val := !isNegated(text, loc[0])
		add(model.ConstraintPredicate{HasOnlineBooking: &val})
	}

	if ownerPattern.MatchString(text) {
		yes := true
		add(model.ConstraintPredicate{OwnerIdentified: &yes})
	}

	if m := reviewsMoreThanPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			add(model.ConstraintPredicate{ReviewsCountGT: &n})
		}
	} else if m := reviewsAtLeastPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			gt := n - 1
			add(model.ConstraintPredicate{ReviewsCountGT: &gt})
		}
	}

	if m := ratingBelowPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			add(model.ConstraintPredicate{RatingLT: &v})
		}
	} else if m := starsBelowPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			add(model.ConstraintPredicate{RatingLT: &v})
		}
	}

	if m := ratingAbovePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			add(model.ConstraintPredicate{RatingGT: &v})
		}
	}

	return preds
}

// isNegated reports whether the 20 characters before offset contain a
// negation word, e.g. "without a chatbot" or "no live chat".
func isNegated(text string, offset int) bool {
	start := offset - 24
	if start < 0 {
		start = 0
	}
	return negationPattern.MatchString(text[start:offset])
}
