package query

import "strings"

// stateNameToCode maps full US state names (lowercase) to their 2-letter
// codes. The validator and the extractor both consult this table before
// length validation, so "south carolina" normalizes to "SC".
var stateNameToCode = map[string]string{
	"alabama":        "AL",
	"alaska":         "AK",
	"arizona":        "AZ",
	"arkansas":       "AR",
	"california":     "CA",
	"colorado":       "CO",
	"connecticut":    "CT",
	"delaware":       "DE",
	"florida":        "FL",
	"georgia":        "GA",
	"hawaii":         "HI",
	"idaho":          "ID",
	"illinois":       "IL",
	"indiana":        "IN",
	"iowa":           "IA",
	"kansas":         "KS",
	"kentucky":       "KY",
	"louisiana":      "LA",
	"maine":          "ME",
	"maryland":       "MD",
	"massachusetts":  "MA",
	"michigan":       "MI",
	"minnesota":      "MN",
	"mississippi":    "MS",
	"missouri":       "MO",
	"montana":        "MT",
	"nebraska":       "NE",
	"nevada":         "NV",
	"new hampshire":  "NH",
	"new jersey":     "NJ",
	"new mexico":     "NM",
	"new york":       "NY",
	"north carolina": "NC",
	"north dakota":   "ND",
	"ohio":           "OH",
	"oklahoma":       "OK",
	"oregon":         "OR",
	"pennsylvania":   "PA",
	"rhode island":   "RI",
	"south carolina": "SC",
	"south dakota":   "SD",
	"tennessee":      "TN",
	"texas":          "TX",
	"utah":           "UT",
	"vermont":        "VT",
	"virginia":       "VA",
	"washington":     "WA",
	"west virginia":  "WV",
	"wisconsin":      "WI",
	"wyoming":        "WY",
	"district of columbia": "DC",
}

// validStateCodes is the reverse index used for code validation.
var validStateCodes = func() map[string]bool {
	codes := make(map[string]bool, len(stateNameToCode))
	for _, code := range stateNameToCode {
		codes[code] = true
	}
	return codes
}()

// NormalizeState maps a state input to its uppercase 2-letter code.
// Full state names are translated via the fixed lookup table; 2-letter
// inputs are uppercased. The second return value is false when the input
// is neither a known name nor a known code.
func NormalizeState(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if code, ok := stateNameToCode[strings.ToLower(trimmed)]; ok {
		return code, true
	}
	upper := strings.ToUpper(trimmed)
	if validStateCodes[upper] {
		return upper, true
	}
	return upper, false
}
