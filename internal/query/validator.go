package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/leadlens/leadlens/internal/model"
)

// Default values applied to optional-with-default fields during validation.
// Required fields (version, geo.city, geo.state) are never defaulted; their
// absence is an error.
const (
	// DefaultRadiusKM is the search radius applied when a query omits one.
	DefaultRadiusKM = 25

	// DefaultResultTarget is the lead count target applied when omitted.
	DefaultResultTarget = 250

	// weightSumTolerance is how far the four scoring weights may drift
	// from 1.0 before the override is rejected. Callers hand-edit weight
	// files, so exact floating point equality would be hostile.
	weightSumTolerance = 0.05
)

// Validate checks q against the schema and returns a fully-defaulted copy.
// Validation order: schema shape, type checks, range checks, cross-field
// checks. On failure it returns a *ValidationErrors listing every field-path
// problem; it never panics past the caller.
//
// Validation is idempotent: re-validating a returned query yields an
// identical result.
func Validate(q *model.Query) (*model.Query, error) {
	verrs := &ValidationErrors{}
	if q == nil {
		verrs.add("", "query is required")
		return nil, verrs
	}

	out := clone(q)

	// Schema version is required and must match exactly. An unsupported
	// version means the caller and this validator disagree about field
	// semantics, so nothing can be safely defaulted.
	if out.Version != model.SchemaVersion {
		verrs.add("version", "must equal %d, got %d", model.SchemaVersion, out.Version)
	}

	validateVertical(out, verrs)
	validateGeo(out, verrs)
	validateConstraints(out, verrs)
	validateResultSize(out, verrs)
	validateScoring(out, verrs)
	validateOutput(out, verrs)

	// Cross-field checks run last, on values already range-checked.
	if out.Notify.OnComplete && out.Notify.Webhook == "" && out.Notify.Email == "" {
		verrs.add("notify", "on_complete requires a webhook or email destination")
	}
	if min := out.ResultSize.Minimum; min != nil && *min > out.ResultSize.Target {
		verrs.add("result_size.minimum", "must not exceed target %d, got %d", out.ResultSize.Target, *min)
	}

	if !verrs.ok() {
		return nil, verrs
	}

	ensureComplianceDefaults(out)
	return out, nil
}

// ParseAndValidate decodes a JSON query document and validates it.
// Unknown fields and type mismatches are reported as shape errors before
// any range checking happens.
func ParseAndValidate(data []byte) (*model.Query, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var q model.Query
	if err := dec.Decode(&q); err != nil {
		verrs := &ValidationErrors{}
		verrs.add("", "malformed query document: %v", err)
		return nil, verrs
	}
	return Validate(&q)
}

// MinimalQuery returns the default-fill fallback query for a city and state.
// The orchestrator uses it when the caller supplied free text that the
// extractor could locate but the planner could not structure further.
func MinimalQuery(city, state string) *model.Query {
	code, _ := NormalizeState(state)
	q := &model.Query{
		Version:  model.SchemaVersion,
		Vertical: model.VerticalGeneric,
		Geo: model.Geo{
			City:     city,
			State:    code,
			RadiusKM: DefaultRadiusKM,
		},
		ResultSize: model.ResultSize{Target: DefaultResultTarget},
		SortBy:     model.SortByScore,
		Output:     model.Output{Contract: model.OutputJSON},
	}
	ensureComplianceDefaults(q)
	return q
}

func validateVertical(q *model.Query, verrs *ValidationErrors) {
	if q.Vertical == "" {
		q.Vertical = model.VerticalGeneric
		return
	}
	if !q.Vertical.Valid() {
		verrs.add("vertical", "unsupported vertical %q", q.Vertical)
	}
}

func validateGeo(q *model.Query, verrs *ValidationErrors) {
	if strings.TrimSpace(q.Geo.City) == "" {
		verrs.add("geo.city", "is required")
	}

	if strings.TrimSpace(q.Geo.State) == "" {
		verrs.add("geo.state", "is required")
	} else {
		code, ok := NormalizeState(q.Geo.State)
		if !ok {
			verrs.add("geo.state", "unknown state %q", q.Geo.State)
		}
		// Length check runs after name mapping so "south carolina" has
		// already become "SC".
		if ok && len(code) != 2 {
			verrs.add("geo.state", "must be a 2-letter code, got %q", code)
		}
		q.Geo.State = code
	}

	switch {
	case q.Geo.RadiusKM == 0:
		q.Geo.RadiusKM = DefaultRadiusKM
	case q.Geo.RadiusKM < 1 || q.Geo.RadiusKM > 100:
		verrs.add("geo.radius_km", "must be in [1,100], got %d", q.Geo.RadiusKM)
	}
}

func validateConstraints(q *model.Query, verrs *ValidationErrors) {
	lists := []struct {
		name  string
		preds []model.ConstraintPredicate
	}{
		{"must", q.Constraints.Must},
		{"optional", q.Constraints.Optional},
		{"exclude", q.Constraints.Exclude},
	}
	for _, list := range lists {
		for i, pred := range list.preds {
			path := fmt.Sprintf("constraints.%s[%d]", list.name, i)
			validatePredicate(path, pred, verrs)
		}
	}
}

func validatePredicate(path string, p model.ConstraintPredicate, verrs *ValidationErrors) {
	if v := p.RatingGT; v != nil && (*v < 0 || *v > 5) {
		verrs.add(path+".rating_gt", "must be in [0,5], got %g", *v)
	}
	if v := p.RatingLT; v != nil && (*v < 0 || *v > 5) {
		verrs.add(path+".rating_lt", "must be in [0,5], got %g", *v)
	}
	if v := p.ReviewsCountGT; v != nil && *v < 0 {
		verrs.add(path+".reviews_count_gt", "must be non-negative, got %d", *v)
	}
	if v := p.ReviewsCountLT; v != nil && *v < 0 {
		verrs.add(path+".reviews_count_lt", "must be non-negative, got %d", *v)
	}
	if v := p.YearsInBusinessGT; v != nil && *v < 0 {
		verrs.add(path+".years_in_business_gt", "must be non-negative, got %d", *v)
	}
	if r := p.EmployeeCountRange; r != nil {
		if r.Min < 0 {
			verrs.add(path+".employee_count_range.min", "must be non-negative, got %d", r.Min)
		}
		if r.Max < r.Min {
			verrs.add(path+".employee_count_range", "max %d must not be less than min %d", r.Max, r.Min)
		}
	}
}

func validateResultSize(q *model.Query, verrs *ValidationErrors) {
	switch {
	case q.ResultSize.Target == 0:
		q.ResultSize.Target = DefaultResultTarget
	case q.ResultSize.Target < 10 || q.ResultSize.Target > 1000:
		verrs.add("result_size.target", "must be in [10,1000], got %d", q.ResultSize.Target)
	}
	if min := q.ResultSize.Minimum; min != nil && *min < 1 {
		verrs.add("result_size.minimum", "must be positive, got %d", *min)
	}
}

func validateScoring(q *model.Query, verrs *ValidationErrors) {
	if q.SortBy == "" {
		q.SortBy = model.SortByScore
	} else if !q.SortBy.Valid() {
		verrs.add("sort_by", "unsupported sort order %q", q.SortBy)
	}

	if q.Scoring == nil || q.Scoring.Weights == nil {
		return
	}
	w := q.Scoring.Weights
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"icp_fit", w.ICPFit},
		{"pain", w.Pain},
		{"reachability", w.Reachability},
		{"compliance_risk", w.ComplianceRisk},
	} {
		if field.value < 0 || field.value > 1 {
			verrs.add("scoring.weights."+field.name, "must be in [0,1], got %g", field.value)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		verrs.add("scoring.weights", "must sum to 1.0 (±%.2f), got %.3f", weightSumTolerance, sum)
	}
}

func validateOutput(q *model.Query, verrs *ValidationErrors) {
	if q.Output.Contract == "" {
		q.Output.Contract = model.OutputJSON
		return
	}
	if !q.Output.Contract.Valid() {
		verrs.add("output.contract", "unsupported contract %q", q.Output.Contract)
	}
}

// ensureComplianceDefaults guarantees the do-not-contact respect flag is
// present exactly once.
func ensureComplianceDefaults(q *model.Query) {
	for _, flag := range q.ComplianceFlags {
		if flag == model.ComplianceRespectDNC {
			return
		}
	}
	q.ComplianceFlags = append(q.ComplianceFlags, model.ComplianceRespectDNC)
}

// clone deep-copies a query so validation never mutates caller state.
func clone(q *model.Query) *model.Query {
	out := *q
	out.Geo.ZipCodes = append([]string(nil), q.Geo.ZipCodes...)
	out.Geo.Neighborhoods = append([]string(nil), q.Geo.Neighborhoods...)
	out.Constraints.Must = append([]model.ConstraintPredicate(nil), q.Constraints.Must...)
	out.Constraints.Optional = append([]model.ConstraintPredicate(nil), q.Constraints.Optional...)
	out.Constraints.Exclude = append([]model.ConstraintPredicate(nil), q.Constraints.Exclude...)
	out.ComplianceFlags = append([]string(nil), q.ComplianceFlags...)
	if q.ResultSize.Minimum != nil {
		min := *q.ResultSize.Minimum
		out.ResultSize.Minimum = &min
	}
	if q.Scoring != nil {
		scoring := *q.Scoring
		if q.Scoring.Weights != nil {
			weights := *q.Scoring.Weights
			scoring.Weights = &weights
		}
		out.Scoring = &scoring
	}
	return &out
}
