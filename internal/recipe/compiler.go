package recipe

import (
	"errors"
	"fmt"

	"github.com/leadlens/leadlens/internal/model"
)

// ErrUnknownPackage is returned when a recipe is requested for a package
// code outside the fixed set.
var ErrUnknownPackage = errors.New("recipe: unknown package code")

// packagePlan is the hand-authored step sequence and guard list for one
// package. Plans are fixed at compile time; the lead snapshot is the only
// per-recipe input.
type packagePlan struct {
	guards    []model.Guard
	steps     []model.RecipeStep
	approvals []string
}

// Design decision: Plans live in an ordered table keyed by package code,
// not generated from the lead. Keeping them hand-authored makes the
// executor's behavior reviewable in one place and keeps compilation
// trivially deterministic.
var packagePlans = map[model.PackageCode]packagePlan{
	model.PackageWebPresence: {
		guards: []model.Guard{
			{Expression: "consent.outreach == true", Description: "business agreed to be contacted about the offer"},
			{Expression: "lead.score >= 40", Description: "minimum lead quality before content spend"},
		},
		steps: []model.RecipeStep{
			{Kind: model.StepContentGeneration, Name: "draft_site_copy", Provider: "cms", Description: "Generate landing page copy from the business profile and evidence log"},
			{Kind: model.StepContentGeneration, Name: "draft_booking_page", Provider: "cms", Description: "Generate a booking page wired to the scheduling provider"},
			{Kind: model.StepProvisioning, Name: "provision_site", Provider: "cms", Description: "Provision hosting and domain for the generated site"},
			{Kind: model.StepConfiguration, Name: "configure_ssl", Provider: "cms", Description: "Issue and attach a TLS certificate"},
			{Kind: model.StepVerification, Name: "verify_site_live", Provider: "cms", Description: "Fetch the published site and confirm booking page responds"},
			{Kind: model.StepNotification, Name: "notify_owner", Provider: "messaging", Description: "Send the owner a preview link and go-live summary"},
		},
		approvals: []string{"content_review", "go_live"},
	},

	model.PackageReceptionist: {
		guards: []model.Guard{
			{Expression: "consent.telephony == true", Description: "explicit consent required before telephony provisioning"},
			{Expression: "lead.candidate.phone != \"\"", Description: "a receptionist needs a number to answer"},
		},
		steps: []model.RecipeStep{
			{Kind: model.StepContentGeneration, Name: "draft_greeting_script", Provider: "telephony", Description: "Generate the answering script from the business profile"},
			{Kind: model.StepProvisioning, Name: "provision_number", Provider: "telephony", Description: "Provision a forwarding number for the receptionist"},
			{Kind: model.StepConfiguration, Name: "configure_booking_handoff", Provider: "scheduling", Description: "Connect the receptionist to the booking calendar"},
			{Kind: model.StepConfiguration, Name: "configure_business_hours", Provider: "telephony", Description: "Set answering windows from the listed business hours"},
			{Kind: model.StepVerification, Name: "verify_test_call", Provider: "telephony", Description: "Place a test call and confirm the script and handoff"},
			{Kind: model.StepNotification, Name: "notify_owner", Provider: "messaging", Description: "Send the owner the test call recording and activation summary"},
		},
		approvals: []string{"script_review", "activation"},
	},

	model.PackageFollowUp: {
		guards: []model.Guard{
			{Expression: "consent.sms == true", Description: "messaging consent required before any outbound follow-up"},
			{Expression: "compliance.respect_do_not_contact == true", Description: "do-not-contact screening must be active"},
		},
		steps: []model.RecipeStep{
			{Kind: model.StepContentGeneration, Name: "draft_followup_sequences", Provider: "messaging", Description: "Generate review request and re-engagement message sequences"},
			{Kind: model.StepConfiguration, Name: "configure_triggers", Provider: "crm", Description: "Wire appointment and review events to the sequences"},
			{Kind: model.StepConfiguration, Name: "configure_quiet_hours", Provider: "messaging", Description: "Restrict sends to permitted local hours"},
			{Kind: model.StepVerification, Name: "verify_test_sequence", Provider: "messaging", Description: "Run the sequence against a test contact end to end"},
			{Kind: model.StepNotification, Name: "notify_owner", Provider: "messaging", Description: "Send the owner the sequence previews and schedule"},
		},
		approvals: []string{"sequence_review"},
	},
}

// Compile builds the recipe for the chosen package against one lead
// snapshot. Pure: same package and lead always yield the same recipe. The
// returned recipe holds copies of the plan tables so callers cannot mutate
// the shared definitions.
func Compile(code model.PackageCode, lead model.Lead) (model.Recipe, error) {
	plan, ok := packagePlans[code]
	if !ok {
		return model.Recipe{}, fmt.Errorf("%w: %q", ErrUnknownPackage, code)
	}
	return model.Recipe{
		Package:        code,
		Guards:         append([]model.Guard(nil), plan.guards...),
		Steps:          append([]model.RecipeStep(nil), plan.steps...),
		HumanApprovals: append([]string(nil), plan.approvals...),
		Context:        lead,
	}, nil
}

// CompileAll compiles one recipe per suggestion attached to the lead, in
// suggestion order. Suggestions with unknown codes are skipped rather than
// failing the batch.
func CompileAll(lead model.Lead) []model.Recipe {
	recipes := make([]model.Recipe, 0, len(lead.Suggestions))
	for _, s := range lead.Suggestions {
		r, err := Compile(s.Code, lead)
		if err != nil {
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes
}
