package model

// StepKind classifies an automation recipe step by what it does.
type StepKind string

// Step kinds.
const (
	StepContentGeneration StepKind = "content_generation"
	StepProvisioning      StepKind = "provisioning"
	StepConfiguration     StepKind = "configuration"
	StepVerification      StepKind = "verification"
	StepNotification      StepKind = "notification"
)

// RecipeStep is one ordered action within a recipe.
type RecipeStep struct {
	// Kind classifies the action.
	Kind StepKind `json:"kind"`

	// Name is a stable identifier for the step within its package.
	Name string `json:"name"`

	// Provider is the target provider the executor should use
	// (e.g. "telephony", "cms", "messaging").
	Provider string `json:"provider,omitempty"`

	// Description says what the executor should do.
	Description string `json:"description"`
}

// Guard is a precondition expressed as a boolean expression over consent
// and context, evaluated by the external executor before any step runs.
// This core only authors guards; it never evaluates them.
type Guard struct {
	// Expression is the boolean expression, e.g. "consent.sms == true".
	Expression string `json:"expression"`

	// Description explains why the guard exists.
	Description string `json:"description,omitempty"`
}

// Recipe is a compiled, ordered, guarded action plan for executing a chosen
// package against one lead. Immutable once compiled.
type Recipe struct {
	// Package is the package this recipe executes.
	Package PackageCode `json:"package"`

	// Guards are preconditions the executor must verify before running.
	Guards []Guard `json:"guards,omitempty"`

	// Steps is the ordered action plan.
	Steps []RecipeStep `json:"steps"`

	// HumanApprovals names checkpoints where a human must sign off
	// before execution continues.
	HumanApprovals []string `json:"human_approvals,omitempty"`

	// Context is the lead snapshot the recipe was compiled against.
	Context Lead `json:"context"`
}
