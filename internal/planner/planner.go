package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/leadlens/leadlens/internal/config"
	"github.com/leadlens/leadlens/internal/model"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT4oMini

var (
	// ErrNoAPIKey is returned when no OpenAI API key is configured.
	ErrNoAPIKey = errors.New("planner: no OpenAI API key configured")

	// ErrEmptyResponse is returned when the model returns no choices.
	ErrEmptyResponse = errors.New("planner: empty model response")
)

// ChatAPI is the slice of the OpenAI client the planner needs. The real
// *openai.Client satisfies it directly; tests substitute a mock.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Planner produces verification plans and run syntheses through a chat
// completion API.
type Planner struct {
	api    ChatAPI
	model  string
	logger *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithModel overrides the chat model.
func WithModel(m string) Option {
	return func(p *Planner) {
		if m != "" {
			p.model = m
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// New creates a planner on an existing chat API.
func New(api ChatAPI, opts ...Option) *Planner {
	p := &Planner{
		api:    api,
		model:  DefaultModel,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromSecrets creates a planner from configured secrets, or ErrNoAPIKey
// when no key is set. Callers treat ErrNoAPIKey as "run without generative
// collaborators," not as a failure.
func NewFromSecrets(secrets config.Secrets, opts ...Option) (*Planner, error) {
	if secrets.OpenAIAPIKey == "" {
		return nil, ErrNoAPIKey
	}
	if secrets.OpenAIModel != "" {
		opts = append([]Option{WithModel(secrets.OpenAIModel)}, opts...)
	}
	return New(openai.NewClient(secrets.OpenAIAPIKey), opts...), nil
}

const planSystemPrompt = `You plan small-business lead verification. Given a search request, respond with ONLY a JSON object, no prose, shaped as:
{"places_queries":["..."],"website_paths_to_check":["/..."],"booking_vendor_patterns":["..."],"cross_validation_rules":["..."],"enrichment_order":["..."]}
places_queries are business-directory text searches. website_paths_to_check are relative paths worth auditing. booking_vendor_patterns are lowercase substrings identifying booking products.`

// Plan asks the planning collaborator for a verification plan. The output
// is untrusted: any transport error or unparsable payload is returned as an
// error for the orchestrator to degrade on.
func (p *Planner) Plan(ctx context.Context, queryText string) (model.VerificationPlan, error) {
	content, err := p.complete(ctx, planSystemPrompt, queryText)
	if err != nil {
		return model.VerificationPlan{}, err
	}

	var plan model.VerificationPlan
	if err := json.Unmarshal([]byte(stripFences(content)), &plan); err != nil {
		return model.VerificationPlan{}, fmt.Errorf("planner: unparsable plan: %w", err)
	}
	if len(plan.PlacesQueries) == 0 {
		return model.VerificationPlan{}, errors.New("planner: plan carries no places queries")
	}
	p.logger.Debug("verification plan received",
		"places_queries", len(plan.PlacesQueries),
		"website_paths", len(plan.WebsitePaths),
		"vendor_patterns", len(plan.BookingVendorPatterns),
	)
	return plan, nil
}

const synthesisSystemPrompt = `You summarize lead-discovery runs for a sales operator. Given ranked leads and the run's error log, respond with ONLY a JSON object, no prose, shaped as:
{"confidence_reasons":["..."],"recommendation":"...","ranked_summary":"..."}
confidence_reasons explain how much to trust the evidence. recommendation says what to do first. ranked_summary describes the top leads in order.`

// synthesisInput is the payload handed to the synthesis collaborator. Full
// evidence logs are heavy, so leads are flattened to what rationale needs.
type synthesisInput struct {
	Leads  []synthesisLead    `json:"leads"`
	Errors []model.StageError `json:"errors,omitempty"`
}

type synthesisLead struct {
	Name        string   `json:"name"`
	Score       float64  `json:"score"`
	ReasonCodes []string `json:"reason_codes,omitempty"`
	Packages    []string `json:"packages,omitempty"`
}

// Synthesize asks the synthesis collaborator for run rationale. Errors are
// returned for the orchestrator to substitute FallbackSynthesis.
func (p *Planner) Synthesize(ctx context.Context, leads []model.Lead, stageErrors []model.StageError) (model.Synthesis, error) {
	input := synthesisInput{Errors: stageErrors}
	for _, lead := range leads {
		sl := synthesisLead{
			Name:        lead.Candidate.Name,
			Score:       lead.Score,
			ReasonCodes: lead.ReasonCodes,
		}
		for _, s := range lead.Suggestions {
			sl.Packages = append(sl.Packages, string(s.Code))
		}
		input.Leads = append(input.Leads, sl)
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return model.Synthesis{}, fmt.Errorf("planner: encode synthesis input: %w", err)
	}

	content, err := p.complete(ctx, synthesisSystemPrompt, string(payload))
	if err != nil {
		return model.Synthesis{}, err
	}

	var syn model.Synthesis
	if err := json.Unmarshal([]byte(stripFences(content)), &syn); err != nil {
		return model.Synthesis{}, fmt.Errorf("planner: unparsable synthesis: %w", err)
	}
	if syn.Recommendation == "" {
		return model.Synthesis{}, errors.New("planner: synthesis carries no recommendation")
	}
	return syn, nil
}

// complete runs one chat completion and returns the first choice's content.
func (p *Planner) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("planner: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// stripFences removes a markdown code fence wrapper, which chat models add
// around JSON despite instructions not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DefaultPlan is the fixed fallback used when the planning collaborator is
// unavailable or returns garbage: one directory query assembled from the
// validated query, the default audit paths, and no extra vendor patterns.
func DefaultPlan(q *model.Query) model.VerificationPlan {
	search := strings.TrimSpace(fmt.Sprintf("%s in %s, %s", verticalLabel(q.Vertical), q.Geo.City, q.Geo.State))
	return model.VerificationPlan{
		PlacesQueries:   []string{search},
		WebsitePaths:    append([]string(nil), config.DefaultAuditPaths...),
		EnrichmentOrder: []string{"discovery", "audit", "scoring"},
	}
}

// verticalLabel renders a vertical as directory search text.
func verticalLabel(v model.Vertical) string {
	switch v {
	case "", model.VerticalGeneric:
		return "local businesses"
	case model.VerticalLawFirm:
		return "law firms"
	case model.VerticalAutoRepair:
		return "auto repair shops"
	case model.VerticalHVAC:
		return "HVAC companies"
	default:
		return string(v) + "s"
	}
}

// FallbackSynthesis is the fixed degraded synthesis substituted when the
// synthesis collaborator fails. Deterministic over the lead list.
func FallbackSynthesis(leads []model.Lead) model.Synthesis {
	syn := model.Synthesis{
		Degraded:          true,
		ConfidenceReasons: []string{"synthesis collaborator unavailable; summary generated from scores only"},
	}
	if len(leads) == 0 {
		syn.Recommendation = "No leads scored in this run. Review the error log and widen the search."
		syn.RankedSummary = "No leads to summarize."
		return syn
	}
	top := leads[0]
	syn.Recommendation = fmt.Sprintf("Start with %s (score %.0f).", top.Candidate.Name, top.Score)

	var b strings.Builder
	for i, lead := range leads {
		if i >= 5 {
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%d. %s (%.0f)", i+1, lead.Candidate.Name, lead.Score)
	}
	syn.RankedSummary = b.String()
	return syn
}
