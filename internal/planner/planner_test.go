package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/leadlens/leadlens/internal/config"
	"github.com/leadlens/leadlens/internal/model"
)

// mockChatAPI returns a canned response or error and records the request.
type mockChatAPI struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (m *mockChatAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return openai.ChatCompletionResponse{}, m.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.content}},
		},
	}, nil
}

func TestPlanner_Plan(t *testing.T) {
	t.Parallel()

	mock := &mockChatAPI{content: `{
		"places_queries": ["dentists in Columbia, SC"],
		"website_paths_to_check": ["/", "/appointments"],
		"booking_vendor_patterns": ["calendly", "zocdoc"],
		"enrichment_order": ["discovery", "audit"]
	}`}
	p := New(mock, WithModel("test-model"))

	plan, err := p.Plan(context.Background(), "dentists in Columbia SC without websites")
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if len(plan.PlacesQueries) != 1 || plan.PlacesQueries[0] != "dentists in Columbia, SC" {
		t.Errorf("PlacesQueries = %v", plan.PlacesQueries)
	}
	if len(plan.BookingVendorPatterns) != 2 {
		t.Errorf("BookingVendorPatterns = %v, want 2 patterns", plan.BookingVendorPatterns)
	}
	if mock.lastReq.Model != "test-model" {
		t.Errorf("request model = %q, want the configured override", mock.lastReq.Model)
	}
	if mock.lastReq.Temperature != 0 {
		t.Errorf("request temperature = %v, want 0 for reproducibility", mock.lastReq.Temperature)
	}
}

func TestPlanner_Plan_FencedJSON(t *testing.T) {
	t.Parallel()

	mock := &mockChatAPI{content: "```json\n{\"places_queries\": [\"plumbers in Richmond, VA\"]}\n```"}
	p := New(mock)

	plan, err := p.Plan(context.Background(), "plumbers in Richmond")
	if err != nil {
		t.Fatalf("Plan() error on fenced JSON: %v", err)
	}
	if len(plan.PlacesQueries) != 1 {
		t.Errorf("PlacesQueries = %v", plan.PlacesQueries)
	}
}

func TestPlanner_Plan_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mock *mockChatAPI
	}{
		{"prose instead of JSON", &mockChatAPI{content: "Here is your plan: search for dentists."}},
		{"empty places queries", &mockChatAPI{content: `{"places_queries": []}`}},
		{"transport error", &mockChatAPI{err: errors.New("rate limited")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tt.mock).Plan(context.Background(), "dentists"); err == nil {
				t.Error("Plan() = nil error, want an error for the orchestrator to degrade on")
			}
		})
	}
}

func TestPlanner_Synthesize(t *testing.T) {
	t.Parallel()

	mock := &mockChatAPI{content: `{
		"confidence_reasons": ["two paths fetched per site"],
		"recommendation": "Call Smile Dental first.",
		"ranked_summary": "Smile Dental leads on pain and reachability."
	}`}
	p := New(mock)

	leads := []model.Lead{{
		Candidate:   model.Candidate{Name: "Smile Dental"},
		Score:       82,
		ReasonCodes: []string{model.ReasonNoBookingTool},
		Suggestions: []model.PackageSuggestion{{Code: model.PackageReceptionist, Confidence: 0.75}},
	}}

	syn, err := p.Synthesize(context.Background(), leads, nil)
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if syn.Degraded {
		t.Error("collaborator synthesis marked degraded")
	}
	if syn.Recommendation == "" || syn.RankedSummary == "" {
		t.Errorf("incomplete synthesis: %+v", syn)
	}

	// The flattened payload should name the lead and its package, not carry
	// raw evidence logs.
	user := mock.lastReq.Messages[len(mock.lastReq.Messages)-1].Content
	if !strings.Contains(user, "Smile Dental") || !strings.Contains(user, "ai_receptionist") {
		t.Errorf("synthesis payload missing lead fields: %s", user)
	}
}

func TestPlanner_Synthesize_MissingRecommendation(t *testing.T) {
	t.Parallel()

	mock := &mockChatAPI{content: `{"ranked_summary": "stuff"}`}
	if _, err := New(mock).Synthesize(context.Background(), nil, nil); err == nil {
		t.Error("Synthesize() = nil error for a synthesis without a recommendation")
	}
}

func TestNewFromSecrets(t *testing.T) {
	t.Parallel()

	if _, err := NewFromSecrets(config.Secrets{}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
	p, err := NewFromSecrets(config.Secrets{OpenAIAPIKey: "test-key", OpenAIModel: "custom"})
	if err != nil {
		t.Fatalf("NewFromSecrets() error: %v", err)
	}
	if p.model != "custom" {
		t.Errorf("model = %q, want the configured override", p.model)
	}
}

func TestDefaultPlan(t *testing.T) {
	t.Parallel()

	q := &model.Query{
		Vertical: model.VerticalDentist,
		Geo:      model.Geo{City: "Columbia", State: "SC"},
	}
	plan := DefaultPlan(q)

	if len(plan.PlacesQueries) != 1 {
		t.Fatalf("PlacesQueries = %v, want exactly one default query", plan.PlacesQueries)
	}
	if got := plan.PlacesQueries[0]; got != "dentists in Columbia, SC" {
		t.Errorf("default query = %q", got)
	}
	if len(plan.WebsitePaths) != len(config.DefaultAuditPaths) {
		t.Errorf("WebsitePaths = %v, want the default audit paths", plan.WebsitePaths)
	}
}

func TestFallbackSynthesis(t *testing.T) {
	t.Parallel()

	t.Run("empty run", func(t *testing.T) {
		t.Parallel()
		syn := FallbackSynthesis(nil)
		if !syn.Degraded {
			t.Error("fallback not marked degraded")
		}
		if syn.Recommendation == "" || syn.RankedSummary == "" {
			t.Errorf("incomplete fallback: %+v", syn)
		}
	})

	t.Run("names the top lead", func(t *testing.T) {
		t.Parallel()
		syn := FallbackSynthesis([]model.Lead{
			{Candidate: model.Candidate{Name: "Smile Dental"}, Score: 82},
			{Candidate: model.Candidate{Name: "Bright Smiles"}, Score: 64},
		})
		if !syn.Degraded {
			t.Error("fallback not marked degraded")
		}
		if !strings.Contains(syn.Recommendation, "Smile Dental") {
			t.Errorf("recommendation %q does not name the top lead", syn.Recommendation)
		}
		if !strings.Contains(syn.RankedSummary, "Bright Smiles") {
			t.Errorf("summary %q does not include the second lead", syn.RankedSummary)
		}
	})
}
