package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/internal/modules/leadgen/infrastructure/llm"
	"LeadForge/pkg/xerr"
)

type fakeRetriever struct {
	matches   []entity.TemplateMatch
	queryErr  error
	templates map[string]*entity.Template

	lastQuery  string
	lastTopK   int
	lastFilter string
}

func (f *fakeRetriever) Query(ctx context.Context, text string, topK int, categoryFilter string) ([]entity.TemplateMatch, error) {
	f.lastQuery = text
	f.lastTopK = topK
	f.lastFilter = categoryFilter
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

func (f *fakeRetriever) GetByID(ctx context.Context, id string) (*entity.Template, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return t, nil
}

type fakeGenerator struct {
	result   llm.GenerationResult
	lastReq  llm.GenerationRequest
	reqCount int
}

func (f *fakeGenerator) Generate(ctx context.Context, req llm.GenerationRequest) llm.GenerationResult {
	f.lastReq = req
	f.reqCount++
	return f.result
}

func sampleTemplate() *entity.Template {
	return &entity.Template{
		Id:       "tpl_cold_01",
		Subject:  "Quick question about [company]",
		Body:     "Hi [Name],\n\nI noticed [Company] is working on [pain point]. We help [target type] with [your solution].\n\nBest,\n[Your Name]",
		Category: "cold_outreach",
		Tone:     "professional",
	}
}

func sampleDossier() *entity.Dossier {
	return &entity.Dossier{
		CompanyName:      "Acme Payments",
		CompanySummary:   "Payments infrastructure for marketplaces",
		ValueProposition: "Move money without the compliance burden",
		TargetCustomers:  []string{"Marketplaces"},
		Technologies:     []string{"Go"},
		PainPoints:       []string{"payment failures", "chargebacks"},
	}
}

func newEmailFixture(content string) (*PersonalizationPipeline, *fakeRetriever, *fakeGenerator) {
	retriever := &fakeRetriever{
		matches: []entity.TemplateMatch{{
			Id: "tpl_cold_01", Score: 0.87, Subject: "Quick question about [company]", Category: "cold_outreach",
		}},
		templates: map[string]*entity.Template{"tpl_cold_01": sampleTemplate()},
	}
	gen := &fakeGenerator{result: llm.GenerationResult{
		Content:  content,
		Tokens:   120,
		Cost:     0.0004,
		Provider: llm.ProviderOpenAI,
		Model:    llm.CheapOpenAIModel,
	}}
	return NewPersonalizationPipeline(retriever, gen), retriever, gen
}

func TestGenerateEmailHappyPath(t *testing.T) {
	p, retriever, gen := newEmailFixture("Subject: Fixing payment failures at Acme Payments\n\nHi there,\n\nShort personalized body.\n\nBest,\nJohn")

	art, err := p.GenerateEmail(context.Background(), sampleDossier(), entity.SenderContext{SenderName: "Dana"}, "cold_outreach")
	if err != nil {
		t.Fatalf("GenerateEmail: %v", err)
	}

	if retriever.lastTopK != 3 {
		t.Errorf("expected topK 3, got %d", retriever.lastTopK)
	}
	if retriever.lastFilter != "cold_outreach" {
		t.Errorf("category filter not forwarded: %q", retriever.lastFilter)
	}
	for _, part := range []string{"Payments infrastructure", "payment failures chargebacks", "compliance burden"} {
		if !strings.Contains(retriever.lastQuery, part) {
			t.Errorf("retrieval query missing %q: %q", part, retriever.lastQuery)
		}
	}

	if art.Subject != "Fixing payment failures at Acme Payments" {
		t.Errorf("subject not parsed: %q", art.Subject)
	}
	if !strings.Contains(art.Body, "Short personalized body.") {
		t.Errorf("body not parsed: %q", art.Body)
	}
	if strings.Contains(art.Body, "Subject:") {
		t.Errorf("subject marker leaked into body: %q", art.Body)
	}
	if art.TemplateId != "tpl_cold_01" || art.TemplateCategory != "cold_outreach" {
		t.Errorf("template provenance wrong: %+v", art)
	}
	if art.MatchScore != 0.87 {
		t.Errorf("match score not attached: %f", art.MatchScore)
	}
	if art.Tokens != 120 || art.Provider != llm.ProviderOpenAI {
		t.Errorf("usage metadata wrong: %+v", art)
	}

	if gen.lastReq.MaxTokens != 400 {
		t.Errorf("expected 400 max tokens, got %d", gen.lastReq.MaxTokens)
	}
	if gen.lastReq.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %f", gen.lastReq.Temperature)
	}
	if !strings.Contains(gen.lastReq.Prompt, sampleTemplate().Body) {
		t.Error("prompt must embed the raw template body")
	}
	if !strings.Contains(gen.lastReq.Prompt, "- pain point: payment failures") {
		t.Errorf("prompt missing variable mapping: %q", gen.lastReq.Prompt)
	}
}

func TestGenerateEmailNoMatchIsTerminal(t *testing.T) {
	p, retriever, gen := newEmailFixture("irrelevant")
	retriever.matches = nil

	_, err := p.GenerateEmail(context.Background(), sampleDossier(), entity.SenderContext{}, "")
	if !errors.Is(err, xerr.ErrNoTemplateMatch) {
		t.Fatalf("expected ErrNoTemplateMatch, got %v", err)
	}
	if gen.reqCount != 0 {
		t.Error("generation must not run without a template match")
	}
}

func TestGenerateEmailMissingTableRowIsDataFault(t *testing.T) {
	p, retriever, _ := newEmailFixture("irrelevant")
	retriever.templates = map[string]*entity.Template{}

	_, err := p.GenerateEmail(context.Background(), sampleDossier(), entity.SenderContext{}, "")
	if !errors.Is(err, xerr.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestGenerateEmailFallbackFormattingWithoutMarker(t *testing.T) {
	raw := "Here is your email without any marker line at all."
	p, _, _ := newEmailFixture(raw)

	art, err := p.GenerateEmail(context.Background(), sampleDossier(), entity.SenderContext{}, "")
	if err != nil {
		t.Fatalf("GenerateEmail: %v", err)
	}
	if art.Subject != sampleTemplate().Subject {
		t.Errorf("expected template subject fallback, got %q", art.Subject)
	}
	if art.Body != raw {
		t.Errorf("expected raw response as body, got %q", art.Body)
	}
	if art.Subject == "" || art.Body == "" {
		t.Error("fallback must still yield a non-empty subject/body pair")
	}
}

func TestGenerateEmailSurvivesGenerationFailure(t *testing.T) {
	p, _, gen := newEmailFixture("")
	gen.result = llm.GenerationResult{
		Content:  "Error: all generation providers failed: quota. Prompt: ...",
		Provider: llm.ProviderNone,
		Model:    "error",
	}

	art, err := p.GenerateEmail(context.Background(), sampleDossier(), entity.SenderContext{}, "")
	if err != nil {
		t.Fatalf("generation failure must not surface as pipeline error: %v", err)
	}
	if art.Subject == "" || art.Body == "" {
		t.Errorf("degraded artifact must still carry subject/body: %+v", art)
	}
	if art.Tokens != 0 || art.Cost != 0 {
		t.Errorf("degraded artifact must carry zero usage: %+v", art)
	}
}

func TestBuildVariablesDefaults(t *testing.T) {
	d := &entity.Dossier{CompanyName: "Acme", PainPoints: []string{}, ValueProposition: ""}
	vars := buildVariables(d, entity.SenderContext{})

	want := map[string]string{
		"Name":          "there",
		"company":       "Acme",
		"pain point":    "growth",
		"goal":          "improving results",
		"problem":       "challenges",
		"value_prop":    "your solution",
		"industry":      "businesses",
		"target type":   "companies",
		"technology":    "technology",
		"Your Name":     "John",
		"your solution": "our platform",
		"Website":       "example.com",
		"result":        "better results",
		"metric":        "conversions",
		"time":          "30 days",
	}
	for k, v := range want {
		if vars[k] != v {
			t.Errorf("variable %q: got %q want %q", k, vars[k], v)
		}
	}
	for k, v := range vars {
		if strings.TrimSpace(v) == "" {
			t.Errorf("variable %q resolved to empty", k)
		}
	}
}

func TestBuildVariablesTruncatesSummary(t *testing.T) {
	d := &entity.Dossier{CompanySummary: strings.Repeat("x", 400)}
	vars := buildVariables(d, entity.SenderContext{})
	if len(vars["something specific"]) > 100 {
		t.Errorf("summary variable not truncated: %d", len(vars["something specific"]))
	}
}

func TestRetrievalQueryBudget(t *testing.T) {
	d := &entity.Dossier{CompanySummary: strings.Repeat("s", 1000)}
	if q := retrievalQuery(d); len(q) > retrievalQueryBudget {
		t.Errorf("query exceeds budget: %d", len(q))
	}
}
