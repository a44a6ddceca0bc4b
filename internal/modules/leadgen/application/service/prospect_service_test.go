package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"LeadForge/internal/modules/leadgen/application/dto/request"
	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/internal/modules/leadgen/infrastructure/llm"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type stubChatModel struct {
	content string
	err     error
}

func (m *stubChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{
		Role:    schema.Assistant,
		Content: m.content,
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		},
	}, nil
}

func (m *stubChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

type stubFactory struct {
	models   map[llm.Provider]*stubChatModel
	bindings []llm.Binding
}

func (f *stubFactory) ChatModel(ctx context.Context, b llm.Binding, structured bool) (model.BaseChatModel, error) {
	f.bindings = append(f.bindings, b)
	m, ok := f.models[b.Provider]
	if !ok {
		return nil, errors.New("no model for provider")
	}
	return m, nil
}

type stubDiscoverer struct {
	hits []entity.SearchHit
}

func (d *stubDiscoverer) Discover(ctx context.Context, profile string) ([]entity.SearchHit, error) {
	return d.hits, nil
}

type stubFetcher struct {
	texts map[string]string
}

func (f *stubFetcher) FetchText(ctx context.Context, pageURL string) string {
	return f.texts[pageURL]
}

func testBackends(factory llm.ModelFactory) GenerationBackends {
	return GenerationBackends{
		DefaultProvider: "openai",
		Defaults: llm.Defaults{
			APIKeys: map[llm.Provider]string{
				llm.ProviderOpenAI: "sk-default",
				llm.ProviderGemini: "g-default",
			},
		},
		Factory: factory,
	}
}

const dossierJSON = `{"company_name":"Acme","company_summary":"Payments for marketplaces.","pain_points":["churn"]}`

func TestProspectResearchesEveryHitAndCollectsErrors(t *testing.T) {
	factory := &stubFactory{models: map[llm.Provider]*stubChatModel{
		llm.ProviderOpenAI: {content: dossierJSON},
	}}
	discovery := &stubDiscoverer{hits: []entity.SearchHit{
		{Title: "Acme", URL: "https://acme.io"},
		{Title: "Broken", URL: "https://broken.example"},
	}}
	fetcher := &stubFetcher{texts: map[string]string{
		"https://acme.io":        "Acme builds payments infrastructure.",
		"https://broken.example": "Error scraping https://broken.example: timeout",
	}}

	svc := NewProspectService(discovery, fetcher, testBackends(factory))
	resp, err := svc.Prospect(context.Background(), request.ProspectRequest{ICP: "fintech saas"})
	if err != nil {
		t.Fatalf("Prospect: %v", err)
	}

	if len(resp.Leads) != 2 {
		t.Fatalf("expected a lead per hit, got %d", len(resp.Leads))
	}
	if resp.Leads[0].Report.Degraded() {
		t.Errorf("healthy lead reported degraded: %+v", resp.Leads[0].Report)
	}
	if resp.Leads[0].Report.Dossier.CompanyName != "Acme" {
		t.Errorf("dossier not extracted: %+v", resp.Leads[0].Report.Dossier)
	}
	if !resp.Leads[1].Report.Degraded() {
		t.Error("scrape failure should degrade its lead")
	}
	if len(resp.Errors) != 1 || !strings.Contains(resp.Errors[0], "broken.example") {
		t.Errorf("per-lead errors not collected: %v", resp.Errors)
	}

	// Only the healthy lead ran extraction: one generation at 150 tokens.
	if resp.TotalTokens != 150 {
		t.Errorf("expected 150 total tokens, got %d", resp.TotalTokens)
	}
	if resp.Provider != "openai" {
		t.Errorf("expected openai provider, got %s", resp.Provider)
	}
}

func TestProspectDefaultCredentialPinsCheapModel(t *testing.T) {
	factory := &stubFactory{models: map[llm.Provider]*stubChatModel{
		llm.ProviderOpenAI: {content: dossierJSON},
	}}
	svc := NewProspectService(
		&stubDiscoverer{hits: []entity.SearchHit{{URL: "https://acme.io"}}},
		&stubFetcher{texts: map[string]string{"https://acme.io": "page text"}},
		testBackends(factory),
	)

	// The caller asked for gpt-4o but brought no key: the shared credential
	// pins the cheap model.
	_, err := svc.Prospect(context.Background(), request.ProspectRequest{
		ICP:    "fintech",
		Config: request.GenerationConfig{PreferredProvider: "openai", OpenAIModel: "gpt-4o"},
	})
	if err != nil {
		t.Fatalf("Prospect: %v", err)
	}
	if len(factory.bindings) == 0 {
		t.Fatal("no generation call recorded")
	}
	b := factory.bindings[0]
	if b.Model != llm.CheapOpenAIModel || !b.DefaultCredential {
		t.Errorf("default credential not pinned to cheap model: %+v", b)
	}
}

func TestProspectUnknownProviderRejected(t *testing.T) {
	svc := NewProspectService(&stubDiscoverer{}, &stubFetcher{}, testBackends(&stubFactory{}))
	_, err := svc.Prospect(context.Background(), request.ProspectRequest{
		ICP:    "fintech",
		Config: request.GenerationConfig{PreferredProvider: "clippy"},
	})
	if err == nil {
		t.Fatal("expected unknown provider error")
	}
}
