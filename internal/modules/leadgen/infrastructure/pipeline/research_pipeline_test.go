package pipeline

import (
	"context"
	"strings"
	"testing"

	"LeadForge/internal/modules/leadgen/infrastructure/llm"
)

type fakeFetcher struct {
	text    string
	lastURL string
}

func (f *fakeFetcher) FetchText(ctx context.Context, pageURL string) string {
	f.lastURL = pageURL
	return f.text
}

const extractedJSON = `{
  "company_name": "Acme Payments",
  "company_summary": "Payments infrastructure for marketplaces.",
  "value_proposition": "Move money without the compliance burden",
  "target_customers": ["Marketplaces", "Platforms"],
  "technologies": ["Go", "Kafka"],
  "pain_points": ["payment failures"],
  "recent_news": ["Series B"]
}`

func TestResearchExtractsDossier(t *testing.T) {
	fetcher := &fakeFetcher{text: "Acme Payments moves money between buyers and sellers."}
	gen := &fakeGenerator{result: llm.GenerationResult{
		Content: extractedJSON, Tokens: 300, Cost: 0.001, Provider: llm.ProviderOpenAI, Model: llm.CheapOpenAIModel,
	}}
	p := NewResearchPipeline(fetcher, gen)

	report := p.Research(context.Background(), "https://acmepay.io")
	if report.Degraded() {
		t.Fatalf("unexpected degraded report: %+v", report)
	}
	if report.Dossier.CompanyName != "Acme Payments" {
		t.Errorf("dossier not populated: %+v", report.Dossier)
	}
	if report.Dossier.SourceURL != "https://acmepay.io" {
		t.Errorf("source url not attached: %q", report.Dossier.SourceURL)
	}
	if len(report.Dossier.PainPoints) != 1 || report.Dossier.PainPoints[0] != "payment failures" {
		t.Errorf("pain points wrong: %+v", report.Dossier.PainPoints)
	}
	if report.ExtractionTokens != 300 || report.Provider != llm.ProviderOpenAI {
		t.Errorf("extraction metadata wrong: %+v", report)
	}

	if !gen.lastReq.StructuredOutput {
		t.Error("extraction must request structured output")
	}
	if gen.lastReq.MaxTokens != 800 || gen.lastReq.Temperature != 0.3 {
		t.Errorf("extraction call misconfigured: %+v", gen.lastReq)
	}
	if !strings.Contains(gen.lastReq.SystemPrompt, "B2B research analyst") {
		t.Errorf("system prompt missing: %q", gen.lastReq.SystemPrompt)
	}
	if !strings.Contains(gen.lastReq.Prompt, fetcher.text) {
		t.Error("prompt must embed the page text")
	}
}

func TestResearchBoundsPromptText(t *testing.T) {
	fetcher := &fakeFetcher{text: strings.Repeat("w", 9000)}
	gen := &fakeGenerator{result: llm.GenerationResult{Content: extractedJSON, Provider: llm.ProviderOpenAI}}
	p := NewResearchPipeline(fetcher, gen)

	p.Research(context.Background(), "https://acmepay.io")
	if strings.Contains(gen.lastReq.Prompt, strings.Repeat("w", extractionPromptBudget+1)) {
		t.Error("page text not bounded to the extraction budget")
	}
}

func TestResearchToleratesFencedJSON(t *testing.T) {
	fenced := "Here you go:\n```json\n" + extractedJSON + "\n```\nThanks!"
	fetcher := &fakeFetcher{text: "some page text"}
	gen := &fakeGenerator{result: llm.GenerationResult{Content: fenced, Provider: llm.ProviderGemini}}
	p := NewResearchPipeline(fetcher, gen)

	report := p.Research(context.Background(), "https://acmepay.io")
	if report.Degraded() {
		t.Fatalf("fenced JSON should parse: %+v", report)
	}
	if report.Dossier.CompanyName != "Acme Payments" {
		t.Errorf("dossier not populated from fenced JSON: %+v", report.Dossier)
	}
}

func TestResearchDegradesOnScrapeError(t *testing.T) {
	fetcher := &fakeFetcher{text: "Error scraping https://acmepay.io: connection refused"}
	gen := &fakeGenerator{}
	p := NewResearchPipeline(fetcher, gen)

	report := p.Research(context.Background(), "https://acmepay.io")
	if !report.Degraded() {
		t.Fatal("expected degraded report")
	}
	if !strings.HasPrefix(report.Err, "Error scraping") {
		t.Errorf("scrape error not carried: %q", report.Err)
	}
	if report.Dossier.SourceURL != "https://acmepay.io" {
		t.Errorf("source url missing on degraded report: %+v", report)
	}
	if gen.reqCount != 0 {
		t.Error("extraction must not run on a failed scrape")
	}
}

func TestResearchDegradesOnInvalidJSON(t *testing.T) {
	fetcher := &fakeFetcher{text: "some page text about acme"}
	gen := &fakeGenerator{result: llm.GenerationResult{Content: "I could not find anything useful.", Provider: llm.ProviderOpenAI}}
	p := NewResearchPipeline(fetcher, gen)

	report := p.Research(context.Background(), "https://acmepay.io")
	if !report.Degraded() {
		t.Fatal("expected degraded report")
	}
	if report.RawPreview == "" || len(report.RawPreview) > rawPreviewBudget {
		t.Errorf("raw preview wrong: %q", report.RawPreview)
	}
}

func TestResearchDegradesOnGenerationFailure(t *testing.T) {
	fetcher := &fakeFetcher{text: "some page text"}
	gen := &fakeGenerator{result: llm.GenerationResult{
		Content: "Error: all generation providers failed: quota. Prompt: ...", Provider: llm.ProviderNone, Model: "error",
	}}
	p := NewResearchPipeline(fetcher, gen)

	report := p.Research(context.Background(), "https://acmepay.io")
	if !report.Degraded() {
		t.Fatal("expected degraded report")
	}
	if report.ExtractionTokens != 0 || report.ExtractionCost != 0 {
		t.Errorf("degraded report must carry zero usage: %+v", report)
	}
}
