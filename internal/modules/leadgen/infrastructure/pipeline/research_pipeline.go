package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/internal/modules/leadgen/infrastructure/llm"
	"LeadForge/pkg/util"
	"LeadForge/pkg/zlog"

	"go.uber.org/zap"
)

const (
	// extractionPromptBudget bounds how much page text enters the prompt.
	extractionPromptBudget = 4000
	rawPreviewBudget       = 500

	extractionMaxTokens   = 800
	extractionTemperature = 0.3

	extractionSystemPrompt = "You are a B2B research analyst. Extract structured data from company websites. Return only valid JSON."
)

// TextFetcher is the page-to-text collaborator. Implementations return
// cleaned visible text or an error-prefixed string; they never fail hard.
type TextFetcher interface {
	FetchText(ctx context.Context, pageURL string) string
}

// ResearchReport is the outcome of researching one URL. A degraded report
// carries Err and RawPreview instead of a populated dossier; callers check
// Degraded().
type ResearchReport struct {
	Dossier          entity.Dossier `json:"dossier"`
	ExtractionTokens int            `json:"extraction_tokens"`
	ExtractionCost   float64        `json:"extraction_cost"`
	Provider         llm.Provider   `json:"llm_provider"`
	Err              string         `json:"error,omitempty"`
	RawPreview       string         `json:"raw_content_preview,omitempty"`
}

func (r *ResearchReport) Degraded() bool { return r.Err != "" }

// ResearchPipeline scrapes a company site and extracts a structured dossier
// with a low-temperature structured generation call.
type ResearchPipeline struct {
	fetcher   TextFetcher
	generator Generator
}

func NewResearchPipeline(fetcher TextFetcher, generator Generator) *ResearchPipeline {
	return &ResearchPipeline{fetcher: fetcher, generator: generator}
}

// Research never returns an error: scrape failures, generation failures and
// unparseable model output all land in a degraded report so one bad lead
// cannot abort a prospecting batch.
func (p *ResearchPipeline) Research(ctx context.Context, pageURL string) *ResearchReport {
	raw := p.fetcher.FetchText(ctx, pageURL)
	if strings.HasPrefix(raw, "Error") {
		return &ResearchReport{
			Dossier: entity.Dossier{SourceURL: pageURL},
			Err:     raw,
		}
	}

	res := p.generator.Generate(ctx, llm.GenerationRequest{
		Prompt:           extractionPrompt(raw),
		SystemPrompt:     extractionSystemPrompt,
		MaxTokens:        extractionMaxTokens,
		Temperature:      extractionTemperature,
		StructuredOutput: true,
	})
	if res.Provider == llm.ProviderNone {
		return &ResearchReport{
			Dossier:    entity.Dossier{SourceURL: pageURL},
			Err:        res.Content,
			RawPreview: util.Truncate(raw, rawPreviewBudget),
		}
	}

	var dossier entity.Dossier
	if err := decodeExtraction(res.Content, &dossier); err != nil {
		zlog.Warn("extraction returned invalid JSON",
			zap.String("url", pageURL),
			zap.String("provider", string(res.Provider)),
			zap.Error(err))
		return &ResearchReport{
			Dossier:    entity.Dossier{SourceURL: pageURL},
			Err:        "model returned invalid JSON",
			RawPreview: util.Truncate(raw, rawPreviewBudget),
		}
	}

	dossier.SourceURL = pageURL
	zlog.Info("dossier extracted",
		zap.String("url", pageURL),
		zap.String("company", dossier.CompanyName),
		zap.String("provider", string(res.Provider)),
		zap.Int("tokens", res.Tokens))

	return &ResearchReport{
		Dossier:          dossier,
		ExtractionTokens: res.Tokens,
		ExtractionCost:   res.Cost,
		Provider:         res.Provider,
	}
}

func extractionPrompt(pageText string) string {
	return fmt.Sprintf(`Analyze this company website content and extract key information in JSON format.

Website Content:
%s

Extract the following:
1. company_name: The company's name
2. company_summary: A 2-sentence summary of what they do
3. value_proposition: Their main value prop or unique selling point
4. target_customers: List of customer types they serve (max 3)
5. technologies: List of technologies mentioned (max 5)
6. pain_points: List of potential pain points or challenges they address (max 3)
7. recent_news: Any recent news, funding, or achievements mentioned (max 2)

Return ONLY valid JSON, no other text.
`, util.Truncate(pageText, extractionPromptBudget))
}

// decodeExtraction parses the model response, tolerating a markdown code
// fence around the JSON document.
func decodeExtraction(content string, out any) error {
	trimmed := strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(trimmed), out); err == nil {
		return nil
	}

	if idx := strings.Index(trimmed, "```json"); idx >= 0 {
		rest := trimmed[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), out)
		}
	}
	return fmt.Errorf("no parseable JSON in response: %s", util.Truncate(trimmed, 80))
}
