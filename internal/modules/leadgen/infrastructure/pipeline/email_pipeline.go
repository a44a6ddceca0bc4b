package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/internal/modules/leadgen/infrastructure/llm"
	"LeadForge/pkg/util"
	"LeadForge/pkg/xerr"
	"LeadForge/pkg/zlog"

	"go.uber.org/zap"
)

const (
	// retrievalQueryBudget bounds the template retrieval query.
	retrievalQueryBudget = 500
	retrievalTopK        = 3

	emailMaxTokens   = 400
	emailTemperature = 0.7

	subjectMarker = "Subject:"

	// summaryVariableBudget bounds the "something specific" variable taken
	// from the company summary.
	summaryVariableBudget = 100
)

// TemplateRetriever is the slice of the template index the pipeline needs.
type TemplateRetriever interface {
	Query(ctx context.Context, text string, topK int, categoryFilter string) ([]entity.TemplateMatch, error)
	GetByID(ctx context.Context, id string) (*entity.Template, error)
}

// Generator is the slice of GenerationService the pipelines need.
type Generator interface {
	Generate(ctx context.Context, req llm.GenerationRequest) llm.GenerationResult
}

// EmailArtifact is a finished personalized email plus its provenance and
// usage metadata.
type EmailArtifact struct {
	Subject          string       `json:"subject"`
	Body             string       `json:"body"`
	TemplateId       string       `json:"template_id"`
	TemplateCategory string       `json:"template_category"`
	Tokens           int          `json:"tokens"`
	Cost             float64      `json:"cost"`
	Provider         llm.Provider `json:"llm_provider"`
	Model            string       `json:"model"`
	MatchScore       float32      `json:"template_match_score"`
}

// PersonalizationPipeline turns a dossier plus sender context into a
// personalized email: retrieve the best template, map dossier fields onto its
// placeholders, generate, parse.
type PersonalizationPipeline struct {
	retriever TemplateRetriever
	generator Generator
}

func NewPersonalizationPipeline(retriever TemplateRetriever, generator Generator) *PersonalizationPipeline {
	return &PersonalizationPipeline{retriever: retriever, generator: generator}
}

// GenerateEmail runs the pipeline. A missing template match and an index
// entry pointing at an absent table row are the only terminal errors;
// generation failures degrade into the fallback-formatted artifact instead.
func (p *PersonalizationPipeline) GenerateEmail(ctx context.Context, dossier *entity.Dossier, sender entity.SenderContext, categoryFilter string) (*EmailArtifact, error) {
	if dossier == nil {
		dossier = &entity.Dossier{}
	}

	query := retrievalQuery(dossier)
	zlog.Info("searching templates",
		zap.String("company", dossier.CompanyName),
		zap.String("query", util.Truncate(query, 100)))

	matches, err := p.retriever.Query(ctx, query, retrievalTopK, categoryFilter)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, xerr.ErrNoTemplateMatch
	}
	best := matches[0]

	tpl, err := p.retriever.GetByID(ctx, best.Id)
	if err != nil || tpl == nil {
		zlog.Error("index entry has no table row", zap.String("template_id", best.Id), zap.Error(err))
		return nil, xerr.ErrTemplateNotFound
	}

	variables := buildVariables(dossier, sender)
	res := p.generator.Generate(ctx, llm.GenerationRequest{
		Prompt:      personalizationPrompt(tpl, variables),
		MaxTokens:   emailMaxTokens,
		Temperature: emailTemperature,
	})

	subject, body := parseSubjectBody(res.Content, tpl.Subject)
	return &EmailArtifact{
		Subject:          subject,
		Body:             body,
		TemplateId:       tpl.Id,
		TemplateCategory: tpl.Category,
		Tokens:           res.Tokens,
		Cost:             res.Cost,
		Provider:         res.Provider,
		Model:            res.Model,
		MatchScore:       best.Score,
	}, nil
}

// retrievalQuery concatenates summary, pain points and value proposition,
// bounded to the query budget.
func retrievalQuery(d *entity.Dossier) string {
	parts := make([]string, 0, 3)
	if d.CompanySummary != "" {
		parts = append(parts, d.CompanySummary)
	}
	if len(d.PainPoints) > 0 {
		parts = append(parts, strings.Join(d.PainPoints, " "))
	}
	if d.ValueProposition != "" {
		parts = append(parts, d.ValueProposition)
	}
	return util.Truncate(strings.Join(parts, " "), retrievalQueryBudget)
}

// buildVariables maps dossier and sender fields onto the placeholder names
// templates use. Every key resolves to something: missing data falls back to
// the documented generic substitution, never to an empty string.
func buildVariables(d *entity.Dossier, sender entity.SenderContext) map[string]string {
	first := func(list []string, fallback string) string {
		if len(list) > 0 && strings.TrimSpace(list[0]) != "" {
			return list[0]
		}
		return fallback
	}
	orDefault := func(v, fallback string) string {
		if strings.TrimSpace(v) != "" {
			return v
		}
		return fallback
	}

	specific := "your recent work"
	if strings.TrimSpace(d.CompanySummary) != "" {
		specific = util.Truncate(d.CompanySummary, summaryVariableBudget)
	}

	return map[string]string{
		"Name":    "there",
		"company": orDefault(d.CompanyName, "your company"),
		"Company": orDefault(d.CompanyName, "your company"),

		"pain point": first(d.PainPoints, "growth"),
		"goal":       first(d.PainPoints, "improving results"),
		"problem":    first(d.PainPoints, "challenges"),

		"value_prop":  orDefault(d.ValueProposition, "your solution"),
		"industry":    first(d.TargetCustomers, "businesses"),
		"target type": first(d.TargetCustomers, "companies"),

		"technology": first(d.Technologies, "technology"),

		"Your Name":     orDefault(sender.SenderName, "John"),
		"your solution": orDefault(sender.Solution, "our platform"),
		"Website":       orDefault(sender.Website, "example.com"),

		"something specific": specific,
		"result":             "better results",
		"metric":             "conversions",
		"time":               "30 days",
	}
}

func personalizationPrompt(tpl *entity.Template, variables map[string]string) string {
	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var info strings.Builder
	for _, k := range keys {
		info.WriteString(fmt.Sprintf("- %s: %s\n", k, variables[k]))
	}

	return fmt.Sprintf(`You are an expert cold email writer. Personalize this email template using the provided information.

TEMPLATE:
Subject: %s

Body:
%s

AVAILABLE INFORMATION:
%s
INSTRUCTIONS:
1. Replace ALL placeholders [like this] with appropriate values from the information
2. If a placeholder has no exact match, use the most relevant information
3. Keep the tone and style of the original template
4. Make it sound natural and personalized
5. Keep it concise (under 150 words)
6. Return ONLY the personalized email (subject and body)

FORMAT:
Subject: <personalized subject>

<personalized body>
`, tpl.Subject, tpl.Body, info.String())
}

// parseSubjectBody finds the subject marker line; everything after it is the
// body. A response without the marker falls back to the template subject with
// the whole response as body, so the pipeline always yields a subject/body
// pair.
func parseSubjectBody(content, templateSubject string) (string, string) {
	subject := ""
	bodyLines := make([]string, 0)
	foundSubject := false

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if !foundSubject && strings.HasPrefix(line, subjectMarker) {
			subject = strings.TrimSpace(strings.TrimPrefix(line, subjectMarker))
			foundSubject = true
			continue
		}
		if foundSubject && strings.TrimSpace(line) != "" {
			bodyLines = append(bodyLines, line)
		}
	}

	body := strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if subject == "" {
		return templateSubject, strings.TrimSpace(content)
	}
	return subject, body
}
