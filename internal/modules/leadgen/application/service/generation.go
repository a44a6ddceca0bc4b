package service

import (
	"strings"

	"LeadForge/internal/modules/leadgen/application/dto/request"
	"LeadForge/internal/modules/leadgen/infrastructure/llm"
)

// GenerationBackends bundles everything needed to build a per-request
// GenerationService. Each request gets its own instance, so usage counters
// are isolated per call and caller credentials never leak between requests.
type GenerationBackends struct {
	DefaultProvider string
	Defaults        llm.Defaults
	Factory         llm.ModelFactory
}

func (g GenerationBackends) NewService(cfg request.GenerationConfig) (*llm.GenerationService, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.PreferredProvider))
	if provider == "" {
		provider = strings.ToLower(strings.TrimSpace(g.DefaultProvider))
	}
	if provider == "" {
		provider = string(llm.ProviderOpenAI)
	}

	binding, err := llm.ResolveBinding(
		provider,
		cfg.ModelForProvider(provider),
		cfg.KeyForProvider(provider),
		g.Defaults,
	)
	if err != nil {
		return nil, err
	}
	return llm.NewGenerationService(binding, g.Defaults, g.Factory), nil
}
