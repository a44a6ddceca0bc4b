package respond

import (
	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/internal/modules/leadgen/infrastructure/pipeline"
)

// LeadRespond pairs a discovered hit with its research outcome. Degraded
// research keeps the hit visible so the caller can retry or inspect manually.
type LeadRespond struct {
	Hit    entity.SearchHit         `json:"hit"`
	Report *pipeline.ResearchReport `json:"report"`
}

type ProspectRespond struct {
	Leads       []LeadRespond `json:"leads"`
	Errors      []string      `json:"errors,omitempty"`
	TotalTokens int           `json:"total_tokens"`
	TotalCost   float64       `json:"total_cost"`
	Provider    string        `json:"llm_provider"`
}
