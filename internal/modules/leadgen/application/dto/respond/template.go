package respond

import "LeadForge/internal/modules/leadgen/domain/entity"

type TemplateSearchRespond struct {
	Matches []entity.TemplateMatch `json:"matches"`
}

type TemplateCreateRespond struct {
	Id string `json:"id"`
}

type TemplateStatsRespond struct {
	TotalVectors int64 `json:"total_vectors"`
	Dimension    int   `json:"dimension"`
}
