package service

import (
	"context"
	"fmt"

	"LeadForge/internal/modules/leadgen/application/dto/request"
	"LeadForge/internal/modules/leadgen/application/dto/respond"
	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/internal/modules/leadgen/infrastructure/pipeline"
	"LeadForge/pkg/zlog"

	"go.uber.org/zap"
)

// Discoverer is the slice of DiscoveryService the prospect flow needs.
type Discoverer interface {
	Discover(ctx context.Context, profile string) ([]entity.SearchHit, error)
}

// ProspectService runs the full prospecting flow: discover candidate sites
// for a profile, then research each one into a dossier. One bad lead degrades
// its own entry instead of failing the batch.
type ProspectService struct {
	discovery Discoverer
	fetcher   pipeline.TextFetcher
	backends  GenerationBackends
}

func NewProspectService(discovery Discoverer, fetcher pipeline.TextFetcher, backends GenerationBackends) *ProspectService {
	return &ProspectService{discovery: discovery, fetcher: fetcher, backends: backends}
}

func (s *ProspectService) Prospect(ctx context.Context, req request.ProspectRequest) (*respond.ProspectRespond, error) {
	gen, err := s.backends.NewService(req.Config)
	if err != nil {
		return nil, err
	}

	hits, err := s.discovery.Discover(ctx, req.ICP)
	if err != nil {
		return nil, err
	}
	zlog.Info("prospect discovery finished",
		zap.String("icp", req.ICP),
		zap.Int("hits", len(hits)))

	research := pipeline.NewResearchPipeline(s.fetcher, gen)
	resp := &respond.ProspectRespond{Leads: make([]respond.LeadRespond, 0, len(hits))}

	for _, hit := range hits {
		report := research.Research(ctx, hit.URL)
		resp.Leads = append(resp.Leads, respond.LeadRespond{Hit: hit, Report: report})
		if report.Degraded() {
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %s", hit.URL, report.Err))
		}
	}

	stats := gen.Stats()
	resp.TotalTokens = stats.TotalTokens
	resp.TotalCost = stats.TotalCost
	resp.Provider = string(stats.Provider)
	return resp, nil
}
