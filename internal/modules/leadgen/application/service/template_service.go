package service

import (
	"context"

	"LeadForge/internal/modules/leadgen/application/dto/request"
	"LeadForge/internal/modules/leadgen/application/dto/respond"
	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/internal/modules/leadgen/domain/repository"
	"LeadForge/internal/modules/leadgen/infrastructure/persistence"
	"LeadForge/pkg/util"
	"LeadForge/pkg/zlog"

	"go.uber.org/zap"
)

const defaultTemplateTopK = 3

// TemplateIndexer is the slice of TemplateIndex the template flow needs.
type TemplateIndexer interface {
	Query(ctx context.Context, text string, topK int, categoryFilter string) ([]entity.TemplateMatch, error)
	Index(ctx context.Context, t *entity.Template) error
	IndexBulk(ctx context.Context, templates []entity.Template) (int, error)
	Remove(ctx context.Context, id string) error
	Stats(ctx context.Context) (repository.VectorIndexStats, error)
}

type TemplateService struct {
	index TemplateIndexer
}

func NewTemplateService(index TemplateIndexer) *TemplateService {
	return &TemplateService{index: index}
}

func (s *TemplateService) Search(ctx context.Context, req request.TemplateSearchRequest) (*respond.TemplateSearchRespond, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = defaultTemplateTopK
	}
	matches, err := s.index.Query(ctx, req.Query, topK, req.Category)
	if err != nil {
		return nil, err
	}
	return &respond.TemplateSearchRespond{Matches: matches}, nil
}

// Create indexes one template. Templates are reference data: once created
// they are read-only, so there is no update path, only remove and re-create.
func (s *TemplateService) Create(ctx context.Context, req request.TemplateCreateRequest) (*respond.TemplateCreateRespond, error) {
	id := req.Id
	if id == "" {
		id = util.GenerateID("tpl_")
	}
	category := req.Category
	if category == "" {
		category = "general"
	}
	tone := req.Tone
	if tone == "" {
		tone = "professional"
	}

	t := &entity.Template{
		Id:        id,
		Subject:   req.Subject,
		Body:      req.Body,
		Category:  category,
		Tone:      tone,
		Variables: req.Variables,
	}
	if err := s.index.Index(ctx, t); err != nil {
		return nil, err
	}
	return &respond.TemplateCreateRespond{Id: id}, nil
}

// Remove drops a template from the index so it stops matching.
func (s *TemplateService) Remove(ctx context.Context, id string) error {
	return s.index.Remove(ctx, id)
}

func (s *TemplateService) Stats(ctx context.Context) (*respond.TemplateStatsRespond, error) {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &respond.TemplateStatsRespond{TotalVectors: stats.TotalVectors, Dimension: stats.Dim}, nil
}

// Seed loads the static template file and indexes everything in it. Called
// once at startup; reruns are safe because indexing upserts by id.
func (s *TemplateService) Seed(ctx context.Context, seedPath string) (int, error) {
	templates, err := persistence.LoadSeedTemplates(seedPath)
	if err != nil {
		return 0, err
	}
	count, err := s.index.IndexBulk(ctx, templates)
	if err != nil {
		return count, err
	}
	zlog.Info("template seed indexed", zap.Int("count", count), zap.String("path", seedPath))
	return count, nil
}
