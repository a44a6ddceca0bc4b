package service

import (
	"context"

	"LeadForge/internal/modules/leadgen/application/dto/request"
	"LeadForge/internal/modules/leadgen/application/dto/respond"
	"LeadForge/internal/modules/leadgen/infrastructure/pipeline"
)

// EmailService binds template retrieval and a per-request GenerationService
// into the personalization pipeline.
type EmailService struct {
	retriever pipeline.TemplateRetriever
	backends  GenerationBackends
}

func NewEmailService(retriever pipeline.TemplateRetriever, backends GenerationBackends) *EmailService {
	return &EmailService{retriever: retriever, backends: backends}
}

func (s *EmailService) GenerateEmail(ctx context.Context, req request.EmailRequest) (*respond.EmailRespond, error) {
	gen, err := s.backends.NewService(req.Config)
	if err != nil {
		return nil, err
	}

	p := pipeline.NewPersonalizationPipeline(s.retriever, gen)
	artifact, err := p.GenerateEmail(ctx, &req.LeadDossier, req.UserContext, req.TemplateCategory)
	if err != nil {
		return nil, err
	}
	return &respond.EmailRespond{EmailArtifact: *artifact}, nil
}
