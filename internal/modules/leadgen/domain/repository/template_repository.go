package repository

import (
	"context"

	"LeadForge/internal/modules/leadgen/domain/entity"
)

// TemplateRepository is the authoritative lookup-by-id store of full template
// records. The vector index only holds previews; full bodies come from here.
type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Template, error)
	UpsertAll(ctx context.Context, templates []entity.Template) error
	ListAll(ctx context.Context) ([]entity.Template, error)
}
