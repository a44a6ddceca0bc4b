package persistence

import (
	"context"
	"errors"
	"fmt"

	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/internal/modules/leadgen/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// templateRepository is the gorm-backed authoritative template table. The
// vector index only carries previews; this table owns the full records.
type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) repository.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*entity.Template, error) {
	var t entity.Template
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("template %s: %w", id, err)
		}
		return nil, err
	}
	return &t, nil
}

func (r *templateRepository) UpsertAll(ctx context.Context, templates []entity.Template) error {
	if len(templates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&templates).Error
}

func (r *templateRepository) ListAll(ctx context.Context) ([]entity.Template, error) {
	var templates []entity.Template
	if err := r.db.WithContext(ctx).Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}
