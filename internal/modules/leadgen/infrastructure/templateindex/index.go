package templateindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/internal/modules/leadgen/domain/repository"
	"LeadForge/pkg/util"
	"LeadForge/pkg/zlog"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

const (
	// maxBatchSize bounds one vector upsert; the index backend rejects
	// oversized payloads.
	maxBatchSize = 100

	// Metadata limits: the vector index carries display data only, never the
	// full body.
	subjectMetadataLimit = 500
	bodyPreviewLimit     = 200
)

// TemplateIndex maps free-text queries to template identifiers. Vectors and
// display metadata live in the external index; full template records live in
// the authoritative template table and are fetched by id.
type TemplateIndex struct {
	embedder embedding.Embedder
	store    repository.VectorStore
	repo     repository.TemplateRepository
}

func NewTemplateIndex(embedder embedding.Embedder, store repository.VectorStore, repo repository.TemplateRepository) (*TemplateIndex, error) {
	if embedder == nil {
		return nil, errors.New("embedder is nil")
	}
	if store == nil {
		return nil, errors.New("vector store is nil")
	}
	if repo == nil {
		return nil, errors.New("template repository is nil")
	}
	return &TemplateIndex{embedder: embedder, store: store, repo: repo}, nil
}

// searchableText is the embedded representation: subject, body, category and
// tone concatenated, so queries about intent and tone both land.
func searchableText(t *entity.Template) string {
	return fmt.Sprintf("%s %s %s %s", t.Subject, t.Body, t.Category, t.Tone)
}

func (ix *TemplateIndex) embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := ix.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, errors.New("embedder returned no vectors")
	}
	out := make([]float32, len(vecs[0]))
	for i, v := range vecs[0] {
		out[i] = float32(v)
	}
	return out, nil
}

func toVector(t *entity.Template, vec []float32) repository.TemplateVector {
	return repository.TemplateVector{
		ID:          t.Id,
		Vector:      vec,
		Subject:     util.Truncate(t.Subject, subjectMetadataLimit),
		Category:    t.Category,
		Tone:        t.Tone,
		BodyPreview: util.Truncate(t.Body, bodyPreviewLimit),
	}
}

// Index writes one template to the authoritative table and the vector index.
func (ix *TemplateIndex) Index(ctx context.Context, t *entity.Template) error {
	if t == nil || strings.TrimSpace(t.Id) == "" {
		return errors.New("template missing id")
	}
	if err := ix.repo.UpsertAll(ctx, []entity.Template{*t}); err != nil {
		return fmt.Errorf("template table upsert failed: %w", err)
	}
	vec, err := ix.embed(ctx, searchableText(t))
	if err != nil {
		return fmt.Errorf("embed template %s failed: %w", t.Id, err)
	}
	if _, err := ix.store.Upsert(ctx, []repository.TemplateVector{toVector(t, vec)}); err != nil {
		return fmt.Errorf("vector upsert for template %s failed: %w", t.Id, err)
	}
	return nil
}

// IndexBulk indexes templates in batches of maxBatchSize. Batches are atomic:
// a failing batch aborts the call and the count of templates indexed so far
// is returned alongside the error. Earlier batches stay indexed; no template
// is dropped or duplicated within a batch.
func (ix *TemplateIndex) IndexBulk(ctx context.Context, templates []entity.Template) (int, error) {
	indexed := 0
	for start := 0; start < len(templates); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(templates) {
			end = len(templates)
		}
		batch := templates[start:end]

		if err := ix.repo.UpsertAll(ctx, batch); err != nil {
			return indexed, fmt.Errorf("template table upsert failed at batch %d: %w", start/maxBatchSize, err)
		}

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = searchableText(&batch[i])
		}
		vecs, err := ix.embedder.EmbedStrings(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embedding failed at batch %d: %w", start/maxBatchSize, err)
		}
		if len(vecs) != len(batch) {
			return indexed, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(batch))
		}

		items := make([]repository.TemplateVector, len(batch))
		for i := range batch {
			v := make([]float32, len(vecs[i]))
			for j, f := range vecs[i] {
				v[j] = float32(f)
			}
			items[i] = toVector(&batch[i], v)
		}
		if _, err := ix.store.Upsert(ctx, items); err != nil {
			return indexed, fmt.Errorf("vector upsert failed at batch %d: %w", start/maxBatchSize, err)
		}
		indexed += len(batch)
	}

	zlog.Info("templates indexed", zap.Int("count", indexed))
	return indexed, nil
}

// Query embeds the input text and returns matches ordered by descending
// similarity. An empty or fully filtered result set is an empty list, not an
// error.
func (ix *TemplateIndex) Query(ctx context.Context, text string, topK int, categoryFilter string) ([]entity.TemplateMatch, error) {
	if strings.TrimSpace(text) == "" {
		return []entity.TemplateMatch{}, nil
	}
	vec, err := ix.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	expr := ""
	if categoryFilter != "" {
		expr = fmt.Sprintf(`category == "%s"`, strings.ReplaceAll(categoryFilter, `"`, ``))
	}

	hits, err := ix.store.Search(ctx, vec, topK, expr)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	matches := make([]entity.TemplateMatch, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, entity.TemplateMatch{
			Id:          h.ID,
			Score:       h.Score,
			Subject:     h.Subject,
			Category:    h.Category,
			Tone:        h.Tone,
			BodyPreview: h.BodyPreview,
		})
	}
	return matches, nil
}

// GetByID fetches the full template from the authoritative table, never from
// the index.
func (ix *TemplateIndex) GetByID(ctx context.Context, id string) (*entity.Template, error) {
	return ix.repo.GetByID(ctx, id)
}

// Remove drops a template from the vector index so it stops matching. The
// table record is kept: the table is the system of record and ids stay
// resolvable for artifacts generated before the removal.
func (ix *TemplateIndex) Remove(ctx context.Context, id string) error {
	return ix.store.DeleteByIDs(ctx, []string{id})
}

// Stats reports the backing index size.
func (ix *TemplateIndex) Stats(ctx context.Context) (repository.VectorIndexStats, error) {
	return ix.store.Stats(ctx)
}
