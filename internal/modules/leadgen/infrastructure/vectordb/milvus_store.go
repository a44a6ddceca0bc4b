package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"LeadForge/internal/modules/leadgen/domain/repository"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// MilvusStore adapts a Milvus collection to the domain VectorStore interface.
// The collection schema mirrors what the index actually needs for relevance
// display: truncated subject, category, tone and a short body preview. Full
// template bodies never enter the index.
type MilvusStore struct {
	cli         mclient.Client
	collection  string
	vectorField string
	metricType  entity.MetricType
	vectorDim   int
	searchParam entity.SearchParam
}

var _ repository.VectorStore = (*MilvusStore)(nil)

func NewMilvusStore(cli mclient.Client, collection string, vectorDim int, metricType entity.MetricType) (*MilvusStore, error) {
	if cli == nil {
		return nil, errors.New("milvus client is nil")
	}
	if strings.TrimSpace(collection) == "" {
		return nil, errors.New("collection is empty")
	}
	if vectorDim <= 0 {
		return nil, fmt.Errorf("invalid vectorDim: %d", vectorDim)
	}
	sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, err
	}
	return &MilvusStore{
		cli:         cli,
		collection:  collection,
		vectorField: "vector",
		metricType:  metricType,
		vectorDim:   vectorDim,
		searchParam: sp,
	}, nil
}

func (s *MilvusStore) Upsert(ctx context.Context, items []repository.TemplateVector) ([]string, error) {
	if len(items) == 0 {
		return []string{}, nil
	}
	ids := make([]string, 0, len(items))
	vectors := make([][]float32, 0, len(items))
	subjects := make([]string, 0, len(items))
	categories := make([]string, 0, len(items))
	tones := make([]string, 0, len(items))
	previews := make([]string, 0, len(items))

	for _, it := range items {
		if it.ID == "" {
			return nil, errors.New("upsert item missing ID")
		}
		if len(it.Vector) != s.vectorDim {
			return nil, fmt.Errorf("vector dim mismatch for id=%s, got=%d want=%d", it.ID, len(it.Vector), s.vectorDim)
		}
		ids = append(ids, it.ID)
		vectors = append(vectors, it.Vector)
		subjects = append(subjects, it.Subject)
		categories = append(categories, it.Category)
		tones = append(tones, it.Tone)
		previews = append(previews, it.BodyPreview)
	}

	_, err := s.cli.Upsert(
		ctx,
		s.collection,
		"",
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnFloatVector(s.vectorField, s.vectorDim, vectors),
		entity.NewColumnVarChar("subject", subjects),
		entity.NewColumnVarChar("category", categories),
		entity.NewColumnVarChar("tone", tones),
		entity.NewColumnVarChar("body_preview", previews),
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *MilvusStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	expr := fmt.Sprintf(`id in ["%s"]`, strings.Join(ids, `","`))
	return s.cli.Delete(ctx, s.collection, "", expr)
}

func (s *MilvusStore) Search(ctx context.Context, vector []float32, topK int, expr string) ([]repository.TemplateHit, error) {
	if len(vector) != s.vectorDim {
		return nil, fmt.Errorf("vector dim mismatch, got=%d want=%d", len(vector), s.vectorDim)
	}
	if topK <= 0 {
		topK = 3
	}
	res, err := s.cli.Search(
		ctx,
		s.collection,
		[]string{},
		expr,
		[]string{"subject", "category", "tone", "body_preview"},
		[]entity.Vector{entity.FloatVector(vector)},
		s.vectorField,
		s.metricType,
		topK,
		s.searchParam,
	)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return []repository.TemplateHit{}, nil
	}
	return parseSearchResult(res[0])
}

func (s *MilvusStore) Stats(ctx context.Context) (repository.VectorIndexStats, error) {
	stats, err := s.cli.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return repository.VectorIndexStats{}, err
	}
	var total int64
	if rc, ok := stats["row_count"]; ok {
		total, _ = strconv.ParseInt(rc, 10, 64)
	}
	return repository.VectorIndexStats{TotalVectors: total, Dim: s.vectorDim}, nil
}

func parseSearchResult(sr mclient.SearchResult) ([]repository.TemplateHit, error) {
	if sr.Err != nil {
		return nil, sr.Err
	}
	hits := make([]repository.TemplateHit, 0, sr.ResultCount)

	idCol := sr.IDs
	subjectCol := columnByName(sr.Fields, "subject")
	categoryCol := columnByName(sr.Fields, "category")
	toneCol := columnByName(sr.Fields, "tone")
	previewCol := columnByName(sr.Fields, "body_preview")

	for i := 0; i < sr.ResultCount; i++ {
		id, _ := idCol.GetAsString(i)
		score := float32(0)
		if i < len(sr.Scores) {
			score = clampScore(sr.Scores[i])
		}

		h := repository.TemplateHit{ID: id, Score: score}
		if subjectCol != nil {
			v, _ := subjectCol.GetAsString(i)
			h.Subject = v
		}
		if categoryCol != nil {
			v, _ := categoryCol.GetAsString(i)
			h.Category = v
		}
		if toneCol != nil {
			v, _ := toneCol.GetAsString(i)
			h.Tone = v
		}
		if previewCol != nil {
			v, _ := previewCol.GetAsString(i)
			h.BodyPreview = v
		}
		hits = append(hits, h)
	}

	return hits, nil
}

// clampScore bounds cosine similarity into [0,1] for callers that treat the
// score as a match quality percentage.
func clampScore(s float32) float32 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func columnByName(cols mclient.ResultSet, name string) entity.Column {
	for _, c := range cols {
		if c != nil && c.Name() == name {
			return c
		}
	}
	return nil
}
