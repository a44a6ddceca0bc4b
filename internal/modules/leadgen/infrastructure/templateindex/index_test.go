package templateindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"

	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/internal/modules/leadgen/domain/repository"
	embed "LeadForge/internal/modules/leadgen/infrastructure/embedding"
)

// fakeVectorStore is an in-memory brute-force stand-in for the real index.
// It understands the single filter shape the index emits: category == "x".
type fakeVectorStore struct {
	items      map[string]repository.TemplateVector
	upsertErr  error
	upsertCnt  int
	deletedIDs []string
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{items: map[string]repository.TemplateVector{}}
}

func (s *fakeVectorStore) Upsert(ctx context.Context, items []repository.TemplateVector) ([]string, error) {
	s.upsertCnt++
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		s.items[it.ID] = it
		ids = append(ids, it.ID)
	}
	return ids, nil
}

func (s *fakeVectorStore) DeleteByIDs(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(s.items, id)
		s.deletedIDs = append(s.deletedIDs, id)
	}
	return nil
}

func (s *fakeVectorStore) Search(ctx context.Context, vector []float32, topK int, expr string) ([]repository.TemplateHit, error) {
	category := ""
	if expr != "" {
		const prefix = `category == "`
		if !strings.HasPrefix(expr, prefix) || !strings.HasSuffix(expr, `"`) {
			return nil, fmt.Errorf("unsupported expr: %s", expr)
		}
		category = strings.TrimSuffix(strings.TrimPrefix(expr, prefix), `"`)
	}

	hits := make([]repository.TemplateHit, 0)
	for _, it := range s.items {
		if category != "" && it.Category != category {
			continue
		}
		hits = append(hits, repository.TemplateHit{
			ID:          it.ID,
			Score:       cosine(vector, it.Vector),
			Subject:     it.Subject,
			Category:    it.Category,
			Tone:        it.Tone,
			BodyPreview: it.BodyPreview,
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *fakeVectorStore) Stats(ctx context.Context) (repository.VectorIndexStats, error) {
	return repository.VectorIndexStats{TotalVectors: int64(len(s.items))}, nil
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

type fakeTemplateRepo struct {
	byID      map[string]entity.Template
	upsertErr error
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{byID: map[string]entity.Template{}}
}

func (r *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*entity.Template, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("template %s: not found", id)
	}
	return &t, nil
}

func (r *fakeTemplateRepo) UpsertAll(ctx context.Context, templates []entity.Template) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	for _, t := range templates {
		r.byID[t.Id] = t
	}
	return nil
}

func (r *fakeTemplateRepo) ListAll(ctx context.Context) ([]entity.Template, error) {
	out := make([]entity.Template, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	return out, nil
}

func newTestIndex(t *testing.T) (*TemplateIndex, *fakeVectorStore, *fakeTemplateRepo) {
	t.Helper()
	store := newFakeVectorStore()
	repo := newFakeTemplateRepo()
	ix, err := NewTemplateIndex(embed.NewMockEmbedder(32), store, repo)
	if err != nil {
		t.Fatalf("NewTemplateIndex: %v", err)
	}
	return ix, store, repo
}

func sampleTemplates(n int) []entity.Template {
	out := make([]entity.Template, 0, n)
	categories := []string{"cold_outreach", "follow_up", "demo_request"}
	for i := 0; i < n; i++ {
		out = append(out, entity.Template{
			Id:       fmt.Sprintf("tpl_%03d", i),
			Subject:  fmt.Sprintf("Quick question about [Company] #%d", i),
			Body:     fmt.Sprintf("Hi [FirstName], I noticed your team works on topic %d.", i),
			Category: categories[i%len(categories)],
			Tone:     "professional",
		})
	}
	return out
}

func TestIndexBulkThenGetByIDRoundTrip(t *testing.T) {
	ix, store, _ := newTestIndex(t)
	templates := sampleTemplates(7)

	n, err := ix.IndexBulk(context.Background(), templates)
	if err != nil {
		t.Fatalf("IndexBulk: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 indexed, got %d", n)
	}
	if len(store.items) != 7 {
		t.Fatalf("expected 7 vectors, got %d", len(store.items))
	}

	for _, want := range templates {
		got, err := ix.GetByID(context.Background(), want.Id)
		if err != nil {
			t.Fatalf("GetByID(%s): %v", want.Id, err)
		}
		if got.Subject != want.Subject || got.Body != want.Body || got.Category != want.Category {
			t.Errorf("round trip mismatch for %s: %+v", want.Id, got)
		}
	}
}

func TestIndexBulkBatchesAndAbortsOnFailure(t *testing.T) {
	ix, store, _ := newTestIndex(t)
	templates := sampleTemplates(150)

	// Index the first 100, then make the store fail: the second call aborts
	// with zero newly indexed and the earlier vectors stay.
	origErr := errors.New("index unavailable")

	n, err := ix.IndexBulk(context.Background(), templates[:100])
	if err != nil || n != 100 {
		t.Fatalf("first batch: n=%d err=%v", n, err)
	}

	store.upsertErr = origErr
	n, err = ix.IndexBulk(context.Background(), templates[100:])
	if err == nil {
		t.Fatal("expected error from failing batch")
	}
	if n != 0 {
		t.Errorf("failing call indexed %d, expected 0", n)
	}
	if len(store.items) != 100 {
		t.Errorf("expected the 100 earlier vectors to remain, got %d", len(store.items))
	}
}

func TestQueryHonorsCategoryFilter(t *testing.T) {
	ix, _, _ := newTestIndex(t)
	if _, err := ix.IndexBulk(context.Background(), sampleTemplates(9)); err != nil {
		t.Fatalf("IndexBulk: %v", err)
	}

	matches, err := ix.Query(context.Background(), "intro email about saas growth", 5, "follow_up")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches within the filtered category")
	}
	for _, m := range matches {
		if m.Category != "follow_up" {
			t.Errorf("match %s escaped the category filter: %s", m.Id, m.Category)
		}
	}
}

func TestQueryEmptyIndexReturnsEmptyList(t *testing.T) {
	ix, _, _ := newTestIndex(t)
	matches, err := ix.Query(context.Background(), "anything at all", 3, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected empty result, got %d matches", len(matches))
	}
}

func TestQueryResultsOrderedByScore(t *testing.T) {
	ix, _, _ := newTestIndex(t)
	if _, err := ix.IndexBulk(context.Background(), sampleTemplates(6)); err != nil {
		t.Fatalf("IndexBulk: %v", err)
	}
	matches, err := ix.Query(context.Background(), "quick question about a company", 6, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches out of order at %d: %f > %f", i, matches[i].Score, matches[i-1].Score)
		}
	}
}

func TestQueryTruncatesIndexMetadata(t *testing.T) {
	ix, _, _ := newTestIndex(t)
	long := entity.Template{
		Id:       "tpl_long",
		Subject:  strings.Repeat("s", 900),
		Body:     strings.Repeat("b", 9000),
		Category: "cold_outreach",
		Tone:     "casual",
	}
	if err := ix.Index(context.Background(), &long); err != nil {
		t.Fatalf("Index: %v", err)
	}
	matches, err := ix.Query(context.Background(), strings.Repeat("s", 40), 1, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if len(matches[0].Subject) > subjectMetadataLimit {
		t.Errorf("subject metadata not truncated: %d", len(matches[0].Subject))
	}
	if len(matches[0].BodyPreview) > bodyPreviewLimit {
		t.Errorf("body preview not truncated: %d", len(matches[0].BodyPreview))
	}

	// The authoritative record keeps the full body.
	full, err := ix.GetByID(context.Background(), "tpl_long")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(full.Body) != 9000 {
		t.Errorf("authoritative body altered: %d", len(full.Body))
	}
}

func TestRemoveDropsFromIndexOnly(t *testing.T) {
	ix, store, repo := newTestIndex(t)
	if _, err := ix.IndexBulk(context.Background(), sampleTemplates(3)); err != nil {
		t.Fatalf("IndexBulk: %v", err)
	}
	if err := ix.Remove(context.Background(), "tpl_001"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := store.items["tpl_001"]; ok {
		t.Error("vector not removed from index")
	}
	if _, ok := repo.byID["tpl_001"]; !ok {
		t.Error("authoritative record must survive index removal")
	}
}

func TestStatsReflectsIndexedCount(t *testing.T) {
	ix, _, _ := newTestIndex(t)
	if _, err := ix.IndexBulk(context.Background(), sampleTemplates(5)); err != nil {
		t.Fatalf("IndexBulk: %v", err)
	}
	stats, err := ix.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalVectors != 5 {
		t.Errorf("expected 5 vectors, got %d", stats.TotalVectors)
	}
}
