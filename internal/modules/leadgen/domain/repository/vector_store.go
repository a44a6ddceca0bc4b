package repository

import "context"

// VectorStore abstracts the external vector index. application code depends
// on this interface only; infrastructure adapts Milvus behind it so the
// backend stays replaceable.
//
// The metadata carried per vector is deliberately small (truncated subject and
// body preview) to respect index payload limits; full template bodies live in
// the TemplateRepository.

// TemplateVector is one upsert item for the template index.
type TemplateVector struct {
	ID          string
	Vector      []float32
	Subject     string
	Category    string
	Tone        string
	BodyPreview string
}

// TemplateHit is one ranked nearest-neighbor result.
type TemplateHit struct {
	ID          string
	Score       float32
	Subject     string
	Category    string
	Tone        string
	BodyPreview string
}

type VectorIndexStats struct {
	TotalVectors int64
	Dim          int
}

type VectorStore interface {
	Upsert(ctx context.Context, items []TemplateVector) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	// Search runs nearest-neighbor search; expr is a backend filter
	// expression (empty means no filter).
	Search(ctx context.Context, vector []float32, topK int, expr string) ([]TemplateHit, error)
	Stats(ctx context.Context) (VectorIndexStats, error)
}
