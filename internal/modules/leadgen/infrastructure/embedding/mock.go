package embedding

import (
	"context"
	"hash/fnv"

	"github.com/cloudwego/eino/components/embedding"
)

// MockEmbedder is a deterministic embedder for local runs and tests. Similar
// inputs do not get similar vectors; it only guarantees stable dimensionality
// and repeatability per input.
type MockEmbedder struct {
	Dim int
}

func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &MockEmbedder{Dim: dim}
}

func (m *MockEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	result := make([][]float64, len(texts))
	for i, text := range texts {
		h := fnv.New64a()
		_, _ = h.Write([]byte(text))
		seed := h.Sum64()

		vec := make([]float64, m.Dim)
		for j := 0; j < m.Dim; j++ {
			seed = seed*6364136223846793005 + 1442695040888963407
			vec[j] = float64(int64(seed>>33))/float64(1<<30) - 1
		}
		result[i] = vec
	}
	return result, nil
}

var _ embedding.Embedder = (*MockEmbedder)(nil)
