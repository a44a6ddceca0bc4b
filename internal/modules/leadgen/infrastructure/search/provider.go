package search

import (
	"context"

	"LeadForge/internal/modules/leadgen/domain/entity"
)

// SearchProvider is one web search back-end. Implementations return raw,
// unfiltered hits; relevance filtering happens in DiscoveryService.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]entity.SearchHit, error)
}
