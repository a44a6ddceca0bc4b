package entity

// SearchHit is one raw web search result. Hits are ephemeral and are
// deduplicated by normalized host before leaving the discovery layer.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
