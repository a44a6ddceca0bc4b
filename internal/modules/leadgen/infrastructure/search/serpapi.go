package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"LeadForge/internal/modules/leadgen/domain/entity"
)

const serpAPIEndpoint = "https://serpapi.com/search"

// SerpAPIProvider queries Google results through the SerpAPI proxy. It is the
// primary provider when an API key is configured.
type SerpAPIProvider struct {
	apiKey string
	client *http.Client
}

func NewSerpAPIProvider(apiKey string, timeout time.Duration) *SerpAPIProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SerpAPIProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *SerpAPIProvider) Name() string { return "serpapi" }

type serpAPIResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

func (p *SerpAPIProvider) Search(ctx context.Context, query string, maxResults int) ([]entity.SearchHit, error) {
	if p.apiKey == "" {
		return nil, errors.New("serpapi key not configured")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", query)
	q.Set("num", strconv.Itoa(maxResults))
	q.Set("api_key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAPIEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi status %d", resp.StatusCode)
	}

	var body serpAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("serpapi decode failed: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("serpapi: %s", body.Error)
	}

	hits := make([]entity.SearchHit, 0, len(body.OrganicResults))
	for _, r := range body.OrganicResults {
		if r.Link == "" {
			continue
		}
		hits = append(hits, entity.SearchHit{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
		if len(hits) >= maxResults {
			break
		}
	}
	return hits, nil
}
