package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"LeadForge/internal/modules/leadgen/domain/entity"

	"golang.org/x/net/html"
)

const (
	duckDuckGoEndpoint = "https://html.duckduckgo.com/html/"
	browserUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// DuckDuckGoProvider scrapes the HTML search endpoint, which needs no API
// key. It serves as the keyless fallback behind SerpAPI.
type DuckDuckGoProvider struct {
	client *http.Client
}

func NewDuckDuckGoProvider(timeout time.Duration) *DuckDuckGoProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DuckDuckGoProvider{client: &http.Client{Timeout: timeout}}
}

func (p *DuckDuckGoProvider) Name() string { return "duckduckgo" }

func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, maxResults int) ([]entity.SearchHit, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, duckDuckGoEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo parse failed: %w", err)
	}

	hits := parseResultPage(doc, maxResults)
	return hits, nil
}

// parseResultPage walks the result page and collects result__a anchors with
// their sibling result__snippet text.
func parseResultPage(doc *html.Node, maxResults int) []entity.SearchHit {
	hits := make([]entity.SearchHit, 0, maxResults)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(hits) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			href := attr(n, "href")
			link := unwrapRedirect(href)
			if link != "" {
				hits = append(hits, entity.SearchHit{
					Title:   strings.TrimSpace(textContent(n)),
					URL:     link,
					Snippet: nearestSnippet(n),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hits
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg= redirect wrapper to the
// target URL. Plain absolute links pass through unchanged.
func unwrapRedirect(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}

// nearestSnippet finds the result__snippet node in the anchor's enclosing
// result block.
func nearestSnippet(anchor *html.Node) string {
	block := anchor
	for block != nil && !(block.Type == html.ElementNode && hasClass(block, "result")) {
		block = block.Parent
	}
	if block == nil {
		return ""
	}

	var snippet string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if snippet != "" {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "result__snippet") {
			snippet = strings.TrimSpace(textContent(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(block)
	return snippet
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
