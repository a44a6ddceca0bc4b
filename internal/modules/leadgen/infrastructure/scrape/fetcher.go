package scrape

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"LeadForge/pkg/cache"
	"LeadForge/pkg/util"
	"LeadForge/pkg/zlog"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	defaultMaxChars = 5000
	defaultTimeout  = 15 * time.Second
	defaultCacheTTL = time.Hour

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// skippedTags never contribute visible prose.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"footer":   true,
	"header":   true,
	"iframe":   true,
	"svg":      true,
	"form":     true,
}

type FetcherOptions struct {
	MaxChars int
	Timeout  time.Duration
	Cache    *cache.Cache
	CacheTTL time.Duration
}

// PageFetcher turns a URL into cleaned visible text for the research
// pipeline. Failures never propagate as errors: the returned text carries an
// error prefix instead, so downstream extraction degrades rather than aborts.
type PageFetcher struct {
	client   *http.Client
	maxChars int
	cache    *cache.Cache
	cacheTTL time.Duration
}

func NewPageFetcher(opts FetcherOptions) *PageFetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &PageFetcher{
		client:   &http.Client{Timeout: timeout},
		maxChars: maxChars,
		cache:    opts.Cache,
		cacheTTL: cacheTTL,
	}
}

// FetchText fetches the page and returns its visible text, truncated to the
// configured budget. On any failure the result is "Error scraping <url>: ...".
func (f *PageFetcher) FetchText(ctx context.Context, pageURL string) string {
	key := pageCacheKey(pageURL)
	if f.cache != nil {
		if cached, ok := f.cache.Get(ctx, key); ok {
			return cached
		}
	}

	text, err := f.fetch(ctx, pageURL)
	if err != nil {
		zlog.Warn("page fetch failed", zap.String("url", pageURL), zap.Error(err))
		return fmt.Sprintf("Error scraping %s: %v", pageURL, err)
	}

	if f.cache != nil {
		f.cache.Set(ctx, key, text, f.cacheTTL)
	}
	return text
}

func (f *PageFetcher) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse failed: %w", err)
	}

	text := collapseWhitespace(visibleText(doc))
	return util.Truncate(text, f.maxChars), nil
}

// visibleText walks the DOM and collects text nodes outside skipped subtrees.
func visibleText(doc *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pageCacheKey(pageURL string) string {
	sum := sha1.Sum([]byte(pageURL))
	return "leadforge:page:" + hex.EncodeToString(sum[:])
}
