package search

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"LeadForge/internal/modules/leadgen/domain/entity"
	"LeadForge/pkg/cache"
	"LeadForge/pkg/util"
	"LeadForge/pkg/zlog"

	"go.uber.org/zap"
)

const (
	// queryBudget bounds the profile text used to build search queries.
	queryBudget = 500

	// shortQueryTokens is the last-resort query length when every full
	// reformulation comes back empty from both providers.
	shortQueryTokens = 3

	defaultResultCap  = 5
	defaultMaxResults = 10
	defaultCacheTTL   = 15 * time.Minute
)

// DefaultExcludedHosts are directories, aggregators and social networks that
// never point at a prospect's own site.
var DefaultExcludedHosts = []string{
	"linkedin.com",
	"facebook.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"youtube.com",
	"wikipedia.org",
	"crunchbase.com",
	"glassdoor.com",
	"indeed.com",
	"yelp.com",
	"reddit.com",
	"medium.com",
	"quora.com",
	"pinterest.com",
	"amazon.com",
	"g2.com",
	"capterra.com",
	"clutch.co",
}

// DefaultExcludedTLDs drop results outside the target locale.
var DefaultExcludedTLDs = []string{".cn", ".ru", ".jp", ".kr", ".tw", ".hk"}

// listTitlePhrases mark listicle and directory pages rather than company
// sites.
var listTitlePhrases = []string{"top ", "best ", "list of", "directory"}

type DiscoveryOptions struct {
	MaxResults    int
	ResultCap     int
	ExcludedHosts []string
	ExcludedTLDs  []string
	Cache         *cache.Cache
	CacheTTL      time.Duration
}

// DiscoveryService turns a free-text prospect profile into a short list of
// candidate company sites. Provider errors are swallowed and treated as empty
// results; the only failure mode visible to callers is an empty list.
type DiscoveryService struct {
	primary   SearchProvider
	secondary SearchProvider

	maxResults    int
	resultCap     int
	excludedHosts []string
	excludedTLDs  []string

	cache    *cache.Cache
	cacheTTL time.Duration
}

func NewDiscoveryService(primary, secondary SearchProvider, opts DiscoveryOptions) *DiscoveryService {
	s := &DiscoveryService{
		primary:       primary,
		secondary:     secondary,
		maxResults:    opts.MaxResults,
		resultCap:     opts.ResultCap,
		excludedHosts: opts.ExcludedHosts,
		excludedTLDs:  opts.ExcludedTLDs,
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
	}
	if s.maxResults <= 0 {
		s.maxResults = defaultMaxResults
	}
	if s.resultCap <= 0 {
		s.resultCap = defaultResultCap
	}
	if s.excludedHosts == nil {
		s.excludedHosts = DefaultExcludedHosts
	}
	if s.excludedTLDs == nil {
		s.excludedTLDs = DefaultExcludedTLDs
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = defaultCacheTTL
	}
	return s
}

// reformulations builds the fixed query escalation sequence for a profile.
func reformulations(profile string) []string {
	p := util.Truncate(strings.TrimSpace(profile), queryBudget)
	return []string{
		p + " company website",
		p + " startups",
		p + " companies",
		p,
	}
}

// Discover runs the query escalation and filtering pipeline. It stops at the
// first reformulation with any raw results; filtering may still reduce that
// set to nothing, which is returned as an empty list rather than retried.
func (s *DiscoveryService) Discover(ctx context.Context, profile string) ([]entity.SearchHit, error) {
	if strings.TrimSpace(profile) == "" {
		return []entity.SearchHit{}, nil
	}

	cacheKey := discoverCacheKey(profile)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}

	for _, q := range reformulations(profile) {
		raw := s.searchCascade(ctx, q)
		if len(raw) == 0 {
			continue
		}
		filtered := s.filter(raw)
		s.cacheSet(ctx, cacheKey, filtered)
		return filtered, nil
	}

	zlog.Info("discovery found nothing", zap.String("profile", util.Truncate(profile, 80)))
	return []entity.SearchHit{}, nil
}

// searchCascade tries the primary provider, then the secondary, then the
// secondary again with a shortened query. Errors count as empty results.
func (s *DiscoveryService) searchCascade(ctx context.Context, query string) []entity.SearchHit {
	if s.primary != nil {
		if hits := s.try(ctx, s.primary, query); len(hits) > 0 {
			return hits
		}
	}
	if s.secondary == nil {
		return nil
	}
	if hits := s.try(ctx, s.secondary, query); len(hits) > 0 {
		return hits
	}

	tokens := strings.Fields(query)
	if len(tokens) > shortQueryTokens {
		short := strings.Join(tokens[:shortQueryTokens], " ")
		return s.try(ctx, s.secondary, short)
	}
	return nil
}

func (s *DiscoveryService) try(ctx context.Context, p SearchProvider, query string) []entity.SearchHit {
	hits, err := p.Search(ctx, query, s.maxResults)
	if err != nil {
		zlog.Warn("search provider failed",
			zap.String("provider", p.Name()),
			zap.String("query", util.Truncate(query, 80)),
			zap.Error(err))
		return nil
	}
	return hits
}

// filter applies the relevance pipeline: excluded hosts, listicle titles,
// excluded TLDs, then host dedupe and the result cap. Dedupe runs last so a
// rejected host is never recorded as seen.
func (s *DiscoveryService) filter(hits []entity.SearchHit) []entity.SearchHit {
	out := make([]entity.SearchHit, 0, s.resultCap)
	seen := make(map[string]bool)

	for _, h := range hits {
		if s.hostExcluded(h.URL) || s.titleLooksLikeList(h.Title) || s.tldExcluded(h.URL) {
			continue
		}
		host := normalizedHost(h.URL)
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		out = append(out, h)
		if len(out) >= s.resultCap {
			break
		}
	}
	return out
}

func (s *DiscoveryService) hostExcluded(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, host := range s.excludedHosts {
		if strings.Contains(lower, strings.ToLower(host)) {
			return true
		}
	}
	return false
}

func (s *DiscoveryService) titleLooksLikeList(title string) bool {
	lower := strings.ToLower(title)
	for _, phrase := range listTitlePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (s *DiscoveryService) tldExcluded(rawURL string) bool {
	host := normalizedHost(rawURL)
	for _, tld := range s.excludedTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	return false
}

func normalizedHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	return strings.TrimPrefix(host, "www.")
}

func discoverCacheKey(profile string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(profile)))
	return "leadforge:discover:" + hex.EncodeToString(sum[:])
}

func (s *DiscoveryService) cacheGet(ctx context.Context, key string) ([]entity.SearchHit, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var hits []entity.SearchHit
	if err := json.Unmarshal([]byte(raw), &hits); err != nil {
		return nil, false
	}
	return hits, true
}

func (s *DiscoveryService) cacheSet(ctx context.Context, key string, hits []entity.SearchHit) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(hits)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, string(raw), s.cacheTTL)
}
