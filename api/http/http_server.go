package http

import (
	"context"
	"fmt"
	"time"

	"LeadForge/internal/config"
	"LeadForge/internal/initial"
	"LeadForge/internal/modules/leadgen/application/service"
	"LeadForge/internal/modules/leadgen/infrastructure/embedding"
	"LeadForge/internal/modules/leadgen/infrastructure/llm"
	"LeadForge/internal/modules/leadgen/infrastructure/persistence"
	"LeadForge/internal/modules/leadgen/infrastructure/scrape"
	"LeadForge/internal/modules/leadgen/infrastructure/search"
	"LeadForge/internal/modules/leadgen/infrastructure/templateindex"
	"LeadForge/internal/modules/leadgen/infrastructure/vectordb"
	leadHandler "LeadForge/internal/modules/leadgen/interface/http"
	"LeadForge/pkg/cache"
	"LeadForge/pkg/ssl"
	"LeadForge/pkg/zlog"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"
)

// NewServer wires the whole module and returns the engine plus a cleanup
// function releasing the backing connections. All dependencies are built
// here, explicitly, so tests and callers control instance lifetimes.
func NewServer(ctx context.Context, conf *config.Config) (*gin.Engine, func(), error) {
	redisClient := initial.NewRedisClient(conf)
	sharedCache := cache.New(redisClient)

	db, err := initial.NewGormDB(conf)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql init failed: %w", err)
	}

	milvusClient, err := initial.NewMilvusClient(ctx, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("milvus init failed: %w", err)
	}
	cleanup := func() {
		_ = milvusClient.Close()
		sharedCache.Close()
	}

	embedder, embedMeta, err := embedding.NewEmbedderFromConfig(ctx, conf)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("embedder init failed: %w", err)
	}
	zlog.Info("embedder ready",
		zap.String("provider", embedMeta.Provider),
		zap.String("model", embedMeta.Model),
		zap.Int("dim", embedMeta.Dim))

	metricType := mentity.COSINE
	if conf.MilvusConfig.MetricType != "" {
		metricType = mentity.MetricType(conf.MilvusConfig.MetricType)
	}
	vectorStore, err := vectordb.NewMilvusStore(milvusClient, conf.MilvusConfig.CollectionName, embedMeta.Dim, metricType)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("vector store init failed: %w", err)
	}

	templateRepo := persistence.NewTemplateRepository(db)
	templateIdx, err := templateindex.NewTemplateIndex(embedder, vectorStore, templateRepo)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("template index init failed: %w", err)
	}

	templateSvc := service.NewTemplateService(templateIdx)
	if seedPath := conf.TemplateConfig.SeedPath; seedPath != "" {
		count, err := templateSvc.Seed(ctx, seedPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("template seed failed after %d: %w", count, err)
		}
	}

	searchTimeout := time.Duration(conf.SearchConfig.TimeoutSeconds) * time.Second
	var primary search.SearchProvider
	if conf.SearchConfig.SerpAPIKey != "" {
		primary = search.NewSerpAPIProvider(conf.SearchConfig.SerpAPIKey, searchTimeout)
	}
	discovery := search.NewDiscoveryService(primary, search.NewDuckDuckGoProvider(searchTimeout), search.DiscoveryOptions{
		MaxResults:    conf.SearchConfig.MaxResults,
		ResultCap:     conf.SearchConfig.ResultCap,
		ExcludedHosts: conf.SearchConfig.ExcludedHosts,
		ExcludedTLDs:  conf.SearchConfig.ExcludedTLDs,
		Cache:         sharedCache,
		CacheTTL:      time.Duration(conf.SearchConfig.CacheTTLSeconds) * time.Second,
	})

	fetcher := scrape.NewPageFetcher(scrape.FetcherOptions{
		MaxChars: conf.ScrapeConfig.MaxChars,
		Timeout:  time.Duration(conf.ScrapeConfig.TimeoutSeconds) * time.Second,
		Cache:    sharedCache,
		CacheTTL: time.Duration(conf.ScrapeConfig.CacheTTLSeconds) * time.Second,
	})

	backends := generationBackends(conf)
	prospectSvc := service.NewProspectService(discovery, fetcher, backends)
	emailSvc := service.NewEmailService(templateIdx, backends)

	engine := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))
	if conf.MainConfig.EnableTLS {
		engine.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	prospectH := leadHandler.NewProspectHandler(prospectSvc)
	emailH := leadHandler.NewEmailHandler(emailSvc)
	templateH := leadHandler.NewTemplateHandler(templateSvc)

	engine.GET("/", leadHandler.Root)
	engine.GET("/healthz", leadHandler.Health)
	engine.POST("/leadgen/prospects", prospectH.Prospect)
	engine.POST("/leadgen/emails", emailH.Generate)
	engine.POST("/leadgen/templates", templateH.Create)
	engine.DELETE("/leadgen/templates/:id", templateH.Remove)
	engine.POST("/leadgen/templates/search", templateH.Search)
	engine.GET("/leadgen/templates/stats", templateH.Stats)

	return engine, cleanup, nil
}

// generationBackends translates the config's string-keyed provider maps into
// the typed defaults the binding resolver works with.
func generationBackends(conf *config.Config) service.GenerationBackends {
	gen := conf.AIConfig.Generation

	apiKeys := make(map[llm.Provider]string, len(gen.APIKeys))
	for name, key := range gen.APIKeys {
		if p, err := llm.ParseProvider(name); err == nil {
			apiKeys[p] = key
		}
	}
	baseURLs := make(map[llm.Provider]string, len(gen.BaseURLs))
	for name, u := range gen.BaseURLs {
		if p, err := llm.ParseProvider(name); err == nil {
			baseURLs[p] = u
		}
	}

	defaults := llm.Defaults{
		APIKeys:  apiKeys,
		BaseURLs: baseURLs,
		ArkModel: gen.ArkModel,
	}
	factory := llm.NewModelFactory(llm.FactoryOptions{
		BaseURLs:  baseURLs,
		ArkRegion: gen.ArkRegion,
		Timeout:   time.Duration(gen.TimeoutSeconds) * time.Second,
	})

	return service.GenerationBackends{
		DefaultProvider: gen.DefaultProvider,
		Defaults:        defaults,
		Factory:         factory,
	}
}
