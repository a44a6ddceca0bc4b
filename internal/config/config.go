package config

import (
	"log"
	"os"

	"github.com/BurntSushi/toml"
)

type MainConfig struct {
	AppName   string `toml:"appName"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	EnableTLS bool   `toml:"enableTLS"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
}

type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

type MilvusConfig struct {
	Address        string `toml:"address"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	DBName         string `toml:"dbName"`
	CollectionName string `toml:"collectionName"`
	VectorDim      int    `toml:"vectorDim"`
	MetricType     string `toml:"metricType"`
}

type AIEmbeddingConfig struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"apiKey"`
	BaseURL        string `toml:"baseURL"`
	Model          string `toml:"model"`
	Dimensions     int    `toml:"dimensions"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

// AIGenerationConfig holds the operator-owned generation settings. The
// apiKeys map carries the shared default credential per provider; a request
// that brings its own key bypasses them.
type AIGenerationConfig struct {
	DefaultProvider string            `toml:"defaultProvider"`
	APIKeys         map[string]string `toml:"apiKeys"`
	BaseURLs        map[string]string `toml:"baseURLs"`
	ArkModel        string            `toml:"arkModel"`
	ArkRegion       string            `toml:"arkRegion"`
	TimeoutSeconds  int               `toml:"timeoutSeconds"`
	// RouteHighValueLeads toggles adaptive provider routing for high-value
	// leads. Disabled by default; kept as an extension point.
	RouteHighValueLeads bool `toml:"routeHighValueLeads"`
}

type AIConfig struct {
	Embedding  AIEmbeddingConfig  `toml:"embedding"`
	Generation AIGenerationConfig `toml:"generation"`
}

type SearchConfig struct {
	SerpAPIKey      string   `toml:"serpApiKey"`
	MaxResults      int      `toml:"maxResults"`
	ResultCap       int      `toml:"resultCap"`
	ExcludedHosts   []string `toml:"excludedHosts"`
	ExcludedTLDs    []string `toml:"excludedTLDs"`
	TimeoutSeconds  int      `toml:"timeoutSeconds"`
	CacheTTLSeconds int      `toml:"cacheTTLSeconds"`
}

type TemplateConfig struct {
	SeedPath string `toml:"seedPath"`
}

type ScrapeConfig struct {
	MaxChars        int `toml:"maxChars"`
	TimeoutSeconds  int `toml:"timeoutSeconds"`
	CacheTTLSeconds int `toml:"cacheTTLSeconds"`
}

type Config struct {
	MainConfig     `toml:"mainConfig"`
	LogConfig      `toml:"logConfig"`
	MysqlConfig    `toml:"mysqlConfig"`
	RedisConfig    `toml:"redisConfig"`
	MilvusConfig   `toml:"milvusConfig"`
	AIConfig       `toml:"aiConfig"`
	SearchConfig   `toml:"searchConfig"`
	TemplateConfig `toml:"templateConfig"`
	ScrapeConfig   `toml:"scrapeConfig"`
}

var config *Config

func LoadConfig() error {
	if config == nil {
		config = new(Config)
	}
	configPath := os.Getenv("LEADFORGE_CONFIG")
	if configPath == "" {
		configPath = "configs/config_local.toml"
	}
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		log.Printf("failed to load config file: %v, falling back to defaults", err)
		return err
	}
	return nil
}

func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
	}
	return config
}
