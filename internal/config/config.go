package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/explainer-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	LLMProviderRemote = "remote"
	LLMProviderLocal  = "local"

	VectorStoreMemory = "memory"
	VectorStoreQdrant = "qdrant"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr         string   `env:"SERVER_ADDR" envDefault:":8000"`
	ProjectName        string   `env:"PROJECT_NAME" envDefault:"ELI5"`
	Version            string   `env:"VERSION" envDefault:"0.1.0"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Document registry: Postgres when DATABASE_URL is set, bbolt file otherwise
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	RegistryPath        string        `env:"REGISTRY_PATH" envDefault:"./data/registry.db"`

	// Request admission
	RateLimitCfg RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	// Result cache
	CacheCfg CacheConfig `envPrefix:"CACHE_"`

	// Query pipeline
	QueryCfg QueryConfig `envPrefix:"QUERY_"`

	// Ingestion pipeline
	IngestCfg IngestConfig `envPrefix:"INGEST_"`

	// External service configurations
	LLMConnectorCfg       LLMConnectorConfig       `envPrefix:"LLM_"`
	EmbeddingConnectorCfg EmbeddingConnectorConfig `envPrefix:"EMBEDDING_"`
	VectorStoreCfg        VectorStoreConfig        `envPrefix:"VECTOR_STORE_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Metered key for unioffice, DOCX support runs unlicensed when empty
	UnidocLicenseKey string `env:"UNIDOC_LICENSE_KEY"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type RateLimitConfig struct {
	PerMinute       int           `env:"PER_MINUTE" envDefault:"10"`
	MaxConcurrent   int           `env:"MAX_CONCURRENT" envDefault:"5"`
	IdleTTL         time.Duration `env:"IDLE_TTL" envDefault:"10m"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1m"`
}

type CacheConfig struct {
	TTL             time.Duration        `env:"TTL" envDefault:"1h"`
	RedisURL        string               `env:"REDIS_URL"`
	CleanupInterval time.Duration        `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	Retry           pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type QueryConfig struct {
	MaxContextLength  int           `env:"MAX_CONTEXT_LENGTH" envDefault:"3000"`
	ResultCount       int           `env:"RESULT_COUNT" envDefault:"5"`
	Temperature       float64       `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens         int           `env:"MAX_TOKENS" envDefault:"1500"`
	RetrievalTimeout  time.Duration `env:"RETRIEVAL_TIMEOUT" envDefault:"30s"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"120s"`
}

type IngestConfig struct {
	ChunkSize    int                  `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int                  `env:"CHUNK_OVERLAP" envDefault:"200"`
	StatusTTL    time.Duration        `env:"STATUS_TTL" envDefault:"24h"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Provider            string `env:"PROVIDER" envDefault:"remote"`
	Model               string `env:"MODEL" envDefault:"mixtral-8x7b-32768"`
	CompletionsEndpoint string `env:"COMPLETIONS_ENDPOINT" envDefault:"/chat/completions"`
	GenerateEndpoint    string `env:"GENERATE_ENDPOINT" envDefault:"/api/generate"`
}

type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	Model     string `env:"MODEL" envDefault:"sentence-transformers/all-MiniLM-L6-v2"`
	Endpoint  string `env:"ENDPOINT" envDefault:"/embeddings"`
	BatchSize int    `env:"BATCH_SIZE" envDefault:"32"`
}

type VectorStoreConfig struct {
	HTTPClientConfig
	Type       string `env:"TYPE" envDefault:"memory"`
	Collection string `env:"COLLECTION" envDefault:"documents"`
	Dimension  int    `env:"DIMENSION" envDefault:"384"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize       int64    `env:"MAX_FILE_SIZE" envDefault:"10485760"` // 10 MiB
	AllowedExtensions []string `env:"ALLOWED_EXTENSIONS" envDefault:"txt,pdf,docx,md" envSeparator:","`
	Directory         string   `env:"DIRECTORY" envDefault:"./uploads"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	return cfg, nil
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.RateLimitCfg.PerMinute < 1 {
		errors = append(errors, fmt.Sprintf("RATE_LIMIT_PER_MINUTE must be positive, got %d", cfg.RateLimitCfg.PerMinute))
	}

	if cfg.RateLimitCfg.MaxConcurrent < 1 {
		errors = append(errors, fmt.Sprintf("RATE_LIMIT_MAX_CONCURRENT must be positive, got %d", cfg.RateLimitCfg.MaxConcurrent))
	}

	if cfg.CacheCfg.TTL <= 0 {
		errors = append(errors, fmt.Sprintf("CACHE_TTL must be positive, got %s", cfg.CacheCfg.TTL))
	}

	if cfg.QueryCfg.MaxContextLength < 1 {
		errors = append(errors, fmt.Sprintf("QUERY_MAX_CONTEXT_LENGTH must be positive, got %d", cfg.QueryCfg.MaxContextLength))
	}

	if cfg.QueryCfg.ResultCount < 1 || cfg.QueryCfg.ResultCount > 50 {
		errors = append(errors, fmt.Sprintf("QUERY_RESULT_COUNT must be between 1 and 50, got %d", cfg.QueryCfg.ResultCount))
	}

	if cfg.IngestCfg.ChunkSize < 1 {
		errors = append(errors, fmt.Sprintf("INGEST_CHUNK_SIZE must be positive, got %d", cfg.IngestCfg.ChunkSize))
	}

	if cfg.IngestCfg.ChunkOverlap < 0 || cfg.IngestCfg.ChunkOverlap >= cfg.IngestCfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("INGEST_CHUNK_OVERLAP must be between 0 and INGEST_CHUNK_SIZE(%d), got %d", cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap))
	}

	if cfg.FileUploadCfg.MaxFileSize < 1 {
		errors = append(errors, fmt.Sprintf("FILE_UPLOAD_MAX_FILE_SIZE must be positive, got %d", cfg.FileUploadCfg.MaxFileSize))
	}

	switch cfg.LLMConnectorCfg.Provider {
	case LLMProviderRemote, LLMProviderLocal:
	default:
		errors = append(errors, fmt.Sprintf("LLM_PROVIDER must be %q or %q, got %q", LLMProviderRemote, LLMProviderLocal, cfg.LLMConnectorCfg.Provider))
	}

	switch cfg.VectorStoreCfg.Type {
	case VectorStoreMemory, VectorStoreQdrant:
	default:
		errors = append(errors, fmt.Sprintf("VECTOR_STORE_TYPE must be %q or %q, got %q", VectorStoreMemory, VectorStoreQdrant, cfg.VectorStoreCfg.Type))
	}

	if !cfg.EnableMocks {
		if cfg.LLMConnectorCfg.Url == "" {
			errors = append(errors, "LLM_SERVICE_URL is required when mocks are disabled")
		}
		if cfg.VectorStoreCfg.Type == VectorStoreQdrant && cfg.VectorStoreCfg.Url == "" {
			errors = append(errors, "VECTOR_STORE_SERVICE_URL is required for the qdrant vector store")
		}
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
