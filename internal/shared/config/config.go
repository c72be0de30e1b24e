package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultMaxUploadBytes = 20 << 20

// Config holds application configuration.
type Config struct {
	Env             string
	Port            string
	CORSAllowOrigin []string
	DatabaseURL     string
	MaxUploadBytes  int64

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	S3UsePathStyle  bool
	S3AccessKey     string
	S3SecretKey     string
	S3CreateBucket  bool
	SSEKMSKeyID     string

	SearchIndex        string
	ElasticsearchURL   string
	ElasticsearchIndex string
	WeaviateHost       string
	WeaviateScheme     string
	WeaviateAPIKey     string
	WeaviateClass      string

	LLMProvider   string
	LLMModel      string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	RedisURL   string
	SessionTTL time.Duration
	JWTSecret  string

	ReconcileQueueURL string

	RateLimitRate       float64
	RateLimitBurst      int
	QueryRateLimitRate  float64
	QueryRateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Env:             env,
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,
		MaxUploadBytes:  getInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3UsePathStyle:  getBool("S3_USE_PATH_STYLE", false),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3CreateBucket:  getBool("S3_CREATE_BUCKET", false),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		SearchIndex:        normalizeSearchIndex(getEnv("SEARCH_INDEX", "memory")),
		ElasticsearchURL:   getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "documents"),
		WeaviateHost:       getEnv("WEAVIATE_HOST", "localhost:8081"),
		WeaviateScheme:     getEnv("WEAVIATE_SCHEME", "http"),
		WeaviateAPIKey:     getEnv("WEAVIATE_API_KEY", ""),
		WeaviateClass:      getEnv("WEAVIATE_CLASS", "Document"),

		LLMProvider:   normalizeLLMProvider(getEnv("LLM_PROVIDER", "gemini")),
		LLMModel:      getEnv("LLM_MODEL", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		RedisURL:   getEnv("REDIS_URL", ""),
		SessionTTL: getDuration("SESSION_TTL", time.Hour),
		JWTSecret:  getEnv("JWT_SECRET", ""),

		ReconcileQueueURL: getEnv("RECONCILE_SQS_QUEUE_URL", ""),

		RateLimitRate:       getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:      int(getInt64("RATE_LIMIT_BURST", 20)),
		QueryRateLimitRate:  getFloat("QUERY_RATE_LIMIT_RPS", 1),
		QueryRateLimitBurst: int(getInt64("QUERY_RATE_LIMIT_BURST", 5)),
	}
}

// IsDevLike reports whether the environment allows dev-only conveniences.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, raw, def)
		return def
	}
	return v
}

func getInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		log.Printf("invalid %s=%q, using %v", key, raw, def)
		return def
	}
	return v
}

// getDuration accepts Go durations ("90m") or a bare number of seconds.
func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev", "test":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3", "minio":
		return "s3"
	default:
		return "local"
	}
}

func normalizeSearchIndex(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "elasticsearch", "elastic", "es":
		return "elasticsearch"
	case "weaviate":
		return "weaviate"
	case "none", "off":
		return "none"
	default:
		return "memory"
	}
}

func normalizeLLMProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "openai":
		return "openai"
	default:
		return "none"
	}
}
