package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Search    SearchConfig
	Vector    VectorConfig
	Gemini    GeminiConfig
	Cache     CacheConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig locates the product CSV
type CatalogConfig struct {
	Path        string        `mapstructure:"path"`
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
}

// SearchConfig holds search defaults
type SearchConfig struct {
	DefaultMaxResults int  `mapstructure:"default_max_results"`
	MinQueryLength    int  `mapstructure:"min_query_length"`
	Debug             bool `mapstructure:"debug"`
}

// VectorConfig holds Qdrant settings
type VectorConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Collection string        `mapstructure:"collection"`
	Dimension  int           `mapstructure:"dimension"`
	Timeout    time.Duration `mapstructure:"timeout"`
	BatchSize  int           `mapstructure:"batch_size"`
}

// GeminiConfig holds Gemini API settings
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	EmbeddingModel    string        `mapstructure:"embedding_model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SessionConfig holds session context settings
type SessionConfig struct {
	MaxHistory int           `mapstructure:"max_history"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// TelemetryConfig holds tracing configuration
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/furnilens/")

	// FURNILENS_CACHE_REDIS_URL -> cache.redis_url
	v.SetEnvPrefix("FURNILENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory without overriding set variables
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	// Catalog defaults
	v.SetDefault("catalog.path", "data/furniture.csv")
	v.SetDefault("catalog.load_timeout", "60s")

	// Search defaults
	v.SetDefault("search.default_max_results", 20)
	v.SetDefault("search.min_query_length", 2)
	v.SetDefault("search.debug", false)

	// Vector defaults
	v.SetDefault("vector.enabled", false)
	v.SetDefault("vector.host", "localhost")
	v.SetDefault("vector.port", 6334)
	v.SetDefault("vector.collection", "furniture-products")
	v.SetDefault("vector.dimension", 768)
	v.SetDefault("vector.timeout", "5s")
	v.SetDefault("vector.batch_size", 100)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.embedding_model", "text-embedding-004")
	v.SetDefault("gemini.timeout", "10s")
	v.SetDefault("gemini.requests_per_minute", 60)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "5m")

	// Session defaults
	v.SetDefault("session.max_history", 10)
	v.SetDefault("session.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Telemetry defaults
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "furnilens-backend")
	v.SetDefault("telemetry.sample_rate", 1.0)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required (set FURNILENS_CATALOG_PATH)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Search.DefaultMaxResults < 1 || config.Search.DefaultMaxResults > 100 {
		return fmt.Errorf("search default_max_results must be between 1 and 100, got: %d", config.Search.DefaultMaxResults)
	}

	if config.Search.MinQueryLength < 1 {
		return fmt.Errorf("search min_query_length must be at least 1, got: %d", config.Search.MinQueryLength)
	}

	// Query embeddings come from Gemini
	if config.Vector.Enabled && config.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key is required when vector search is enabled (set FURNILENS_GEMINI_API_KEY)")
	}

	if config.Vector.Enabled && config.Vector.Dimension <= 0 {
		return fmt.Errorf("vector dimension must be positive, got: %d", config.Vector.Dimension)
	}

	if _, err := zerolog.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.Log.Level, err)
	}

	return nil
}
