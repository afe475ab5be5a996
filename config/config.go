package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Matching  MatchingConfig
	Storage   StorageConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig points at the product catalog and extra language tables.
// Empty paths use the embedded defaults.
type CatalogConfig struct {
	Path            string `mapstructure:"path"`
	LexiconPath     string `mapstructure:"lexicon_path"`
	DefaultLanguage string `mapstructure:"default_language"`
}

// MatchingConfig tunes product resolution
type MatchingConfig struct {
	Strategy           string  `mapstructure:"strategy"` // "exact", "edit", "token" or "hybrid"
	MinSimilarity      float64 `mapstructure:"min_similarity"`
	MaxSuggestions     int     `mapstructure:"max_suggestions"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// StorageConfig selects the durable cart store
type StorageConfig struct {
	Type          string        `mapstructure:"type"` // "memory" or "mongo"
	MongoURI      string        `mapstructure:"mongo_uri"`
	MongoDatabase string        `mapstructure:"mongo_database"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/voicecart/")

	// VOICECART_CACHE_REDIS_URL maps to cache.redis_url
	v.SetEnvPrefix("VOICECART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
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

// loadEnvFile loads ./.env if present. Variables already set win.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.lexicon_path", "")
	v.SetDefault("catalog.default_language", "en")

	v.SetDefault("matching.strategy", "hybrid")
	v.SetDefault("matching.min_similarity", 0.5)
	v.SetDefault("matching.max_suggestions", 3)
	v.SetDefault("matching.enable_debug_logging", false)

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.mongo_uri", "")
	v.SetDefault("storage.mongo_database", "voicecart")
	v.SetDefault("storage.timeout", "5s")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "30m")

	v.SetDefault("ratelimit.per_ip", 120)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Matching.Strategy {
	case "exact", "edit", "token", "hybrid":
	default:
		return fmt.Errorf("matching strategy must be one of exact, edit, token, hybrid, got: %s", config.Matching.Strategy)
	}

	if config.Matching.MinSimilarity < 0 || config.Matching.MinSimilarity > 1 {
		return fmt.Errorf("matching min_similarity must be within [0, 1], got: %v", config.Matching.MinSimilarity)
	}

	if config.Matching.MaxSuggestions < 1 {
		return fmt.Errorf("matching max_suggestions must be at least 1, got: %d", config.Matching.MaxSuggestions)
	}

	if config.Storage.Type != "memory" && config.Storage.Type != "mongo" {
		return fmt.Errorf("storage type must be 'memory' or 'mongo', got: %s", config.Storage.Type)
	}

	if config.Storage.Type == "mongo" && config.Storage.MongoURI == "" {
		return fmt.Errorf("mongo URI is required when storage type is 'mongo' (set VOICECART_STORAGE_MONGO_URI)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis' (set VOICECART_CACHE_REDIS_URL)")
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip cannot be negative, got: %d", config.RateLimit.PerIP)
	}

	if config.Log.Format != "json" && config.Log.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text', got: %s", config.Log.Format)
	}

	return nil
}
