package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Matching  MatchingConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// APIKey enables X-API-Key validation on matching endpoints when set;
	// empty disables the check.
	APIKey  string `mapstructure:"api_key"`
	LogJSON bool   `mapstructure:"log_json"`
}

// MongoConfig holds the unique-products catalog connection settings
type MongoConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// MatchingConfig holds the scoring thresholds and caps
type MatchingConfig struct {
	MinMatchScore             float64       `mapstructure:"min_match_score"`
	MaxMatchedProductsPerItem int           `mapstructure:"max_matched_products_per_item"`
	PriceTolerancePercent     float64       `mapstructure:"price_tolerance_percent"`
	RequiredWeight            float64       `mapstructure:"required_weight"`
	OptionalWeight            float64       `mapstructure:"optional_weight"`
	MaxConcurrentItems        int           `mapstructure:"max_concurrent_items"`
	RequestTimeout            time.Duration `mapstructure:"request_timeout"`
}

// CacheConfig holds the candidate-cache settings
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/tendermatch/")

	// Environment variable settings
	v.SetEnvPrefix("TENDERMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8002")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.log_json", false)

	// Catalog defaults
	v.SetDefault("mongo.uri", "mongodb://localhost:27017/?directConnection=true")
	v.SetDefault("mongo.database", "unique_products")
	v.SetDefault("mongo.collection", "unique_products")
	v.SetDefault("mongo.timeout", "10s")

	// Matching defaults
	v.SetDefault("matching.min_match_score", 0.5)
	v.SetDefault("matching.max_matched_products_per_item", 10)
	v.SetDefault("matching.price_tolerance_percent", 20.0)
	v.SetDefault("matching.required_weight", 0.7)
	v.SetDefault("matching.optional_weight", 0.3)
	v.SetDefault("matching.max_concurrent_items", 10)
	v.SetDefault("matching.request_timeout", "60s")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Mongo.URI == "" {
		return fmt.Errorf("mongo URI is required (set TENDERMATCH_MONGO_URI)")
	}

	if config.Matching.MinMatchScore < 0 || config.Matching.MinMatchScore > 1 {
		return fmt.Errorf("matching.min_match_score must be in [0,1], got: %v", config.Matching.MinMatchScore)
	}

	if config.Matching.MaxMatchedProductsPerItem <= 0 {
		return fmt.Errorf("matching.max_matched_products_per_item must be positive, got: %d", config.Matching.MaxMatchedProductsPerItem)
	}

	if config.Matching.PriceTolerancePercent < 0 {
		return fmt.Errorf("matching.price_tolerance_percent must not be negative, got: %v", config.Matching.PriceTolerancePercent)
	}

	if config.Matching.RequiredWeight <= 0 || config.Matching.OptionalWeight <= 0 {
		return fmt.Errorf("matching weights must be positive, got: required=%v optional=%v",
			config.Matching.RequiredWeight, config.Matching.OptionalWeight)
	}

	return nil
}
