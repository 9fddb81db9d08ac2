package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Redis      RedisConfig
	Server     ServerConfig
	Search     SearchConfig
	Ranking    RankingConfig
	Resilience ResilienceConfig
	Gebeta     GebetaConfig
	Gemini     GeminiConfig
	Services   ServicesConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// RedisConfig holds Redis configuration (rate limiting)
type RedisConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// SearchConfig holds cascading search configuration
type SearchConfig struct {
	MinResults int // tier short-circuit threshold
	MaxResults int // hard cap on candidates
	TopK       int // ranked subset size
}

// RankingConfig holds the base ranking weights
type RankingConfig struct {
	WeightProximity     float64
	WeightAffordability float64
	WeightFamilyFit     float64
}

// ResilienceConfig holds retry and circuit breaker settings shared by all
// external service clients
type ResilienceConfig struct {
	MaxAttempts        int
	InitialBackoffMs   int
	FailureThreshold   int
	ResetTimeoutSec    int
	RateLimitRequests  int
	RateLimitWindowSec int
}

// GebetaConfig holds routing-matrix service configuration
type GebetaConfig struct {
	APIKey  string
	APIBase string
	Timeout int
	Enabled bool
}

// GeminiConfig holds text-generation service configuration
type GeminiConfig struct {
	APIKey         string
	APIBase        string
	ChatModel      string
	FallbackModel  string
	EmbeddingModel string
	Timeout        int
	Enabled        bool
}

// ServicesConfig holds URLs of collaborating services
type ServicesConfig struct {
	SearchFiltersURL  string
	SearchTimeout     int
	UserManagementURL string
	AuthTimeout       int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "rental_db"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", ""),
			Enabled: getEnv("REDIS_URL", "") != "",
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Search: SearchConfig{
			MinResults: getEnvAsInt("SEARCH_MIN_RESULTS", 3),
			MaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 10),
			TopK:       getEnvAsInt("SEARCH_TOP_K", 3),
		},
		Ranking: RankingConfig{
			WeightProximity:     getEnvAsFloat("RANK_WEIGHT_PROXIMITY", 0.4),
			WeightAffordability: getEnvAsFloat("RANK_WEIGHT_AFFORDABILITY", 0.3),
			WeightFamilyFit:     getEnvAsFloat("RANK_WEIGHT_FAMILY_FIT", 0.3),
		},
		Resilience: ResilienceConfig{
			MaxAttempts:        getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			InitialBackoffMs:   getEnvAsInt("RETRY_INITIAL_BACKOFF_MS", 500),
			FailureThreshold:   getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 3),
			ResetTimeoutSec:    getEnvAsInt("BREAKER_RESET_TIMEOUT_S", 60),
			RateLimitRequests:  getEnvAsInt("RATE_LIMIT_REQUESTS", 5),
			RateLimitWindowSec: getEnvAsInt("RATE_LIMIT_WINDOW_S", 60),
		},
		Gebeta: GebetaConfig{
			APIKey:  getEnv("GEBETA_API_KEY", ""),
			APIBase: getEnv("GEBETA_API_BASE", "https://api.gebeta.app"),
			Timeout: getEnvAsInt("GEBETA_TIMEOUT", 10),
			Enabled: getEnv("GEBETA_API_KEY", "") != "",
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			APIBase:        getEnv("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1beta"),
			ChatModel:      getEnv("GEMINI_CHAT_MODEL", "gemini-1.5-flash"),
			FallbackModel:  getEnv("GEMINI_FALLBACK_MODEL", "gemini-1.5-flash-8b"),
			EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
			Timeout:        getEnvAsInt("GEMINI_TIMEOUT", 30),
			Enabled:        getEnv("GEMINI_API_KEY", "") != "",
		},
		Services: ServicesConfig{
			SearchFiltersURL:  getEnv("SEARCH_FILTERS_URL", "http://search-filters:8000"),
			SearchTimeout:     getEnvAsInt("SEARCH_TIMEOUT", 10),
			UserManagementURL: getEnv("USER_MANAGEMENT_URL", "http://user-management:8000"),
			AuthTimeout:       getEnvAsInt("AUTH_TIMEOUT", 5),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
