package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production, test

	// Redis
	Redis RedisConfig

	// External APIs
	Yahoo  YahooConfig
	Gemini GeminiConfig
	News   NewsConfig

	// Pipeline
	Pipeline PipelineConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	BaseURL           string  // quoteSummary host
	RequestsPerSecond float64 // 초당 요청 수 제한
	Burst             int
}

// GeminiConfig holds the sentiment model configuration
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewsConfig holds headline source configuration
type NewsConfig struct {
	InfoMoneyURL string
	RSSURL       string // %s is replaced with the ticker
	MaxHeadlines int

	// 소스별 분당 요청 한도 (Redis 사용 시)
	InfoMoneyPerMinute int
	RSSPerMinute       int
}

// PipelineConfig holds screening pipeline configuration
type PipelineConfig struct {
	DataSource   string // yahoo, fixture
	Workers      int
	CallTimeout  time.Duration
	LookbackDays int
	CacheTTL     time.Duration
	CacheBucket  time.Duration
	TickersFile  string
	StrategyFile string
	FixtureFile  string
}

// Data sources
const (
	DataSourceYahoo   = "yahoo"
	DataSourceFixture = "fixture"
)

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		Yahoo: YahooConfig{
			BaseURL:           getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			RequestsPerSecond: getEnvAsFloat("YAHOO_REQUESTS_PER_SECOND", 4),
			Burst:             getEnvAsInt("YAHOO_BURST", 2),
		},

		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},

		News: NewsConfig{
			InfoMoneyURL: getEnv("NEWS_INFOMONEY_URL", "https://www.infomoney.com.br/"),
			RSSURL:       getEnv("NEWS_RSS_URL", "https://news.google.com/rss/search?q=%s&hl=pt-BR&gl=BR&ceid=BR:pt-419"),
			MaxHeadlines: getEnvAsInt("NEWS_MAX_HEADLINES", 5),

			InfoMoneyPerMinute: getEnvAsInt("NEWS_INFOMONEY_PER_MINUTE", 30),
			RSSPerMinute:       getEnvAsInt("NEWS_RSS_PER_MINUTE", 60),
		},

		// Pipeline
		Pipeline: PipelineConfig{
			DataSource:   getEnv("DATA_SOURCE", DataSourceYahoo),
			Workers:      getEnvAsInt("PIPELINE_WORKERS", 8),
			CallTimeout:  getEnvAsDuration("PIPELINE_CALL_TIMEOUT", "15s"),
			LookbackDays: getEnvAsInt("PIPELINE_LOOKBACK_DAYS", 180),
			CacheTTL:     getEnvAsDuration("PIPELINE_CACHE_TTL", "30m"),
			CacheBucket:  getEnvAsDuration("PIPELINE_CACHE_BUCKET", "1h"),
			TickersFile:  getEnv("TICKERS_FILE", "config/tickers_b3.csv"),
			StrategyFile: getEnv("STRATEGY_FILE", "config/strategy/b3_value.yaml"),
			FixtureFile:  getEnv("FIXTURE_FILE", "config/fixtures/sample.yaml"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	switch c.Pipeline.DataSource {
	case DataSourceYahoo, DataSourceFixture:
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: %s, %s", DataSourceYahoo, DataSourceFixture)
	}

	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be > 0")
	}
	if c.Pipeline.CallTimeout <= 0 {
		return fmt.Errorf("PIPELINE_CALL_TIMEOUT must be > 0")
	}
	if c.Pipeline.LookbackDays <= 0 {
		return fmt.Errorf("PIPELINE_LOOKBACK_DAYS must be > 0")
	}
	if c.Yahoo.RequestsPerSecond <= 0 {
		return fmt.Errorf("YAHOO_REQUESTS_PER_SECOND must be > 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
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
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
