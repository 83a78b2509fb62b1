// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"trendpulse/internal/domain/sentiment"
)

// Sentiment model backends
const (
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Redis       RedisConfig
	Trends      TrendsConfig
	Sentiment   SentimentConfig
	Publisher   PublisherConfig
	Schedule    ScheduleConfig
	Storage     StorageConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration. An empty Host disables
// result persistence.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// Enabled reports whether a database is configured
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// ConnString returns the postgres URL
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// NATSConfig holds NATS configuration. An empty URL disables events.
type NATSConfig struct {
	URL            string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// RedisConfig holds the classification cache settings. An empty Addr
// disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// TrendsConfig holds trend acquisition configuration
type TrendsConfig struct {
	Keywords          []string
	Timeframe         string
	Geo               string
	Category          int
	Retries           int
	RetryDelay        time.Duration
	Workers           int
	BaseURL           string
	Language          string
	TZOffset          int
	RequestsPerMinute int
	Timeout           time.Duration
}

// SentimentConfig holds scoring configuration
type SentimentConfig struct {
	Strategy         string
	Backend          string
	HuggingFaceURL   string
	HuggingFaceModel string
	HuggingFaceToken string
	OpenAIKey        string
	OpenAIBaseURL    string
	OpenAIModel      string
	Timeout          time.Duration
}

// PublisherConfig holds the social platforms to post to
type PublisherConfig struct {
	Enabled               bool
	Hashtag               string
	TwitterConsumerKey    string
	TwitterConsumerSecret string
	TwitterAccessToken    string
	TwitterAccessSecret   string
	TelegramToken         string
	TelegramChat          string
}

// TwitterEnabled reports whether all twitter credentials are set
func (c PublisherConfig) TwitterEnabled() bool {
	return c.TwitterConsumerKey != "" && c.TwitterConsumerSecret != "" &&
		c.TwitterAccessToken != "" && c.TwitterAccessSecret != ""
}

// TelegramEnabled reports whether telegram is configured
func (c PublisherConfig) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChat != ""
}

// ScheduleConfig holds the periodic run configuration
type ScheduleConfig struct {
	Interval   time.Duration
	RunOnStart bool
}

// StorageConfig holds the CSV snapshot location. Empty disables snapshots.
type StorageConfig struct {
	TablePath string
}

// Load loads configuration from environment variables, after applying a
// .env file when one exists
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env: %w", err)
	}

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Minute),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", ""),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "trendpulse"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			SubjectPrefix:  getEnv("NATS_SUBJECT_PREFIX", "trends"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", 24*time.Hour),
		},
		Trends: TrendsConfig{
			Keywords:          getEnvAsSlice("TRENDS_KEYWORDS", []string{"Bitcoin", "Ethereum", "AI technology", "NFTs", "Solana"}),
			Timeframe:         getEnv("TRENDS_TIMEFRAME", "today 3-m"),
			Geo:               getEnv("TRENDS_GEO", "US"),
			Category:          getEnvAsInt("TRENDS_CATEGORY", 0),
			Retries:           getEnvAsInt("TRENDS_RETRIES", 3),
			RetryDelay:        getEnvAsDuration("TRENDS_RETRY_DELAY", 5*time.Second),
			Workers:           getEnvAsInt("TRENDS_WORKERS", 1),
			BaseURL:           getEnv("TRENDS_BASE_URL", "https://trends.google.com"),
			Language:          getEnv("TRENDS_LANGUAGE", "en-US"),
			TZOffset:          getEnvAsInt("TRENDS_TZ_OFFSET", 360),
			RequestsPerMinute: getEnvAsInt("TRENDS_REQUESTS_PER_MINUTE", 30),
			Timeout:           getEnvAsDuration("TRENDS_TIMEOUT", 30*time.Second),
		},
		Sentiment: SentimentConfig{
			Strategy:         getEnv("SENTIMENT_STRATEGY", string(sentiment.StrategyLexical)),
			Backend:          getEnv("SENTIMENT_BACKEND", BackendHuggingFace),
			HuggingFaceURL:   getEnv("HUGGINGFACE_URL", ""),
			HuggingFaceModel: getEnv("HUGGINGFACE_MODEL", ""),
			HuggingFaceToken: getEnvFirst([]string{"HUGGINGFACE_TOKEN", "HF_TOKEN"}, ""),
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
			OpenAIModel:      getEnv("OPENAI_MODEL", ""),
			Timeout:          getEnvAsDuration("SENTIMENT_TIMEOUT", 30*time.Second),
		},
		Publisher: PublisherConfig{
			Enabled:               getEnvAsBool("PUBLISH_ENABLED", false),
			Hashtag:               getEnv("PUBLISH_HASHTAG", "#GooAI"),
			TwitterConsumerKey:    getEnv("TWITTER_API_KEY", ""),
			TwitterConsumerSecret: getEnv("TWITTER_API_SECRET", ""),
			TwitterAccessToken:    getEnv("TWITTER_ACCESS_TOKEN", ""),
			TwitterAccessSecret:   getEnv("TWITTER_ACCESS_SECRET", ""),
			TelegramToken:         getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChat:          getEnv("TELEGRAM_CHAT", ""),
		},
		Schedule: ScheduleConfig{
			Interval:   getEnvAsDuration("SCHEDULE_INTERVAL", 6*time.Hour),
			RunOnStart: getEnvAsBool("SCHEDULE_RUN_ON_START", true),
		},
		Storage: StorageConfig{
			TablePath: getEnv("STORAGE_TABLE_PATH", "data/trends_sentiment.csv"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	strategy, err := sentiment.ParseStrategy(config.Sentiment.Strategy)
	if err != nil {
		return err
	}

	if strategy == sentiment.StrategyModel {
		switch config.Sentiment.Backend {
		case BackendHuggingFace:
			if config.Sentiment.HuggingFaceToken == "" {
				return fmt.Errorf("%w: HUGGINGFACE_TOKEN is required for the huggingface backend", sentiment.ErrConfiguration)
			}
		case BackendOpenAI:
			if config.Sentiment.OpenAIKey == "" {
				return fmt.Errorf("%w: OPENAI_API_KEY is required for the openai backend", sentiment.ErrConfiguration)
			}
		default:
			return fmt.Errorf("%w: unknown sentiment backend %q", sentiment.ErrConfiguration, config.Sentiment.Backend)
		}
	}

	if len(config.Keywords()) == 0 {
		return fmt.Errorf("at least one keyword must be configured")
	}
	if config.Trends.Retries < 1 {
		return fmt.Errorf("trends retries must be at least 1, got %d", config.Trends.Retries)
	}
	if config.Trends.RetryDelay < 0 {
		return fmt.Errorf("trends retry delay must not be negative")
	}
	if config.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule interval must be positive")
	}

	if config.Publisher.Enabled && !config.Publisher.TwitterEnabled() && !config.Publisher.TelegramEnabled() {
		return fmt.Errorf("publishing is enabled but no platform is configured")
	}

	return nil
}

// Keywords returns the configured keywords with blanks removed
func (c Config) Keywords() []string {
	var out []string
	for _, kw := range c.Trends.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFirst(keys []string, defaultValue string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
