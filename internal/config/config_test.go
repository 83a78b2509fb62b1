package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/sentiment"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Bitcoin", "Ethereum", "AI technology", "NFTs", "Solana"}, cfg.Keywords())
	assert.Equal(t, "today 3-m", cfg.Trends.Timeframe)
	assert.Equal(t, 3, cfg.Trends.Retries)
	assert.Equal(t, 5*time.Second, cfg.Trends.RetryDelay)
	assert.Equal(t, 6*time.Hour, cfg.Schedule.Interval)
	assert.Equal(t, string(sentiment.StrategyLexical), cfg.Sentiment.Strategy)
	assert.Equal(t, "#GooAI", cfg.Publisher.Hashtag)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TRENDS_KEYWORDS", "Go, ,Rust")
	t.Setenv("TRENDS_RETRIES", "5")
	t.Setenv("TRENDS_RETRY_DELAY", "250ms")
	t.Setenv("SENTIMENT_STRATEGY", "model")
	t.Setenv("SENTIMENT_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DB_HOST", "db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Go", "Rust"}, cfg.Keywords())
	assert.Equal(t, 5, cfg.Trends.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Trends.RetryDelay)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "postgres://postgres:postgres@db:5432/trendpulse?sslmode=disable", cfg.Database.ConnString())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Trends:    TrendsConfig{Keywords: []string{"AI"}, Retries: 3},
			Sentiment: SentimentConfig{Strategy: "lexical", Backend: BackendHuggingFace},
			Schedule:  ScheduleConfig{Interval: time.Hour},
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		wantErr  bool
		isConfig bool
	}{
		{"valid lexical", func(c *Config) {}, false, false},
		{"unknown strategy", func(c *Config) { c.Sentiment.Strategy = "vibes" }, true, true},
		{"model without token", func(c *Config) { c.Sentiment.Strategy = "model" }, true, true},
		{"model with token", func(c *Config) {
			c.Sentiment.Strategy = "model"
			c.Sentiment.HuggingFaceToken = "hf"
		}, false, false},
		{"unknown backend", func(c *Config) {
			c.Sentiment.Strategy = "model"
			c.Sentiment.Backend = "llama"
		}, true, true},
		{"no keywords", func(c *Config) { c.Trends.Keywords = []string{" "} }, true, false},
		{"zero retries", func(c *Config) { c.Trends.Retries = 0 }, true, false},
		{"zero interval", func(c *Config) { c.Schedule.Interval = 0 }, true, false},
		{"publish without platform", func(c *Config) { c.Publisher.Enabled = true }, true, false},
		{"publish to telegram", func(c *Config) {
			c.Publisher.Enabled = true
			c.Publisher.TelegramToken = "t"
			c.Publisher.TelegramChat = "@c"
		}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)

			err := validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.isConfig {
				assert.ErrorIs(t, err, sentiment.ErrConfiguration)
			}
		})
	}
}
