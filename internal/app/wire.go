// Package app builds the pipeline components from configuration. Both
// commands share it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trendpulse/internal/adapter/classifier"
	"trendpulse/internal/adapter/googletrends"
	"trendpulse/internal/adapter/social"
	"trendpulse/internal/config"
	"trendpulse/internal/domain/publication"
	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/domain/trend"
	"trendpulse/internal/metrics"
	"trendpulse/internal/service/fetching"
	"trendpulse/internal/service/pipeline"
	sentimentService "trendpulse/internal/service/sentiment"
)

// Keywords converts the configured keywords
func Keywords(cfg config.Config) []trend.Keyword {
	raw := cfg.Keywords()
	out := make([]trend.Keyword, len(raw))
	for i, kw := range raw {
		out[i] = trend.Keyword(kw)
	}
	return out
}

// FetchOptions derives the fetch options from configuration
func FetchOptions(cfg config.TrendsConfig) trend.FetchOptions {
	return trend.FetchOptions{
		Query: trend.Query{
			Timeframe: cfg.Timeframe,
			Geo:       cfg.Geo,
			Category:  cfg.Category,
		},
		Retries: cfg.Retries,
		Delay:   cfg.RetryDelay,
		Workers: cfg.Workers,
	}
}

// NewProvider creates the trends provider
func NewProvider(cfg config.TrendsConfig, log *zap.Logger) (trend.Provider, error) {
	return googletrends.New(googletrends.Config{
		BaseURL:           cfg.BaseURL,
		Language:          cfg.Language,
		TZOffset:          cfg.TZOffset,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Timeout:           cfg.Timeout,
	}, log)
}

// NewClassifier creates the model backend, wrapped in the redis cache when
// rdb is non-nil
func NewClassifier(cfg config.SentimentConfig, rdb *redis.Client, ttl time.Duration, log *zap.Logger) (sentiment.Classifier, error) {
	var (
		c         sentiment.Classifier
		namespace string
	)

	switch cfg.Backend {
	case config.BackendHuggingFace:
		c = classifier.NewHuggingFace(classifier.HuggingFaceConfig{
			BaseURL: cfg.HuggingFaceURL,
			Model:   cfg.HuggingFaceModel,
			Token:   cfg.HuggingFaceToken,
			Timeout: cfg.Timeout,
		}, log)
		namespace = "hf:" + orDefault(cfg.HuggingFaceModel, classifier.DefaultHuggingFaceModel)
	case config.BackendOpenAI:
		c = classifier.NewOpenAI(classifier.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, log)
		namespace = "openai:" + orDefault(cfg.OpenAIModel, "default")
	default:
		return nil, fmt.Errorf("%w: unknown sentiment backend %q", sentiment.ErrConfiguration, cfg.Backend)
	}

	if rdb != nil {
		c = classifier.NewCached(c, rdb, namespace, ttl, log)
	}
	return c, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// NewScorer builds the scorer for the configured strategy. The model
// strategy probes its classifier here.
func NewScorer(ctx context.Context, cfg config.Config, rdb *redis.Client, log *zap.Logger) (*sentimentService.Scorer, error) {
	strategy, err := sentiment.ParseStrategy(cfg.Sentiment.Strategy)
	if err != nil {
		return nil, err
	}

	scorerCfg := sentimentService.Config{Strategy: strategy}
	if strategy == sentiment.StrategyModel {
		c, err := NewClassifier(cfg.Sentiment, rdb, cfg.Redis.CacheTTL, log)
		if err != nil {
			return nil, err
		}
		scorerCfg.Classifier = c
	}

	return sentimentService.NewScorer(ctx, scorerCfg, log)
}

// NewOrchestrator wires provider, fetcher and scorer into an orchestrator
func NewOrchestrator(ctx context.Context, cfg config.Config, rdb *redis.Client, log *zap.Logger, m *metrics.Metrics) (*pipeline.Orchestrator, error) {
	provider, err := NewProvider(cfg.Trends, log)
	if err != nil {
		return nil, err
	}

	scorer, err := NewScorer(ctx, cfg, rdb, log)
	if err != nil {
		return nil, err
	}

	fetcher := fetching.NewFetcher(provider, log, m)
	return pipeline.NewOrchestrator(fetcher, scorer, log, m), nil
}

// NewPublishers creates a publisher for every configured platform
func NewPublishers(cfg config.PublisherConfig, log *zap.Logger) ([]publication.Publisher, error) {
	var publishers []publication.Publisher

	if cfg.TwitterEnabled() {
		tw, err := social.NewTwitter(social.TwitterConfig{
			ConsumerKey:    cfg.TwitterConsumerKey,
			ConsumerSecret: cfg.TwitterConsumerSecret,
			AccessToken:    cfg.TwitterAccessToken,
			AccessSecret:   cfg.TwitterAccessSecret,
		}, log)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, tw)
	}

	if cfg.TelegramEnabled() {
		tg, err := social.NewTelegram(social.TelegramConfig{
			Token: cfg.TelegramToken,
			Chat:  cfg.TelegramChat,
		}, log)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, tg)
	}

	return publishers, nil
}

// NewRedis connects to redis when an address is configured
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	return rdb, nil
}
