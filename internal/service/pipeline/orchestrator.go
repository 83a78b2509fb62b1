// Package pipeline wires fetching, scoring and selection into a single run
// and schedules runs for publication.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trendpulse/internal/domain/report"
	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/domain/trend"
	"trendpulse/internal/logging"
	"trendpulse/internal/metrics"
)

// KeywordScorer produces the sentiment record of one keyword
type KeywordScorer interface {
	ScoreKeyword(ctx context.Context, keyword trend.Keyword) (sentiment.Record, error)
}

// Orchestrator runs fetch -> score -> join
type Orchestrator struct {
	fetcher trend.Fetcher
	scorer  KeywordScorer
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(fetcher trend.Fetcher, scorer KeywordScorer, log *zap.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		scorer:  scorer,
		log:     logging.OrNop(log).With(zap.String("component", "orchestrator")),
		metrics: m,
		now:     time.Now,
	}
}

// Run executes one pipeline pass. It returns report.ErrEmptyResult when the
// fetch yields no rows or no keyword survives the join.
func (o *Orchestrator) Run(ctx context.Context, keywords []trend.Keyword, opts trend.FetchOptions) (*report.Result, error) {
	runID := uuid.New().String()
	log := o.log.With(zap.String("run_id", runID))
	started := o.now()

	result, err := o.run(ctx, log, keywords, opts)

	elapsed := o.now().Sub(started).Seconds()
	switch {
	case err == nil:
		o.metrics.RunFinished("ok", elapsed)
	case errors.Is(err, report.ErrEmptyResult):
		o.metrics.RunFinished("empty", elapsed)
		log.Warn("Pipeline produced no data", zap.Error(err))
		return nil, err
	default:
		o.metrics.RunFinished("error", elapsed)
		return nil, err
	}

	result.RunID = runID
	result.GeneratedAt = started

	log.Info("Pipeline run complete",
		zap.Int("rows", len(result.Rows)),
		zap.String("top_keyword", string(result.Top.Keyword)),
		zap.Float64("top_score", result.Top.SentimentScore),
		zap.Int("dropped", len(result.Dropped)),
	)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, log *zap.Logger, keywords []trend.Keyword, opts trend.FetchOptions) (*report.Result, error) {
	series, err := o.fetcher.Fetch(ctx, keywords, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch trends: %w", err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("fetch trends: %w", report.ErrEmptyResult)
	}

	// one score per keyword, not per row
	sentiments := make(map[trend.Keyword]sentiment.Record)
	for _, kw := range series.Keywords() {
		rec, err := o.scorer.ScoreKeyword(ctx, kw)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.metrics.ScoreFailed()
			log.Error("Failed to score keyword", zap.String("keyword", string(kw)), zap.Error(err))
			continue
		}
		sentiments[kw] = rec
	}

	result, err := Join(series, sentiments)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	return result, nil
}
