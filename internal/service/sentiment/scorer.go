// Package sentiment implements the lexical and model scoring strategies
// behind a single Scorer.
package sentiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/domain/trend"
	"trendpulse/internal/logging"
	"trendpulse/internal/service/textnorm"
)

const defaultProbeText = "this is good"

// Config selects the scoring strategy for the lifetime of a Scorer
type Config struct {
	Strategy   sentiment.Strategy
	Classifier sentiment.Classifier

	// ProbeText is classified once at construction to prove the model is
	// reachable and binary.
	ProbeText string
}

// Scorer normalizes text and dispatches to the configured analyzer
type Scorer struct {
	strategy sentiment.Strategy
	analyzer sentiment.Analyzer
	log      *zap.Logger
}

// NewScorer validates the strategy. A model strategy whose classifier is
// missing, unreachable or not a POSITIVE/NEGATIVE model fails here with
// sentiment.ErrConfiguration rather than on the first call.
func NewScorer(ctx context.Context, cfg Config, log *zap.Logger) (*Scorer, error) {
	log = logging.OrNop(log).With(zap.String("component", "sentiment_scorer"))

	var analyzer sentiment.Analyzer
	switch cfg.Strategy {
	case sentiment.StrategyLexical:
		analyzer = NewLexicon()

	case sentiment.StrategyModel:
		if cfg.Classifier == nil {
			return nil, fmt.Errorf("%w: model strategy requires a classifier", sentiment.ErrConfiguration)
		}

		probe := cfg.ProbeText
		if probe == "" {
			probe = defaultProbeText
		}
		c, err := cfg.Classifier.Classify(ctx, probe)
		if err != nil {
			return nil, fmt.Errorf("%w: classifier unavailable: %v", sentiment.ErrConfiguration, err)
		}
		if c.Label != sentiment.LabelPositive && c.Label != sentiment.LabelNegative {
			return nil, fmt.Errorf("%w: classifier returned unsupported label %q", sentiment.ErrConfiguration, c.Label)
		}
		analyzer = NewModel(cfg.Classifier)

	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", sentiment.ErrConfiguration, cfg.Strategy)
	}

	log.Info("Sentiment scorer ready", zap.String("strategy", string(cfg.Strategy)))

	return &Scorer{
		strategy: cfg.Strategy,
		analyzer: analyzer,
		log:      log,
	}, nil
}

// Strategy returns the strategy chosen at construction
func (s *Scorer) Strategy() sentiment.Strategy {
	return s.strategy
}

// Score returns a score in [-1, 1] and its category
func (s *Scorer) Score(ctx context.Context, text string) (float64, sentiment.Category, error) {
	score, err := s.analyzer.Score(ctx, textnorm.Normalize(text))
	if err != nil {
		return 0, sentiment.Neutral, err
	}
	score = clamp(score)
	return score, sentiment.CategoryOf(score), nil
}

// ScoreKeyword scores the keyword text itself
func (s *Scorer) ScoreKeyword(ctx context.Context, keyword trend.Keyword) (sentiment.Record, error) {
	score, _, err := s.Score(ctx, string(keyword))
	if err != nil {
		return sentiment.Record{}, fmt.Errorf("score %q: %w", keyword, err)
	}

	s.log.Debug("Scored keyword",
		zap.String("keyword", string(keyword)),
		zap.Float64("score", score),
	)
	return sentiment.NewRecord(keyword, score), nil
}
