package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trendpulse/internal/domain/trend"
)

// ErrConfiguration is returned when a scorer cannot be built for the
// requested strategy. It is fatal and never retried.
var ErrConfiguration = errors.New("sentiment configuration error")

// Category is the sign class of a sentiment score
type Category string

const (
	Positive Category = "Positive"
	Negative Category = "Negative"
	Neutral  Category = "Neutral"
)

// CategoryOf derives the category from the sign of score
func CategoryOf(score float64) Category {
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}

// ParseCategory accepts the canonical category names, case-insensitively
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return Positive, true
	case "negative":
		return Negative, true
	case "neutral":
		return Neutral, true
	}
	return "", false
}

// Record is the sentiment attached to one keyword
type Record struct {
	Keyword  trend.Keyword `json:"keyword"`
	Score    float64       `json:"sentiment_score"`
	Category Category      `json:"sentiment_category"`
}

// NewRecord builds a record whose category always agrees with its score
func NewRecord(keyword trend.Keyword, score float64) Record {
	return Record{Keyword: keyword, Score: score, Category: CategoryOf(score)}
}

// Strategy selects how text is scored
type Strategy string

const (
	StrategyLexical Strategy = "lexical"
	StrategyModel   Strategy = "model"
)

// ParseStrategy validates a strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyLexical:
		return StrategyLexical, nil
	case StrategyModel:
		return StrategyModel, nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrConfiguration, s)
}

// Label is the output class of a binary sentiment classifier
type Label string

const (
	LabelPositive Label = "POSITIVE"
	LabelNegative Label = "NEGATIVE"
)

// Classification is a classifier verdict
type Classification struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier is a pretrained binary sentiment model
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// Analyzer is the capability shared by every scoring strategy. Input is
// already normalized; output is in [-1, 1].
type Analyzer interface {
	Score(ctx context.Context, text string) (float64, error)
}
