package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/report"
	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/domain/trend"
)

type fixedFetcher struct {
	series trend.Series
	err    error
}

func (f fixedFetcher) Fetch(ctx context.Context, keywords []trend.Keyword, opts trend.FetchOptions) (trend.Series, error) {
	return f.series, f.err
}

type mapScorer struct {
	mu     sync.Mutex
	scores map[trend.Keyword]float64
	fail   map[trend.Keyword]error
	calls  map[trend.Keyword]int
}

func newMapScorer(scores map[trend.Keyword]float64) *mapScorer {
	return &mapScorer{scores: scores, fail: map[trend.Keyword]error{}, calls: map[trend.Keyword]int{}}
}

func (s *mapScorer) ScoreKeyword(ctx context.Context, kw trend.Keyword) (sentiment.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[kw]++
	if err := s.fail[kw]; err != nil {
		return sentiment.Record{}, err
	}
	return sentiment.NewRecord(kw, s.scores[kw]), nil
}

func TestOrchestratorEndToEnd(t *testing.T) {
	// NFTs returned no data, so only AI reaches the table
	fetcher := fixedFetcher{series: trend.Series{point("AI", 0, 40), point("AI", 1, 60)}}
	scorer := newMapScorer(map[trend.Keyword]float64{"AI": 0.8, "NFTs": 0.3})

	o := NewOrchestrator(fetcher, scorer, nil, nil)
	result, err := o.Run(context.Background(), []trend.Keyword{"AI", "NFTs"}, trend.FetchOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.GeneratedAt.IsZero())
	require.Len(t, result.Rows, 2)
	for _, row := range result.Rows {
		assert.Equal(t, trend.Keyword("AI"), row.Keyword)
	}
	assert.Equal(t, trend.Keyword("AI"), result.Top.Keyword)
	assert.Equal(t, 0.8, result.Top.SentimentScore)
	assert.Equal(t, sentiment.Positive, result.Top.SentimentCategory)
	assert.Equal(t, 1, scorer.calls["AI"])
	assert.Zero(t, scorer.calls["NFTs"])

	assert.Equal(t,
		"Trending Now: AI\nSentiment: Positive\nInterest Score: 0.80\nStay updated with #GooAI.",
		FormatMessage(result.Top, ""),
	)
}

func TestOrchestratorEmptyFetch(t *testing.T) {
	o := NewOrchestrator(fixedFetcher{}, newMapScorer(nil), nil, nil)

	_, err := o.Run(context.Background(), []trend.Keyword{"AI"}, trend.FetchOptions{})
	assert.ErrorIs(t, err, report.ErrEmptyResult)
}

func TestOrchestratorScoreFailureDropsKeyword(t *testing.T) {
	fetcher := fixedFetcher{series: trend.Series{point("AI", 0, 40), point("Bitcoin", 0, 90)}}
	scorer := newMapScorer(map[trend.Keyword]float64{"AI": 0.1, "Bitcoin": 0.9})
	scorer.fail["Bitcoin"] = errors.New("model timeout")

	o := NewOrchestrator(fetcher, scorer, nil, nil)
	result, err := o.Run(context.Background(), nil, trend.FetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, trend.Keyword("AI"), result.Top.Keyword)
	assert.Equal(t, []trend.Keyword{"Bitcoin"}, result.Dropped)
}

func TestOrchestratorAllScoresFail(t *testing.T) {
	fetcher := fixedFetcher{series: trend.Series{point("AI", 0, 40)}}
	scorer := newMapScorer(nil)
	scorer.fail["AI"] = errors.New("down")

	o := NewOrchestrator(fetcher, scorer, nil, nil)
	_, err := o.Run(context.Background(), nil, trend.FetchOptions{})
	assert.ErrorIs(t, err, report.ErrEmptyResult)
}

func TestOrchestratorFetchError(t *testing.T) {
	o := NewOrchestrator(fixedFetcher{err: context.Canceled}, newMapScorer(nil), nil, nil)

	_, err := o.Run(context.Background(), nil, trend.FetchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, report.ErrEmptyResult)
}

func TestOrchestratorUsesClock(t *testing.T) {
	fetcher := fixedFetcher{series: trend.Series{point("AI", 0, 40)}}
	o := NewOrchestrator(fetcher, newMapScorer(map[trend.Keyword]float64{"AI": 0.2}), nil, nil)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return fixed }

	result, err := o.Run(context.Background(), nil, trend.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, fixed, result.GeneratedAt)
}
