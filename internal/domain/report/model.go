package report

import (
	"errors"
	"time"

	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/domain/trend"
)

var (
	// ErrEmptyResult means a fetch or join produced no usable rows
	ErrEmptyResult = errors.New("no data available")

	// ErrMalformedInput marks table rows missing required fields
	ErrMalformedInput = errors.New("malformed input row")
)

// Row is one row of the joined table (TrendSeries x SentimentRecord)
type Row struct {
	Date              time.Time          `json:"date"`
	Keyword           trend.Keyword      `json:"keyword"`
	Interest          int                `json:"interest"`
	SentimentScore    float64            `json:"sentiment_score"`
	SentimentCategory sentiment.Category `json:"sentiment_category"`
}

// RankedTrend is the record judged most noteworthy in a batch
type RankedTrend struct {
	Keyword           trend.Keyword      `json:"keyword"`
	SentimentScore    float64            `json:"sentiment_score"`
	SentimentCategory sentiment.Category `json:"sentiment_category"`
	Interest          int                `json:"interest"`
	Date              time.Time          `json:"date"`
}

// Result is the artifact handed to presentation and publication
type Result struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Rows        []Row           `json:"rows"`
	Top         RankedTrend     `json:"top"`
	Dropped     []trend.Keyword `json:"dropped,omitempty"`
}

// Series groups the interest values per keyword for chart renderers
func (r *Result) Series() map[trend.Keyword][]SeriesPoint {
	out := make(map[trend.Keyword][]SeriesPoint)
	for _, row := range r.Rows {
		out[row.Keyword] = append(out[row.Keyword], SeriesPoint{Date: row.Date, Interest: row.Interest})
	}
	return out
}

// SeriesPoint is a single chart sample
type SeriesPoint struct {
	Date     time.Time `json:"date"`
	Interest int       `json:"interest"`
}
