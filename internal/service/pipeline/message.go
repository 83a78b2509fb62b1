package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trendpulse/internal/domain/report"
)

// DefaultHashtag closes every post
const DefaultHashtag = "#GooAI"

// FormatMessage renders the fixed post template for the top trend. The
// score is rounded half away from zero to two decimals.
func FormatMessage(top report.RankedTrend, hashtag string) string {
	if hashtag == "" {
		hashtag = DefaultHashtag
	}

	return fmt.Sprintf(
		"Trending Now: %s\nSentiment: %s\nInterest Score: %s\nStay updated with %s.",
		top.Keyword,
		top.SentimentCategory,
		FormatScore(top.SentimentScore),
		hashtag,
	)
}

// FormatScore renders a score with exactly two decimals
func FormatScore(score float64) string {
	return decimal.NewFromFloat(score).StringFixed(2)
}
