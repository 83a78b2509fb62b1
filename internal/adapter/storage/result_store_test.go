package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/report"
	"trendpulse/internal/domain/sentiment"
)

// newTestPool connects to TRENDPULSE_TEST_DATABASE_URL or skips
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TRENDPULSE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TRENDPULSE_TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestResultStoreRoundTrip(t *testing.T) {
	pool := newTestPool(t)
	store := NewResultStore(pool)
	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx))

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	result := &report.Result{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond),
		Rows: []report.Row{
			{Date: day, Keyword: "AI", Interest: 40, SentimentScore: 0.8, SentimentCategory: sentiment.Positive},
			{Date: day.AddDate(0, 0, 1), Keyword: "AI", Interest: 60, SentimentScore: 0.8, SentimentCategory: sentiment.Positive},
		},
		Top:     report.RankedTrend{Keyword: "AI", SentimentScore: 0.8, SentimentCategory: sentiment.Positive, Interest: 60, Date: day.AddDate(0, 0, 1)},
		Dropped: nil,
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM trend_runs WHERE run_id = $1`, result.RunID)
	})

	require.NoError(t, store.SaveResult(ctx, result))
	// saving twice is a no-op
	require.NoError(t, store.SaveResult(ctx, result))

	latest, err := store.LatestResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, latest.RunID)
	assert.Equal(t, result.Top.Keyword, latest.Top.Keyword)
	assert.Equal(t, 60, latest.Top.Interest)
	assert.Len(t, latest.Rows, 2)

	picks, err := store.RecentTops(ctx, 1)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, result.RunID, picks[0].RunID)
}
