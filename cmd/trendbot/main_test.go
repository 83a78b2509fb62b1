package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/config"
)

func TestRunFromTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	table := "date,keyword,interest,sentiment_score,sentiment_category\n" +
		"2024-03-01,Bitcoin,55,0.25,Positive\n" +
		"2024-03-01,AI technology,40,0.8234,Positive\n" +
		"2024-03-02,AI technology,61,0.8234,Positive\n" +
		"2024-03-01,,10,0.99,Positive\n"
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

	var out bytes.Buffer
	code := run(context.Background(), config.Config{Publisher: config.PublisherConfig{Hashtag: "#GooAI"}},
		options{fromTable: path}, &out, nil)

	assert.Equal(t, exitOK, code)
	assert.Equal(t, "Trending Now: AI technology\nSentiment: Positive\nInterest Score: 0.82\nStay updated with #GooAI.\n\n", out.String())
}

func TestRunFromEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,keyword,interest,sentiment_score,sentiment_category\n"), 0o644))

	var out bytes.Buffer
	code := run(context.Background(), config.Config{}, options{fromTable: path}, &out, nil)

	assert.Equal(t, exitOK, code)
	assert.Equal(t, "No data available. Please try again later.\n", out.String())
}

func TestRunMissingTable(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), config.Config{}, options{fromTable: "/nonexistent/trends.csv"}, &out, nil)
	assert.Equal(t, exitFailed, code)
}
