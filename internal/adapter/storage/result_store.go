// internal/adapter/storage/result_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendpulse/internal/domain/report"
	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/domain/trend"
)

const schema = `
	CREATE TABLE IF NOT EXISTS trend_runs (
		run_id UUID PRIMARY KEY,
		generated_at TIMESTAMPTZ NOT NULL,
		top_keyword TEXT NOT NULL,
		top_score DOUBLE PRECISION NOT NULL,
		top_category TEXT NOT NULL,
		top_interest INTEGER NOT NULL,
		top_date TIMESTAMPTZ NOT NULL,
		dropped TEXT[] NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS trend_rows (
		run_id UUID NOT NULL REFERENCES trend_runs(run_id) ON DELETE CASCADE,
		date TIMESTAMPTZ NOT NULL,
		keyword TEXT NOT NULL,
		interest INTEGER NOT NULL,
		sentiment_score DOUBLE PRECISION NOT NULL,
		sentiment_category TEXT NOT NULL,
		PRIMARY KEY (run_id, keyword, date)
	);

	CREATE INDEX IF NOT EXISTS trend_runs_generated_at_idx ON trend_runs (generated_at DESC);
`

// ResultStore persists pipeline results in postgres
type ResultStore struct {
	db *pgxpool.Pool
}

// NewResultStore creates a new result store
func NewResultStore(db *pgxpool.Pool) *ResultStore {
	return &ResultStore{
		db: db,
	}
}

// EnsureSchema creates the tables if they do not exist
func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// SaveResult stores a run and its rows in one transaction
func (s *ResultStore) SaveResult(ctx context.Context, r *report.Result) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	dropped := make([]string, len(r.Dropped))
	for i, kw := range r.Dropped {
		dropped[i] = string(kw)
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO trend_runs (
			run_id, generated_at, top_keyword, top_score, top_category,
			top_interest, top_date, dropped
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO NOTHING`,
		r.RunID,
		r.GeneratedAt,
		string(r.Top.Keyword),
		r.Top.SentimentScore,
		string(r.Top.SentimentCategory),
		r.Top.Interest,
		r.Top.Date,
		dropped,
	)

	for _, row := range r.Rows {
		batch.Queue(`
			INSERT INTO trend_rows (
				run_id, date, keyword, interest, sentiment_score, sentiment_category
			) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING`,
			r.RunID,
			row.Date,
			string(row.Keyword),
			row.Interest,
			row.SentimentScore,
			string(row.SentimentCategory),
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("error executing query: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("error closing batch: %w", err)
	}

	return tx.Commit(ctx)
}

// LatestResult loads the most recent run. It returns report.ErrEmptyResult
// when nothing has been stored yet.
func (s *ResultStore) LatestResult(ctx context.Context) (*report.Result, error) {
	var (
		r        report.Result
		keyword  string
		category string
		dropped  []string
	)

	err := s.db.QueryRow(ctx, `
		SELECT run_id::text, generated_at, top_keyword, top_score, top_category,
			top_interest, top_date, dropped
		FROM trend_runs
		ORDER BY generated_at DESC
		LIMIT 1`,
	).Scan(
		&r.RunID,
		&r.GeneratedAt,
		&keyword,
		&r.Top.SentimentScore,
		&category,
		&r.Top.Interest,
		&r.Top.Date,
		&dropped,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, report.ErrEmptyResult
	}
	if err != nil {
		return nil, fmt.Errorf("error querying latest run: %w", err)
	}

	r.Top.Keyword = trend.Keyword(keyword)
	r.Top.SentimentCategory = sentiment.Category(category)
	for _, kw := range dropped {
		r.Dropped = append(r.Dropped, trend.Keyword(kw))
	}

	rows, err := s.db.Query(ctx, `
		SELECT date, keyword, interest, sentiment_score, sentiment_category
		FROM trend_rows
		WHERE run_id = $1
		ORDER BY keyword, date`,
		r.RunID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row report.Row
		if err := rows.Scan(&row.Date, &keyword, &row.Interest, &row.SentimentScore, &category); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		row.Keyword = trend.Keyword(keyword)
		row.SentimentCategory = sentiment.Category(category)
		r.Rows = append(r.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &r, nil
}

// TopPick is one historical selection
type TopPick struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Top         report.RankedTrend `json:"top"`
}

// RecentTops returns the top selection of the last limit runs, newest first
func (s *ResultStore) RecentTops(ctx context.Context, limit int) ([]TopPick, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT run_id::text, generated_at, top_keyword, top_score, top_category, top_interest, top_date
		FROM trend_runs
		ORDER BY generated_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying runs: %w", err)
	}
	defer rows.Close()

	var picks []TopPick
	for rows.Next() {
		var (
			p        TopPick
			keyword  string
			category string
		)
		if err := rows.Scan(&p.RunID, &p.GeneratedAt, &keyword, &p.Top.SentimentScore, &category, &p.Top.Interest, &p.Top.Date); err != nil {
			return nil, fmt.Errorf("error scanning run: %w", err)
		}
		p.Top.Keyword = trend.Keyword(keyword)
		p.Top.SentimentCategory = sentiment.Category(category)
		picks = append(picks, p)
	}

	return picks, rows.Err()
}
