// Package fetching acquires interest-over-time series for many keywords,
// absorbing per-keyword failures.
package fetching

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"trendpulse/internal/domain/trend"
	"trendpulse/internal/logging"
	"trendpulse/internal/metrics"
)

// Fetcher implements trend.Fetcher on top of a single-keyword provider
type Fetcher struct {
	provider trend.Provider
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// NewFetcher creates a new fetcher
func NewFetcher(provider trend.Provider, log *zap.Logger, m *metrics.Metrics) *Fetcher {
	return &Fetcher{
		provider: provider,
		log:      logging.OrNop(log).With(zap.String("component", "trend_fetcher")),
		metrics:  m,
	}
}

// Fetch retrieves every keyword independently and concatenates the results
// in input order. A keyword that keeps failing contributes nothing; if all
// fail the result is empty with a nil error. Only cancellation of ctx is
// returned as an error.
func (f *Fetcher) Fetch(ctx context.Context, keywords []trend.Keyword, opts trend.FetchOptions) (trend.Series, error) {
	keywords = f.distinct(keywords)

	f.log.Info("Fetching trend data",
		zap.Int("keywords", len(keywords)),
		zap.String("timeframe", opts.Timeframe),
		zap.String("geo", opts.Geo),
		zap.Int("category", opts.Category),
	)

	groups := make([]trend.Series, len(keywords))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	if workers == 1 {
		for i, kw := range keywords {
			if ctx.Err() != nil {
				break
			}
			groups[i] = f.fetchKeyword(ctx, kw, opts)
		}
	} else {
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for i, kw := range keywords {
			wg.Add(1)
			go func(i int, kw trend.Keyword) {
				defer wg.Done()
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					return
				}
				defer func() { <-sem }()
				groups[i] = f.fetchKeyword(ctx, kw, opts)
			}(i, kw)
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out trend.Series
	for _, g := range groups {
		out = append(out, g...)
	}

	f.log.Info("Data fetching completed", zap.Int("rows", len(out)))
	return out, nil
}

// fetchKeyword runs the sequential retry loop for one keyword
func (f *Fetcher) fetchKeyword(ctx context.Context, kw trend.Keyword, opts trend.FetchOptions) trend.Series {
	log := f.log.With(zap.String("keyword", string(kw)))

	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		log.Debug("Fetching data for keyword", zap.Int("attempt", attempt))

		points, err := f.provider.InterestOverTime(ctx, kw, opts.Query)
		if err == nil {
			if len(points) == 0 {
				f.metrics.FetchAttempt("empty")
				f.metrics.KeywordDropped("empty")
				log.Info("No trend data returned for keyword")
				return nil
			}
			f.metrics.FetchAttempt("ok")
			rows := tag(kw, points, log)
			f.metrics.RowsFetched(len(rows))
			return rows
		}

		if ctx.Err() != nil {
			return nil
		}

		if !trend.IsTransient(err) {
			f.metrics.FetchAttempt("permanent")
			f.metrics.KeywordDropped("permanent")
			log.Error("Request failed permanently, skipping keyword", zap.Error(err))
			return nil
		}

		f.metrics.FetchAttempt("transient")
		if attempt == attempts {
			break
		}

		log.Warn("Request failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("delay", opts.Delay),
		)
		if !sleep(ctx, opts.Delay) {
			return nil
		}
	}

	f.metrics.KeywordDropped("retries_exhausted")
	log.Error("Giving up on keyword", zap.Int("attempts", attempts))
	return nil
}

// tag drops the partial marker, attaches the keyword and enforces strictly
// increasing dates
func tag(kw trend.Keyword, points []trend.ProviderPoint, log *zap.Logger) trend.Series {
	rows := make(trend.Series, 0, len(points))
	var last time.Time
	for i, p := range points {
		if i > 0 && !p.Date.After(last) {
			log.Warn("Dropping out-of-order sample", zap.Time("date", p.Date))
			continue
		}
		last = p.Date
		rows = append(rows, trend.Point{
			Date:     p.Date,
			Keyword:  kw,
			Interest: p.Interest,
		})
	}
	return rows
}

func (f *Fetcher) distinct(keywords []trend.Keyword) []trend.Keyword {
	seen := make(map[trend.Keyword]struct{}, len(keywords))
	out := make([]trend.Keyword, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			f.log.Warn("Skipping empty keyword")
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// sleep waits for d or until ctx is done; it reports whether the full
// delay elapsed
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
