package pipeline

import (
	"fmt"
	"math"
	"sort"

	"trendpulse/internal/domain/report"
	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/domain/trend"
)

// Join merges series rows with per-keyword sentiment using inner-join
// semantics: a keyword missing from either side is left out of the table
// and reported in Result.Dropped. An empty table is ErrEmptyResult.
func Join(series trend.Series, sentiments map[trend.Keyword]sentiment.Record) (*report.Result, error) {
	rows := make([]report.Row, 0, len(series))
	var dropped []trend.Keyword
	seenDrop := make(map[trend.Keyword]struct{})
	inSeries := make(map[trend.Keyword]struct{})

	for _, p := range series {
		inSeries[p.Keyword] = struct{}{}

		rec, ok := sentiments[p.Keyword]
		if !ok {
			if _, done := seenDrop[p.Keyword]; !done {
				seenDrop[p.Keyword] = struct{}{}
				dropped = append(dropped, p.Keyword)
			}
			continue
		}

		rows = append(rows, report.Row{
			Date:              p.Date,
			Keyword:           p.Keyword,
			Interest:          p.Interest,
			SentimentScore:    rec.Score,
			SentimentCategory: rec.Category,
		})
	}

	var unmatched []trend.Keyword
	for kw := range sentiments {
		if _, ok := inSeries[kw]; !ok {
			unmatched = append(unmatched, kw)
		}
	}
	sort.Slice(unmatched, func(i, j int) bool { return unmatched[i] < unmatched[j] })
	dropped = append(dropped, unmatched...)

	top, err := SelectTop(rows)
	if err != nil {
		return nil, err
	}

	return &report.Result{
		Rows:    rows,
		Top:     top,
		Dropped: dropped,
	}, nil
}

// SelectTop picks the row with the highest sentiment score. Ties go to the
// earliest row. The returned trend carries the latest interest value of the
// selected keyword.
func SelectTop(rows []report.Row) (report.RankedTrend, error) {
	best := -1
	for i, r := range rows {
		if math.IsNaN(r.SentimentScore) {
			continue
		}
		if best < 0 || r.SentimentScore > rows[best].SentimentScore {
			best = i
		}
	}
	if best < 0 {
		return report.RankedTrend{}, fmt.Errorf("select top trend: %w", report.ErrEmptyResult)
	}

	winner := rows[best]
	latest := winner
	for _, r := range rows {
		if r.Keyword == winner.Keyword && r.Date.After(latest.Date) {
			latest = r
		}
	}

	return report.RankedTrend{
		Keyword:           winner.Keyword,
		SentimentScore:    winner.SentimentScore,
		SentimentCategory: winner.SentimentCategory,
		Interest:          latest.Interest,
		Date:              latest.Date,
	}, nil
}

// TopFromTable ranks a table loaded from storage, ignoring rows without a
// keyword or category
func TopFromTable(rows []report.Row) (report.RankedTrend, error) {
	valid := make([]report.Row, 0, len(rows))
	for _, r := range rows {
		if r.Keyword == "" || r.SentimentCategory == "" {
			continue
		}
		valid = append(valid, r)
	}
	return SelectTop(valid)
}
