package fetching

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/trend"
)

type scriptedProvider struct {
	mu        sync.Mutex
	responses map[trend.Keyword][]response
	calls     map[trend.Keyword]int
	queries   []trend.Query
}

type response struct {
	points []trend.ProviderPoint
	err    error
	wait   time.Duration
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{
		responses: make(map[trend.Keyword][]response),
		calls:     make(map[trend.Keyword]int),
	}
}

func (p *scriptedProvider) on(kw trend.Keyword, rs ...response) *scriptedProvider {
	p.responses[kw] = rs
	return p
}

func (p *scriptedProvider) InterestOverTime(ctx context.Context, kw trend.Keyword, q trend.Query) ([]trend.ProviderPoint, error) {
	p.mu.Lock()
	n := p.calls[kw]
	p.calls[kw]++
	p.queries = append(p.queries, q)
	rs := p.responses[kw]
	p.mu.Unlock()

	if len(rs) == 0 {
		return nil, nil
	}
	if n >= len(rs) {
		n = len(rs) - 1
	}
	r := rs[n]
	if r.wait > 0 {
		time.Sleep(r.wait)
	}
	return r.points, r.err
}

func (p *scriptedProvider) callCount(kw trend.Keyword) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[kw]
}

var day0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return day0.AddDate(0, 0, n) }

func points(values ...int) []trend.ProviderPoint {
	out := make([]trend.ProviderPoint, len(values))
	for i, v := range values {
		out[i] = trend.ProviderPoint{Date: day(i), Interest: v}
	}
	if len(out) > 0 {
		out[len(out)-1].Partial = true
	}
	return out
}

var transient = trend.Transient(errors.New("connection reset by peer"))

func opts(retries int) trend.FetchOptions {
	return trend.FetchOptions{
		Query:   trend.Query{Timeframe: "today 3-m", Geo: "US", Category: 0},
		Retries: retries,
		Delay:   time.Millisecond,
	}
}

func TestFetch_EmptyKeywords(t *testing.T) {
	f := NewFetcher(newScriptedProvider(), nil, nil)

	series, err := f.Fetch(context.Background(), nil, opts(3))
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestFetch_TagsRowsAndKeepsInputOrder(t *testing.T) {
	p := newScriptedProvider().
		on("NFTs", response{points: points(5, 6)}).
		on("AI", response{points: points(40, 60)})
	f := NewFetcher(p, nil, nil)

	series, err := f.Fetch(context.Background(), []trend.Keyword{"AI", "NFTs"}, opts(3))
	require.NoError(t, err)

	require.Len(t, series, 4)
	assert.Equal(t, trend.Point{Date: day(0), Keyword: "AI", Interest: 40}, series[0])
	assert.Equal(t, trend.Point{Date: day(1), Keyword: "AI", Interest: 60}, series[1])
	assert.Equal(t, trend.Keyword("NFTs"), series[2].Keyword)
	assert.Equal(t, []trend.Keyword{"AI", "NFTs"}, series.Keywords())
	assert.Equal(t, trend.Query{Timeframe: "today 3-m", Geo: "US"}, p.queries[0])
}

func TestFetch_RetryBoundDoesNotAbortOthers(t *testing.T) {
	p := newScriptedProvider().
		on("Bitcoin", response{err: transient}).
		on("Solana", response{points: points(10, 20, 30)})
	f := NewFetcher(p, nil, nil)

	series, err := f.Fetch(context.Background(), []trend.Keyword{"Bitcoin", "Solana"}, opts(3))
	require.NoError(t, err)

	assert.Equal(t, 3, p.callCount("Bitcoin"))
	assert.Equal(t, 1, p.callCount("Solana"))
	assert.Empty(t, series.ForKeyword("Bitcoin"))
	assert.Len(t, series.ForKeyword("Solana"), 3)
}

func TestFetch_RecoversAfterTransientFailure(t *testing.T) {
	p := newScriptedProvider().
		on("AI", response{err: transient}, response{points: points(1, 2)})
	f := NewFetcher(p, nil, nil)

	series, err := f.Fetch(context.Background(), []trend.Keyword{"AI"}, opts(3))
	require.NoError(t, err)
	assert.Equal(t, 2, p.callCount("AI"))
	assert.Len(t, series, 2)
}

func TestFetch_EmptyResponseStopsRetrying(t *testing.T) {
	p := newScriptedProvider().
		on("NFTs", response{points: []trend.ProviderPoint{}})
	f := NewFetcher(p, nil, nil)

	series, err := f.Fetch(context.Background(), []trend.Keyword{"NFTs"}, opts(3))
	require.NoError(t, err)
	assert.Equal(t, 1, p.callCount("NFTs"))
	assert.Empty(t, series)
}

func TestFetch_PermanentErrorIsNotRetried(t *testing.T) {
	p := newScriptedProvider().
		on("AI", response{err: errors.New("400 bad request")}).
		on("NFTs", response{points: points(3)})
	f := NewFetcher(p, nil, nil)

	series, err := f.Fetch(context.Background(), []trend.Keyword{"AI", "NFTs"}, opts(3))
	require.NoError(t, err)
	assert.Equal(t, 1, p.callCount("AI"))
	assert.Len(t, series, 1)
}

func TestFetch_AllFailIsEmptyNotError(t *testing.T) {
	p := newScriptedProvider().
		on("A", response{err: transient}).
		on("B", response{err: transient})
	f := NewFetcher(p, nil, nil)

	series, err := f.Fetch(context.Background(), []trend.Keyword{"A", "B"}, opts(2))
	require.NoError(t, err)
	assert.Empty(t, series)
	assert.Equal(t, 2, p.callCount("A"))
	assert.Equal(t, 2, p.callCount("B"))
}

func TestFetch_SkipsDuplicateAndEmptyKeywords(t *testing.T) {
	p := newScriptedProvider().on("AI", response{points: points(1)})
	f := NewFetcher(p, nil, nil)

	series, err := f.Fetch(context.Background(), []trend.Keyword{"AI", "", "AI"}, opts(1))
	require.NoError(t, err)
	assert.Len(t, series, 1)
	assert.Equal(t, 1, p.callCount("AI"))
	assert.Equal(t, 0, p.callCount(""))
}

func TestFetch_DropsNonIncreasingDates(t *testing.T) {
	pts := []trend.ProviderPoint{
		{Date: day(0), Interest: 1},
		{Date: day(2), Interest: 2},
		{Date: day(1), Interest: 3},
		{Date: day(2), Interest: 4},
		{Date: day(3), Interest: 5},
	}
	p := newScriptedProvider().on("AI", response{points: pts})
	f := NewFetcher(p, nil, nil)

	series, err := f.Fetch(context.Background(), []trend.Keyword{"AI"}, opts(1))
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, []int{1, 2, 5}, []int{series[0].Interest, series[1].Interest, series[2].Interest})
}

func TestFetch_ParallelRestoresOrder(t *testing.T) {
	p := newScriptedProvider().
		on("slow", response{points: points(1, 2), wait: 30 * time.Millisecond}).
		on("flaky", response{err: transient}, response{points: points(3)}).
		on("fast", response{points: points(4)})
	f := NewFetcher(p, nil, nil)

	o := opts(3)
	o.Workers = 3
	series, err := f.Fetch(context.Background(), []trend.Keyword{"slow", "flaky", "fast"}, o)
	require.NoError(t, err)

	assert.Equal(t, []trend.Keyword{"slow", "flaky", "fast"}, series.Keywords())
	assert.Len(t, series, 4)
}

func TestFetch_CancelledContext(t *testing.T) {
	p := newScriptedProvider().on("AI", response{err: transient})
	f := NewFetcher(p, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	o := opts(5)
	o.Delay = time.Hour
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := f.Fetch(ctx, []trend.Keyword{"AI"}, o)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.callCount("AI"))
}
