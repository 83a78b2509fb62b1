package trend

import (
	"time"
)

// Keyword is a caller-supplied search term. It is the unit of iteration for
// fetching and scoring.
type Keyword string

// Query selects the window and region of an interest-over-time request
type Query struct {
	Timeframe string
	Geo       string
	Category  int
}

// FetchOptions controls a multi-keyword fetch
type FetchOptions struct {
	Query
	Retries int
	Delay   time.Duration
	Workers int
}

// ProviderPoint is one raw sample as returned by a provider, before tagging
type ProviderPoint struct {
	Date     time.Time
	Interest int
	Partial  bool
}

// Point is one (keyword, timestamp) row of a fetched series
type Point struct {
	Date     time.Time `json:"date"`
	Keyword  Keyword   `json:"keyword"`
	Interest int       `json:"interest"`
}

// Series is a combined dataset. Rows are grouped by keyword in the order the
// keywords were requested; within a group dates strictly increase.
type Series []Point

// Keywords returns the distinct keywords in order of first appearance
func (s Series) Keywords() []Keyword {
	seen := make(map[Keyword]struct{})
	var out []Keyword
	for _, p := range s {
		if _, ok := seen[p.Keyword]; ok {
			continue
		}
		seen[p.Keyword] = struct{}{}
		out = append(out, p.Keyword)
	}
	return out
}

// ForKeyword returns the rows belonging to one keyword
func (s Series) ForKeyword(k Keyword) Series {
	var out Series
	for _, p := range s {
		if p.Keyword == k {
			out = append(out, p)
		}
	}
	return out
}
