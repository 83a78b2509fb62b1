package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	FetchAttempts   *prometheus.CounterVec
	KeywordsDropped *prometheus.CounterVec
	FetchedRows     prometheus.Counter
	ScoreFailures   prometheus.Counter
	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	Publishes       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendpulse_fetch_attempts_total",
			Help: "Provider requests by outcome (ok, empty, transient, permanent)",
		}, []string{"outcome"}),
		KeywordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendpulse_keywords_dropped_total",
			Help: "Keywords that contributed no rows, by reason",
		}, []string{"reason"}),
		FetchedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendpulse_fetched_rows_total",
			Help: "Series rows accepted from the provider",
		}),
		ScoreFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendpulse_score_failures_total",
			Help: "Keywords whose sentiment could not be computed",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendpulse_runs_total",
			Help: "Pipeline runs by outcome (ok, empty, error)",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trendpulse_run_duration_seconds",
			Help:    "Wall time of a full pipeline run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		Publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendpulse_publishes_total",
			Help: "Publication attempts by platform and outcome",
		}, []string{"platform", "outcome"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.FetchAttempts,
			m.KeywordsDropped,
			m.FetchedRows,
			m.ScoreFailures,
			m.Runs,
			m.RunDuration,
			m.Publishes,
		)
	}

	return m
}

func (m *Metrics) FetchAttempt(outcome string) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) KeywordDropped(reason string) {
	if m == nil {
		return
	}
	m.KeywordsDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) RowsFetched(n int) {
	if m == nil {
		return
	}
	m.FetchedRows.Add(float64(n))
}

func (m *Metrics) ScoreFailed() {
	if m == nil {
		return
	}
	m.ScoreFailures.Inc()
}

func (m *Metrics) RunFinished(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(seconds)
}

func (m *Metrics) Published(platform, outcome string) {
	if m == nil {
		return
	}
	m.Publishes.WithLabelValues(platform, outcome).Inc()
}
