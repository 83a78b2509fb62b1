package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/config"
	"trendpulse/internal/domain/report"
	"trendpulse/internal/metrics"
	"trendpulse/internal/service/pipeline"
)

type staticRunner struct {
	result *report.Result
}

func (s staticRunner) Latest() (*report.Result, bool) { return s.result, s.result != nil }

func (s staticRunner) RunOnce(ctx context.Context) pipeline.Outcome {
	return pipeline.Outcome{Err: report.ErrEmptyResult}
}

func TestRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.RunFinished("ok", 1)

	srv := NewServer(config.ServerConfig{CorsOrigins: []string{"*"}}, Dependencies{
		Runner:   staticRunner{result: &report.Result{RunID: "run-1", Top: report.RankedTrend{Keyword: "AI"}}},
		Gatherer: reg,
	}, nil)

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/v1/trends", http.StatusOK},
		{http.MethodGet, "/api/v1/trends/top", http.StatusOK},
		{http.MethodGet, "/api/v1/trends/series", http.StatusOK},
		{http.MethodGet, "/api/v1/trends/message", http.StatusOK},
		{http.MethodGet, "/api/v1/trends/history", http.StatusNotFound},
		{http.MethodPost, "/api/v1/trends/run", http.StatusNotFound},
		{http.MethodGet, "/ws/trends", http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.code, rec.Code, "%s %s", tt.method, tt.path)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `trendpulse_runs_total{outcome="ok"} 1`)
}
