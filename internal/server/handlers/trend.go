// internal/server/handlers/trend.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"trendpulse/internal/adapter/storage"
	"trendpulse/internal/domain/report"
	"trendpulse/internal/logging"
	"trendpulse/internal/service/pipeline"
)

const noDataMessage = "No data available. Please try again later."

// Runner exposes the latest result and on-demand runs
type Runner interface {
	Latest() (*report.Result, bool)
	RunOnce(ctx context.Context) pipeline.Outcome
}

// History lists past selections
type History interface {
	RecentTops(ctx context.Context, limit int) ([]storage.TopPick, error)
}

// TrendHandler handles trend-related HTTP requests
type TrendHandler struct {
	runner  Runner
	history History
	hashtag string
	log     *zap.Logger
}

// NewTrendHandler creates a new trend handler. history may be nil.
func NewTrendHandler(runner Runner, history History, hashtag string, log *zap.Logger) *TrendHandler {
	return &TrendHandler{
		runner:  runner,
		history: history,
		hashtag: hashtag,
		log:     logging.OrNop(log).With(zap.String("component", "http")),
	}
}

// GetTrends returns the full latest result
func (h *TrendHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runner.Latest()
	if !ok {
		respondWithError(w, http.StatusNotFound, noDataMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetTop returns the selected trend of the latest result
func (h *TrendHandler) GetTop(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runner.Latest()
	if !ok {
		respondWithError(w, http.StatusNotFound, noDataMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, result.Top)
}

type seriesResponse struct {
	RunID       string                          `json:"run_id"`
	GeneratedAt time.Time                       `json:"generated_at"`
	Series      map[string][]report.SeriesPoint `json:"series"`
}

// GetSeries returns interest over time per keyword for chart renderers
func (h *TrendHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runner.Latest()
	if !ok {
		respondWithError(w, http.StatusNotFound, noDataMessage)
		return
	}

	series := make(map[string][]report.SeriesPoint)
	for kw, points := range result.Series() {
		series[string(kw)] = points
	}

	respondWithJSON(w, http.StatusOK, seriesResponse{
		RunID:       result.RunID,
		GeneratedAt: result.GeneratedAt,
		Series:      series,
	})
}

// GetMessage returns the post text for the latest result
func (h *TrendHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runner.Latest()
	if !ok {
		respondWithError(w, http.StatusNotFound, noDataMessage)
		return
	}

	hashtag := r.URL.Query().Get("hashtag")
	if hashtag == "" {
		hashtag = h.hashtag
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"run_id":  result.RunID,
		"message": pipeline.FormatMessage(result.Top, hashtag),
	})
}

// Run triggers a pipeline run and waits for it
func (h *TrendHandler) Run(w http.ResponseWriter, r *http.Request) {
	outcome := h.runner.RunOnce(r.Context())

	switch {
	case outcome.Err == nil:
		respondWithJSON(w, http.StatusOK, outcome.Result)
	case outcome.Empty():
		respondWithError(w, http.StatusNotFound, noDataMessage)
	case errors.Is(outcome.Err, context.Canceled), errors.Is(outcome.Err, context.DeadlineExceeded):
		respondWithError(w, http.StatusServiceUnavailable, "Run was cancelled")
	default:
		h.log.Error("Run request failed", zap.Error(outcome.Err))
		respondWithError(w, http.StatusInternalServerError, "Pipeline run failed")
	}
}

// GetHistory returns recent top selections, newest first
func (h *TrendHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondWithError(w, http.StatusNotFound, "History is not enabled")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	picks, err := h.history.RecentTops(r.Context(), limit)
	if err != nil {
		h.log.Error("Failed to load history", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}
	if picks == nil {
		picks = []storage.TopPick{}
	}

	respondWithJSON(w, http.StatusOK, picks)
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
