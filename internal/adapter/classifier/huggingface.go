// Package classifier holds the sentiment.Classifier backends used by the
// model scoring strategy.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/logging"
)

const (
	DefaultHuggingFaceURL   = "https://router.huggingface.co/hf-inference/models"
	DefaultHuggingFaceModel = "distilbert/distilbert-base-uncased-finetuned-sst-2-english"
)

// HuggingFaceConfig contains configuration for the inference API client
type HuggingFaceConfig struct {
	BaseURL string
	Model   string
	Token   string
	Timeout time.Duration
}

// HuggingFace classifies text with a hosted text-classification model
type HuggingFace struct {
	http     *http.Client
	endpoint string
	token    string
	log      *zap.Logger
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewHuggingFace creates a new inference API client
func NewHuggingFace(cfg HuggingFaceConfig, log *zap.Logger) *HuggingFace {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHuggingFaceURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultHuggingFaceModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &HuggingFace{
		http:     &http.Client{Timeout: cfg.Timeout},
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.Model,
		token:    cfg.Token,
		log:      logging.OrNop(log).With(zap.String("component", "huggingface"), zap.String("model", cfg.Model)),
	}
}

// Classify returns the highest scoring label for text
func (h *HuggingFace) Classify(ctx context.Context, text string) (sentiment.Classification, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return sentiment.Classification{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return sentiment.Classification{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return sentiment.Classification{}, fmt.Errorf("huggingface request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return sentiment.Classification{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return sentiment.Classification{}, fmt.Errorf("huggingface api status: %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	best, err := pickLabel(respBody)
	if err != nil {
		return sentiment.Classification{}, err
	}

	h.log.Debug("Classified text", zap.String("label", best.Label), zap.Float64("score", best.Score))
	return sentiment.Classification{
		Label:      sentiment.Label(strings.ToUpper(best.Label)),
		Confidence: best.Score,
	}, nil
}

// pickLabel accepts both the nested [[...]] and flat [...] response shapes
func pickLabel(body []byte) (labelScore, error) {
	var candidates []labelScore

	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil {
		for _, group := range nested {
			candidates = append(candidates, group...)
		}
	} else if err := json.Unmarshal(body, &candidates); err != nil {
		return labelScore{}, fmt.Errorf("decode huggingface response: %w", err)
	}

	if len(candidates) == 0 {
		return labelScore{}, fmt.Errorf("huggingface api returned no labels")
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, nil
}
