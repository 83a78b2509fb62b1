package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/sentiment"
)

func TestHuggingFaceClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/"+DefaultHuggingFaceModel, r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "this is good", body["inputs"])

		w.Write([]byte(`[[{"label":"NEGATIVE","score":0.02},{"label":"POSITIVE","score":0.98}]]`))
	}))
	defer srv.Close()

	h := NewHuggingFace(HuggingFaceConfig{BaseURL: srv.URL + "/models/", Token: "hf_test"}, nil)
	cl, err := h.Classify(context.Background(), "this is good")
	require.NoError(t, err)
	assert.Equal(t, sentiment.LabelPositive, cl.Label)
	assert.InDelta(t, 0.98, cl.Confidence, 1e-9)
}

func TestHuggingFaceStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Model is currently loading"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := NewHuggingFace(HuggingFaceConfig{BaseURL: srv.URL}, nil)
	_, err := h.Classify(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestPickLabel(t *testing.T) {
	best, err := pickLabel([]byte(`[{"label":"negative","score":0.7},{"label":"positive","score":0.3}]`))
	require.NoError(t, err)
	assert.Equal(t, "negative", best.Label)

	_, err = pickLabel([]byte(`[]`))
	assert.Error(t, err)

	_, err = pickLabel([]byte(`{"error":"bad"}`))
	assert.Error(t, err)
}
