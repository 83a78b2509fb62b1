package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/logging"
)

const classifyPrompt = `Classify the sentiment of the user's text. Reply with a JSON object ` +
	`{"label": "POSITIVE" or "NEGATIVE", "confidence": number between 0 and 1}. No other keys.`

// OpenAIConfig contains configuration for the chat completion classifier
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAI classifies text with a chat completion model in JSON mode
type OpenAI struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewOpenAI creates a new chat completion classifier
func NewOpenAI(cfg OpenAIConfig, log *zap.Logger) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		log:    logging.OrNop(log).With(zap.String("component", "openai"), zap.String("model", cfg.Model)),
	}
}

type completionVerdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify asks the model for a label and confidence
func (o *OpenAI) Classify(ctx context.Context, text string) (sentiment.Classification, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifyPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return sentiment.Classification{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return sentiment.Classification{}, fmt.Errorf("openai api returned no choices")
	}

	var verdict completionVerdict
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return sentiment.Classification{}, fmt.Errorf("decode openai verdict %q: %w", content, err)
	}

	o.log.Debug("Classified text", zap.String("label", verdict.Label), zap.Float64("confidence", verdict.Confidence))
	return sentiment.Classification{
		Label:      sentiment.Label(strings.ToUpper(strings.TrimSpace(verdict.Label))),
		Confidence: verdict.Confidence,
	}, nil
}
