package sentiment

import (
	"context"
	"fmt"

	"trendpulse/internal/domain/sentiment"
)

// Model scores text with a pretrained binary classifier
type Model struct {
	classifier sentiment.Classifier
}

// NewModel wraps a classifier as an analyzer
func NewModel(classifier sentiment.Classifier) *Model {
	return &Model{classifier: classifier}
}

// Score implements sentiment.Analyzer. POSITIVE maps to +confidence,
// NEGATIVE to -confidence, anything else to 0.
func (m *Model) Score(ctx context.Context, text string) (float64, error) {
	if text == "" {
		return 0, nil
	}

	c, err := m.classifier.Classify(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("classify: %w", err)
	}

	return signed(c), nil
}

func signed(c sentiment.Classification) float64 {
	conf := c.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	switch c.Label {
	case sentiment.LabelPositive:
		return conf
	case sentiment.LabelNegative:
		return -conf
	default:
		return 0
	}
}
