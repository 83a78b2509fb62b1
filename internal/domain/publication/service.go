package publication

import (
	"context"
)

// Publisher delivers a pre-formatted message to a third-party platform.
// Transport and auth belong to the implementation.
type Publisher interface {
	// Name identifies the platform in logs and metrics
	Name() string

	// Publish posts the message and returns the platform's message ID
	Publish(ctx context.Context, message string) (string, error)
}
