package social

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Console writes messages to w. It is the dry-run publisher.
type Console struct {
	mu sync.Mutex
	w  io.Writer
	n  int
}

// NewConsole creates a console publisher
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Name returns the platform name
func (c *Console) Name() string {
	return "console"
}

// Publish prints message followed by a blank line
func (c *Console) Publish(ctx context.Context, message string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.w, "%s\n\n", message); err != nil {
		return "", err
	}
	c.n++
	return fmt.Sprintf("console-%d", c.n), nil
}
