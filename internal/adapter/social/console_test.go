package social

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsolePublish(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	id, err := c.Publish(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "console-1", id)
	assert.Equal(t, "hello\n\n", buf.String())
}
