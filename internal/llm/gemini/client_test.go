package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, nil)
	assert.Error(t, err)
}

func TestNewClient_DefaultModel(t *testing.T) {
	c, err := NewClient(context.Background(), Config{APIKey: "test-key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini:"+DefaultModel, c.Name())
}
