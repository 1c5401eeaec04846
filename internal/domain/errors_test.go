package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMErrorCategoriesMatchBase(t *testing.T) {
	for _, err := range []error{ErrLLMInvalidRequest, ErrLLMAuthentication, ErrLLMRateLimit, ErrLLMUnavailable} {
		wrapped := fmt.Errorf("embed chunk: %w", err)
		assert.ErrorIs(t, wrapped, ErrLLM)
		assert.ErrorIs(t, wrapped, err)
	}
	assert.False(t, errors.Is(ErrLLMRateLimit, ErrLLMUnavailable))
}

func TestChunkingConfigValidate(t *testing.T) {
	require.NoError(t, ChunkingConfig{ChunkSize: 10, ChunkSeparator: "\n\n"}.Validate())
	assert.ErrorIs(t, ChunkingConfig{ChunkSize: 0, ChunkSeparator: "."}.Validate(), ErrConfiguration)
	assert.ErrorIs(t, ChunkingConfig{ChunkSize: 10}.Validate(), ErrConfiguration)
}

func TestChunkSource(t *testing.T) {
	assert.Equal(t, "docs/k8s.md#chunk-3", ChunkSource("docs/k8s.md", 3))
}
