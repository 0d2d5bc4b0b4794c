package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"google.golang.org/genai"
)

func TestProviderFactory_MissingKeys(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Gemini.APIKey = ""
	config.Claude.APIKey = ""
	factory := NewProviderFactory(config, arbor.NewLogger())

	_, err := factory.NewEmbeddingProvider(context.Background())
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = factory.NewGenerationProvider(context.Background())
	assert.ErrorIs(t, err, common.ErrConfiguration)

	config.Generation.Provider = common.LLMProviderClaude
	_, err = factory.NewGenerationProvider(context.Background())
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestProviderFactory_UnknownProvider(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Generation.Provider = "mistral"
	factory := NewProviderFactory(config, arbor.NewLogger())

	_, err := factory.NewGenerationProvider(context.Background())
	var cfgErr *common.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "generation.provider", cfgErr.Field)
}

func TestProviderFactory_ClaudeProvider(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Generation.Provider = common.LLMProviderClaude
	config.Claude.APIKey = "test-key"
	factory := NewProviderFactory(config, arbor.NewLogger())

	provider, err := factory.NewGenerationProvider(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "claude", provider.Name())
}

func TestWrapGeminiError(t *testing.T) {
	err := wrapGeminiError(genai.APIError{Code: 429, Message: "quota exceeded"})

	var providerErr *interfaces.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, 429, providerErr.StatusCode)
	assert.True(t, IsRetryable(err))

	err = wrapGeminiError(genai.APIError{Code: 400, Message: "bad request"})
	assert.False(t, IsRetryable(err))

	err = wrapGeminiError(errors.New("dial tcp: connection refused"))
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, 0, providerErr.StatusCode)
	assert.True(t, IsRetryable(err))
}
