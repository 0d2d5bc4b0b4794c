package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = t.TempDir()
	config.Gemini.APIKey = ""
	config.Claude.APIKey = ""
	config.Embedding.RetryDelay = "1ms"
	config.Embedding.BatchCooldown = "0s"
	return config
}

func TestNew_WithoutProviderKeys(t *testing.T) {
	t.Log("=== Testing startup without API keys")

	application, err := New(context.Background(), testConfig(t), arbor.NewLogger())
	require.NoError(t, err)
	defer application.Close()

	err = application.RequireProviders()
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConfiguration))

	ctx := common.WithOwner(context.Background(), "alice")

	docs, err := application.DocumentService.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	chats, err := application.ChatService.ListChats(ctx)
	require.NoError(t, err)
	assert.Empty(t, chats)

	_, err = application.DocumentService.Ingest(ctx, &interfaces.IngestRequest{
		FileName: "notes.txt",
		Data:     []byte("Some notes worth keeping."),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrEmbeddingFailed))
	assert.True(t, errors.Is(err, common.ErrConfiguration))

	docs, err = application.DocumentService.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs, "failed ingestion must not store anything")

	t.Log("✓ Listing works and provider calls fail fast")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	config := testConfig(t)
	config.Pipeline.ChunkOverlap = config.Pipeline.ChunkSize

	_, err := New(context.Background(), config, arbor.NewLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}

func TestNew_WithGeminiKey(t *testing.T) {
	config := testConfig(t)
	config.Gemini.APIKey = "test-key"

	application, err := New(context.Background(), config, arbor.NewLogger())
	require.NoError(t, err)
	defer application.Close()

	assert.NoError(t, application.RequireProviders())
	assert.NotNil(t, application.Generator)
	assert.NotNil(t, application.RetrievalIndex)
}
