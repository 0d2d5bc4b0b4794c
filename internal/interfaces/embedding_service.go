package interfaces

import (
	"context"
)

// EmbeddingService embeds single texts and ordered batches.
// Failures after retries are *common.EmbeddingFailedError.
type EmbeddingService interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}
